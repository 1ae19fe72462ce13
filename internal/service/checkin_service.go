package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/healthsphere/internal/model"
	"github.com/xxxsen/healthsphere/internal/pkg/llmjson"
)

// Generation knobs for the two check-in prompts. Analysis keeps the
// provider default temperature; question generation runs cooler so the
// questionnaire schema stays stable.
const (
	analysisMaxTokens    = 1000
	analysisTemperature  = 0.7
	questionsMaxTokens   = 1500
	questionsTemperature = 0.5

	defaultTopK          = 3
	defaultExplainMethod = "auto"

	questionCacheSize = 1024
	questionCacheTTL  = 10 * time.Minute
)

const analysisParseFailure = "Failed to parse LLM analysis."

// CheckinPayload is the client submission for a daily check-in.
type CheckinPayload struct {
	Answers         map[string]interface{} `json:"answers"`
	Notes           string                 `json:"notes"`
	TopK            int                    `json:"topK"`
	ExplainMethod   string                 `json:"explainMethod"`
	UseWinsorize    *bool                  `json:"useWinsorize"`
	ForceLocal      bool                   `json:"forceLocal"`
	Questions       []model.Question       `json:"questions"`
	QuestionVersion string                 `json:"question_version"`
}

// RiskPoint is one sample of the historical risk series. Scores are stored
// on [0,1] and exposed as percentages.
type RiskPoint struct {
	Date      int64   `json:"date"`
	RiskScore float64 `json:"risk_score"`
}

type CheckinService struct {
	checkins   CheckinStore
	contextSvc *ContextService
	gen        Generator
	questions  *lru.LRU[string, []model.Question]
}

func NewCheckinService(checkins CheckinStore, contextSvc *ContextService, gen Generator) *CheckinService {
	return &CheckinService{
		checkins:   checkins,
		contextSvc: contextSvc,
		gen:        gen,
		questions:  lru.NewLRU[string, []model.Question](questionCacheSize, nil, questionCacheTTL),
	}
}

// Analyze persists the check-in, runs one generation over it plus the
// recent window, and attaches the parsed analysis. The check-in row is the
// durable part: generation or parse failure still returns a stored check-in,
// just with an error document instead of an analysis.
func (s *CheckinService) Analyze(ctx context.Context, userID string, payload *CheckinPayload) (*model.CheckIn, model.Document, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("user_id", userID))
	checkin := s.buildCheckin(userID, payload)
	if err := s.checkins.Create(ctx, checkin); err != nil {
		return nil, nil, fmt.Errorf("store check-in: %w", err)
	}

	recent, err := s.checkins.ListRecent(ctx, userID, checkinWindow)
	if err != nil {
		logger.Error("failed to load recent check-ins for analysis", zap.Error(err))
		recent = []model.CheckIn{*checkin}
	}

	doc := s.analyzeCheckin(ctx, checkin, recent)
	if !doc.IsError() {
		if err := s.checkins.UpdateAnalysis(ctx, userID, checkin.ID, doc); err != nil {
			logger.Error("failed to persist check-in analysis",
				zap.String("checkin_id", checkin.ID), zap.Error(err))
		} else {
			checkin.Analysis = doc
		}
	}
	return checkin, doc, nil
}

// analyzeCheckin runs the single generation call and converts any failure
// into an error document.
func (s *CheckinService) analyzeCheckin(ctx context.Context, checkin *model.CheckIn, recent []model.CheckIn) model.Document {
	prompt := buildAnalysisPrompt(checkin, recent)
	text := s.gen.Generate(ctx, prompt, analysisMaxTokens, analysisTemperature)
	parsed, err := llmjson.ParseObject(text)
	if err != nil {
		logutil.GetLogger(ctx).Error("check-in analysis did not parse",
			zap.String("checkin_id", checkin.ID),
			zap.String("raw_response", text),
			zap.Error(err))
		return model.ErrorDocument(analysisParseFailure)
	}
	return model.Document(parsed)
}

func (s *CheckinService) buildCheckin(userID string, payload *CheckinPayload) *model.CheckIn {
	answers := payload.Answers
	if answers == nil {
		answers = map[string]interface{}{}
	}
	topK := payload.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	explain := payload.ExplainMethod
	if explain == "" {
		explain = defaultExplainMethod
	}
	useWinsorize := true
	if payload.UseWinsorize != nil {
		useWinsorize = *payload.UseWinsorize
	}
	return &model.CheckIn{
		ID:              newID(),
		UserID:          userID,
		Date:            time.Now().UnixMilli(),
		Answers:         answers,
		Notes:           payload.Notes,
		TopK:            topK,
		ExplainMethod:   explain,
		UseWinsorize:    useWinsorize,
		ForceLocal:      payload.ForceLocal,
		Questions:       payload.Questions,
		QuestionVersion: payload.QuestionVersion,
	}
}

// GenerateQuestions builds a personalized questionnaire from the user
// context. Successful questionnaires are cached per user; failures fall
// back to a single error question and are never cached.
func (s *CheckinService) GenerateQuestions(ctx context.Context, userID string) []model.Question {
	if cached, ok := s.questions.Get(userID); ok {
		return cached
	}
	uc := s.contextSvc.BuildContext(ctx, userID)
	prompt := buildQuestionsPrompt(uc)
	text := s.gen.Generate(ctx, prompt, questionsMaxTokens, questionsTemperature)
	items, err := llmjson.ParseList(text)
	if err != nil {
		logutil.GetLogger(ctx).Error("question generation did not parse",
			zap.String("user_id", userID),
			zap.String("raw_response", text),
			zap.Error(err))
		return []model.Question{model.FallbackQuestion()}
	}
	questions, err := decodeQuestions(items)
	if err != nil || len(questions) == 0 {
		logutil.GetLogger(ctx).Error("question generation yielded no usable items",
			zap.String("user_id", userID), zap.Error(err))
		return []model.Question{model.FallbackQuestion()}
	}
	s.questions.Add(userID, questions)
	return questions
}

func decodeQuestions(items []map[string]interface{}) ([]model.Question, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	var questions []model.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, err
	}
	for i := range questions {
		if questions[i].Options == nil {
			questions[i].Options = []string{}
		}
	}
	return questions, nil
}

// List returns the user's most recent check-ins, newest first.
func (s *CheckinService) List(ctx context.Context, userID string, limit uint) ([]model.CheckIn, error) {
	return s.checkins.ListRecent(ctx, userID, limit)
}

// RiskSeries exposes the historical risk trajectory from analyzed
// check-ins, oldest first, as percentages.
func (s *CheckinService) RiskSeries(ctx context.Context, userID string, limit uint) ([]RiskPoint, error) {
	analyzed, err := s.checkins.ListAnalyzed(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	series := make([]RiskPoint, 0, len(analyzed))
	for _, checkin := range analyzed {
		if checkin.Analysis == nil {
			continue
		}
		score, ok := checkin.Analysis["risk_score"].(float64)
		if !ok {
			continue
		}
		series = append(series, RiskPoint{Date: checkin.Date, RiskScore: score * 100})
	}
	return series, nil
}

// Backfill re-runs analysis over check-ins whose generation previously
// failed, across all users. Returns the number of rows repaired.
func (s *CheckinService) Backfill(ctx context.Context, batch uint) (int, error) {
	pending, err := s.checkins.ListPendingAnalysis(ctx, batch)
	if err != nil {
		return 0, err
	}
	repaired := 0
	for i := range pending {
		checkin := &pending[i]
		recent, err := s.checkins.ListRecent(ctx, checkin.UserID, checkinWindow)
		if err != nil {
			logutil.GetLogger(ctx).Error("failed to load window for backfill",
				zap.String("checkin_id", checkin.ID), zap.Error(err))
			continue
		}
		doc := s.analyzeCheckin(ctx, checkin, recent)
		if doc.IsError() {
			continue
		}
		if err := s.checkins.UpdateAnalysis(ctx, checkin.UserID, checkin.ID, doc); err != nil {
			logutil.GetLogger(ctx).Error("failed to persist backfilled analysis",
				zap.String("checkin_id", checkin.ID), zap.Error(err))
			continue
		}
		repaired++
	}
	return repaired, nil
}

func buildAnalysisPrompt(checkin *model.CheckIn, recent []model.CheckIn) string {
	current := summarizeCheckin(checkin)
	window := make([]map[string]interface{}, 0, len(recent))
	for i := range recent {
		window = append(window, summarizeCheckin(&recent[i]))
	}
	currentJSON, _ := json.Marshal(current)
	windowJSON, _ := json.Marshal(window)
	return fmt.Sprintf(`Analyze this health check-in data and provide insights.

Current check-in:
%s

Recent check-ins (newest first):
%s

Respond with a JSON object containing:
- risk_score: overall health risk from 0 to 1
- concerns: list of specific concerns
- trends: a brief string analyzing changes over time
- recommendations: list of 2-3 actionable recommendations
- summary: brief plain-language summary`, currentJSON, windowJSON)
}

// summarizeCheckin keeps prompts bounded: answers and notes matter for the
// analysis, the submission bookkeeping fields do not.
func summarizeCheckin(checkin *model.CheckIn) map[string]interface{} {
	return map[string]interface{}{
		"date":    checkin.Date,
		"answers": checkin.Answers,
		"notes":   checkin.Notes,
	}
}

func buildQuestionsPrompt(uc *model.UserContext) string {
	contextJSON, _ := json.Marshal(uc)
	return fmt.Sprintf(`Generate 8 to 10 personalized daily health check-in questions for this user.

User context:
%s

Respond with a JSON array of question objects, each containing:
- id: short unique identifier
- question: the question text
- type: one of "scale", "boolean", "text", "choice"
- options: list of choices (empty unless type is "choice")
- required: boolean
- category: topic such as "sleep", "mood", "pain", "energy"`, contextJSON)
}
