package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/healthsphere/internal/ai"
	"github.com/xxxsen/healthsphere/internal/model"
)

const analysisResponse = "Here is my assessment:\n```json\n{\"risk_score\": 0.25, \"concerns\": [\"poor sleep\"], \"trends\": \"sleep quality declining over the week\", \"recommendations\": [\"sleep earlier\", \"limit caffeine\"], \"summary\": \"mild concerns\"}\n```"

func newCheckinFixture(gen *fakeGenerator) (*CheckinService, *fakeCheckinStore, *fakeChatStore) {
	checkins := &fakeCheckinStore{}
	chats := &fakeChatStore{}
	svc := NewCheckinService(checkins, NewContextService(checkins, chats), gen)
	return svc, checkins, chats
}

func TestCheckinAnalyze_Success(t *testing.T) {
	gen := &fakeGenerator{response: analysisResponse}
	svc, checkins, _ := newCheckinFixture(gen)

	checkin, analysis, err := svc.Analyze(context.Background(), "user-1", &CheckinPayload{
		Answers: map[string]interface{}{"sleep_quality": float64(2)},
		Notes:   "slept badly",
	})
	require.NoError(t, err)
	require.False(t, analysis.IsError())
	require.Equal(t, 0.25, analysis["risk_score"])
	require.Equal(t, []string{"poor sleep"}, analysis.StringList("concerns"))

	require.Len(t, checkins.checkins, 1)
	require.Equal(t, 1, checkins.updates)
	require.NotNil(t, checkins.checkins[0].Analysis)
	require.Equal(t, checkin.ID, checkins.checkins[0].ID)
	require.Equal(t, analysisMaxTokens, gen.lastTokens)
}

func TestCheckinAnalyze_Defaults(t *testing.T) {
	gen := &fakeGenerator{response: analysisResponse}
	svc, checkins, _ := newCheckinFixture(gen)

	_, _, err := svc.Analyze(context.Background(), "user-1", &CheckinPayload{})
	require.NoError(t, err)
	stored := checkins.checkins[0]
	require.Equal(t, defaultTopK, stored.TopK)
	require.Equal(t, defaultExplainMethod, stored.ExplainMethod)
	require.True(t, stored.UseWinsorize)
	require.NotNil(t, stored.Answers)
}

func TestCheckinAnalyze_SentinelResponseYieldsErrorDocument(t *testing.T) {
	gen := &fakeGenerator{response: ai.ErrTextUnreachable}
	svc, checkins, _ := newCheckinFixture(gen)

	checkin, analysis, err := svc.Analyze(context.Background(), "user-1", &CheckinPayload{
		Answers: map[string]interface{}{"mood": float64(4)},
	})
	require.NoError(t, err)
	require.True(t, analysis.IsError())
	require.Equal(t, analysisParseFailure, analysis["error"])

	// The check-in survives; only the analysis column stays empty.
	require.NotEmpty(t, checkin.ID)
	require.Len(t, checkins.checkins, 1)
	require.Zero(t, checkins.updates)
	require.Nil(t, checkins.checkins[0].Analysis)
}

func TestCheckinAnalyze_MalformedFenceYieldsErrorDocument(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n{\"risk_score\": 0.5}"}
	svc, _, _ := newCheckinFixture(gen)

	_, analysis, err := svc.Analyze(context.Background(), "user-1", &CheckinPayload{})
	require.NoError(t, err)
	require.True(t, analysis.IsError())
}

func TestCheckinAnalyze_StoreFailure(t *testing.T) {
	gen := &fakeGenerator{response: analysisResponse}
	checkins := &fakeCheckinStore{failCreate: true}
	svc := NewCheckinService(checkins, NewContextService(checkins, &fakeChatStore{}), gen)

	_, _, err := svc.Analyze(context.Background(), "user-1", &CheckinPayload{})
	require.Error(t, err)
	require.Zero(t, gen.calls)
}

func TestCheckinAnalyze_PersistFailureStillReturnsAnalysis(t *testing.T) {
	gen := &fakeGenerator{response: analysisResponse}
	checkins := &fakeCheckinStore{failUpdate: true}
	svc := NewCheckinService(checkins, NewContextService(checkins, &fakeChatStore{}), gen)

	_, analysis, err := svc.Analyze(context.Background(), "user-1", &CheckinPayload{})
	require.NoError(t, err)
	require.False(t, analysis.IsError())
	require.Equal(t, 0.25, analysis["risk_score"])
}

func TestGenerateQuestions_SuccessAndCache(t *testing.T) {
	gen := &fakeGenerator{response: "```json\n[{\"id\": \"q1\", \"question\": \"How did you sleep?\", \"type\": \"scale\", \"required\": true, \"category\": \"sleep\"}]\n```"}
	svc, _, _ := newCheckinFixture(gen)

	questions := svc.GenerateQuestions(context.Background(), "user-1")
	require.Len(t, questions, 1)
	require.Equal(t, "q1", questions[0].ID)
	require.NotNil(t, questions[0].Options)
	require.Equal(t, questionsMaxTokens, gen.lastTokens)
	require.Equal(t, questionsTemperature, gen.lastTemp)

	// Second call is served from the cache.
	again := svc.GenerateQuestions(context.Background(), "user-1")
	require.Equal(t, questions, again)
	require.Equal(t, 1, gen.calls)
}

func TestGenerateQuestions_FailureFallsBackAndIsNotCached(t *testing.T) {
	gen := &fakeGenerator{responseSeq: []string{
		ai.ErrTextUnreachable,
		"```json\n[{\"id\": \"q1\", \"question\": \"How is your energy?\"}]\n```",
	}}
	svc, _, _ := newCheckinFixture(gen)

	questions := svc.GenerateQuestions(context.Background(), "user-1")
	require.Len(t, questions, 1)
	require.Equal(t, model.FallbackQuestion().ID, questions[0].ID)

	// The failure was not cached; the next call retries the backend.
	questions = svc.GenerateQuestions(context.Background(), "user-1")
	require.Equal(t, "q1", questions[0].ID)
	require.Equal(t, 2, gen.calls)
}

func TestBuildAnalysisPrompt_FieldInstructions(t *testing.T) {
	checkin := &model.CheckIn{ID: "c1", UserID: "user-1", Answers: map[string]interface{}{"mood": float64(3)}}
	prompt := buildAnalysisPrompt(checkin, []model.CheckIn{*checkin})
	require.Contains(t, prompt, "trends: a brief string")
	require.Contains(t, prompt, "list of 2-3 actionable recommendations")
	require.Contains(t, prompt, "risk_score")
}

func TestBuildQuestionsPrompt_QuestionCount(t *testing.T) {
	prompt := buildQuestionsPrompt(&model.UserContext{})
	require.Contains(t, prompt, "Generate 8 to 10 personalized")
}

func TestRiskSeries(t *testing.T) {
	checkins := &fakeCheckinStore{checkins: []model.CheckIn{
		{ID: "c1", UserID: "user-1", Date: 100, Analysis: model.Document{"risk_score": 0.2}},
		{ID: "c2", UserID: "user-1", Date: 200, Analysis: model.Document{"risk_score": 0.6}},
		{ID: "c3", UserID: "user-1", Date: 300, Analysis: model.Document{"summary": "no score"}},
		{ID: "c4", UserID: "user-1", Date: 400},
		{ID: "c5", UserID: "user-2", Date: 500, Analysis: model.Document{"risk_score": 0.9}},
	}}
	svc := NewCheckinService(checkins, NewContextService(checkins, &fakeChatStore{}), &fakeGenerator{})

	series, err := svc.RiskSeries(context.Background(), "user-1", 30)
	require.NoError(t, err)
	require.Equal(t, []RiskPoint{
		{Date: 100, RiskScore: 20},
		{Date: 200, RiskScore: 60},
	}, series)
}

func TestBackfill_RepairsPendingRows(t *testing.T) {
	gen := &fakeGenerator{response: analysisResponse}
	checkins := &fakeCheckinStore{checkins: []model.CheckIn{
		{ID: "c1", UserID: "user-1", Date: 100},
		{ID: "c2", UserID: "user-2", Date: 200, Analysis: model.Document{"risk_score": 0.1}},
		{ID: "c3", UserID: "user-2", Date: 300},
	}}
	svc := NewCheckinService(checkins, NewContextService(checkins, &fakeChatStore{}), gen)

	repaired, err := svc.Backfill(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 2, repaired)
	for _, c := range checkins.checkins {
		require.NotNil(t, c.Analysis)
	}
}

func TestBackfill_SentinelLeavesRowPending(t *testing.T) {
	gen := &fakeGenerator{response: ai.ErrTextBadShape}
	checkins := &fakeCheckinStore{checkins: []model.CheckIn{
		{ID: "c1", UserID: "user-1", Date: 100},
	}}
	svc := NewCheckinService(checkins, NewContextService(checkins, &fakeChatStore{}), gen)

	repaired, err := svc.Backfill(context.Background(), 10)
	require.NoError(t, err)
	require.Zero(t, repaired)
	require.Nil(t, checkins.checkins[0].Analysis)
}
