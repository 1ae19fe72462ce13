package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/healthsphere/internal/middleware"
	"github.com/xxxsen/healthsphere/internal/model"
	"github.com/xxxsen/healthsphere/internal/service"
)

type memCheckinStore struct {
	checkins []model.CheckIn
}

func (s *memCheckinStore) Create(_ context.Context, checkin *model.CheckIn) error {
	s.checkins = append(s.checkins, *checkin)
	return nil
}

func (s *memCheckinStore) UpdateAnalysis(_ context.Context, userID, checkinID string, analysis model.Document) error {
	for i := range s.checkins {
		if s.checkins[i].ID == checkinID && s.checkins[i].UserID == userID {
			s.checkins[i].Analysis = analysis
		}
	}
	return nil
}

func (s *memCheckinStore) ListRecent(_ context.Context, userID string, limit uint) ([]model.CheckIn, error) {
	out := make([]model.CheckIn, 0)
	for _, c := range s.checkins {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if uint(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memCheckinStore) ListAnalyzed(_ context.Context, userID string, limit uint) ([]model.CheckIn, error) {
	return nil, nil
}

func (s *memCheckinStore) ListPendingAnalysis(_ context.Context, limit uint) ([]model.CheckIn, error) {
	return nil, nil
}

type memChatStore struct{}

func (s *memChatStore) Create(_ context.Context, _ *model.ChatTurn) error { return nil }
func (s *memChatStore) ListRecent(_ context.Context, _ string, _ uint) ([]model.ChatTurn, error) {
	return nil, nil
}

type staticGenerator struct {
	response string
}

func (g *staticGenerator) Generate(_ context.Context, _ string, _ int, _ float64) string {
	return g.response
}

func postCheckin(t *testing.T, generated, body string) (int, map[string]interface{}) {
	gin.SetMode(gin.TestMode)
	checkins := &memCheckinStore{}
	svc := service.NewCheckinService(
		checkins,
		service.NewContextService(checkins, &memChatStore{}),
		&staticGenerator{response: generated},
	)
	h := NewCheckinHandler(svc)

	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodPost, "/functions/analyzeCheckin", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserIDKey, "user-1")
	h.Analyze(c)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &parsed))
	return recorder.Code, parsed
}

func TestCheckinAnalyze_BodyIsAnalysisDocument(t *testing.T) {
	generated := "```json\n{\"risk_score\": 0.25, \"concerns\": [\"poor sleep\"], \"trends\": \"sleep declining over the week\", \"recommendations\": [\"sleep earlier\"], \"summary\": \"mild concerns\"}\n```"
	status, body := postCheckin(t, generated, `{"answers": {"sleep_quality": 2}}`)

	require.Equal(t, http.StatusOK, status)
	// The analysis fields sit at the top level of the body.
	require.Equal(t, 0.25, body["risk_score"])
	require.Equal(t, "sleep declining over the week", body["trends"])
	require.Equal(t, "mild concerns", body["summary"])
	require.NotContains(t, body, "llm_analysis")
	require.NotContains(t, body, "checkin_id")
}

func TestCheckinAnalyze_FailureBodyIsErrorDocument(t *testing.T) {
	status, body := postCheckin(t, "Error: could not reach language model service.", `{"answers": {}}`)

	require.Equal(t, http.StatusOK, status)
	require.Equal(t, map[string]interface{}{"error": "Failed to parse LLM analysis."}, body)
}
