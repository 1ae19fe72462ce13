package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/xxxsen/healthsphere/internal/model"
	appErr "github.com/xxxsen/healthsphere/internal/pkg/errors"
)

// In-memory stores used across the service tests. Each store can be forced
// to fail to exercise the degrade paths.

type fakeGenerator struct {
	response    string
	calls       int
	lastPrompt  string
	lastTokens  int
	lastTemp    float64
	responseSeq []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, maxTokens int, temperature float64) string {
	g.calls++
	g.lastPrompt = prompt
	g.lastTokens = maxTokens
	g.lastTemp = temperature
	if len(g.responseSeq) > 0 {
		out := g.responseSeq[0]
		g.responseSeq = g.responseSeq[1:]
		return out
	}
	return g.response
}

type fakeCheckinStore struct {
	checkins   []model.CheckIn
	failCreate bool
	failList   bool
	failUpdate bool
	updates    int
}

func (s *fakeCheckinStore) Create(_ context.Context, checkin *model.CheckIn) error {
	if s.failCreate {
		return fmt.Errorf("create failed")
	}
	s.checkins = append(s.checkins, *checkin)
	return nil
}

func (s *fakeCheckinStore) UpdateAnalysis(_ context.Context, userID, checkinID string, analysis model.Document) error {
	if s.failUpdate {
		return fmt.Errorf("update failed")
	}
	for i := range s.checkins {
		if s.checkins[i].ID == checkinID && s.checkins[i].UserID == userID {
			s.checkins[i].Analysis = analysis
			s.updates++
			return nil
		}
	}
	return appErr.ErrNotFound
}

func (s *fakeCheckinStore) ListRecent(_ context.Context, userID string, limit uint) ([]model.CheckIn, error) {
	if s.failList {
		return nil, fmt.Errorf("list failed")
	}
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

func (s *fakeCheckinStore) ListAnalyzed(_ context.Context, userID string, limit uint) ([]model.CheckIn, error) {
	if s.failList {
		return nil, fmt.Errorf("list failed")
	}
	out := make([]model.CheckIn, 0)
	for _, c := range s.checkins {
		if c.UserID == userID && c.Analysis != nil {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	if uint(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeCheckinStore) ListPendingAnalysis(_ context.Context, limit uint) ([]model.CheckIn, error) {
	if s.failList {
		return nil, fmt.Errorf("list failed")
	}
	out := make([]model.CheckIn, 0)
	for _, c := range s.checkins {
		if c.Analysis == nil {
			out = append(out, c)
		}
	}
	if uint(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeChatStore struct {
	turns      []model.ChatTurn
	failCreate bool
	failList   bool
}

func (s *fakeChatStore) Create(_ context.Context, turn *model.ChatTurn) error {
	if s.failCreate {
		return fmt.Errorf("create failed")
	}
	s.turns = append(s.turns, *turn)
	return nil
}

func (s *fakeChatStore) ListRecent(_ context.Context, userID string, limit uint) ([]model.ChatTurn, error) {
	if s.failList {
		return nil, fmt.Errorf("list failed")
	}
	out := make([]model.ChatTurn, 0)
	for _, t := range s.turns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ctime > out[j].Ctime })
	if uint(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeUploadStore struct {
	uploads    []model.Upload
	failCreate bool
}

func (s *fakeUploadStore) Create(_ context.Context, upload *model.Upload) error {
	if s.failCreate {
		return fmt.Errorf("create failed")
	}
	s.uploads = append(s.uploads, *upload)
	return nil
}

func (s *fakeUploadStore) ListRecent(_ context.Context, userID string, limit uint) ([]model.Upload, error) {
	out := make([]model.Upload, 0)
	for _, u := range s.uploads {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ctime > out[j].Ctime })
	if uint(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeReportStore struct {
	reports    []model.ReportAnalysis
	failCreate bool
}

func (s *fakeReportStore) Create(_ context.Context, report *model.ReportAnalysis) error {
	if s.failCreate {
		return fmt.Errorf("create failed")
	}
	s.reports = append(s.reports, *report)
	return nil
}

func (s *fakeReportStore) ListRecent(_ context.Context, userID string, limit uint) ([]model.ReportAnalysis, error) {
	out := make([]model.ReportAnalysis, 0)
	for _, r := range s.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ctime > out[j].Ctime })
	if uint(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeFeedbackStore struct {
	entries    []model.Feedback
	failCreate bool
}

func (s *fakeFeedbackStore) Create(_ context.Context, fb *model.Feedback) error {
	if s.failCreate {
		return fmt.Errorf("create failed")
	}
	s.entries = append(s.entries, *fb)
	return nil
}

type fakeUserStore struct {
	users map[string]*model.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*model.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, user *model.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return appErr.ErrConflict
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, appErr.ErrNotFound
}

func (s *fakeUserStore) GetByID(_ context.Context, userID string) (*model.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (e *fakeExtractor) Name() string { return "fake" }

func (e *fakeExtractor) ExtractText(_ context.Context, _ []byte, _ string) (string, error) {
	return e.text, e.err
}
