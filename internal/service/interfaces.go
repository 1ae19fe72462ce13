package service

import (
	"context"

	"github.com/xxxsen/healthsphere/internal/model"
)

// Store interfaces consumed by the services. The postgres repos satisfy
// them; tests swap in fakes.
type (
	UserStore interface {
		Create(ctx context.Context, user *model.User) error
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		GetByID(ctx context.Context, userID string) (*model.User, error)
	}

	CheckinStore interface {
		Create(ctx context.Context, checkin *model.CheckIn) error
		UpdateAnalysis(ctx context.Context, userID, checkinID string, analysis model.Document) error
		ListRecent(ctx context.Context, userID string, limit uint) ([]model.CheckIn, error)
		ListAnalyzed(ctx context.Context, userID string, limit uint) ([]model.CheckIn, error)
		ListPendingAnalysis(ctx context.Context, limit uint) ([]model.CheckIn, error)
	}

	ChatStore interface {
		Create(ctx context.Context, turn *model.ChatTurn) error
		ListRecent(ctx context.Context, userID string, limit uint) ([]model.ChatTurn, error)
	}

	UploadStore interface {
		Create(ctx context.Context, upload *model.Upload) error
		ListRecent(ctx context.Context, userID string, limit uint) ([]model.Upload, error)
	}

	ReportStore interface {
		Create(ctx context.Context, report *model.ReportAnalysis) error
		ListRecent(ctx context.Context, userID string, limit uint) ([]model.ReportAnalysis, error)
	}

	FeedbackStore interface {
		Create(ctx context.Context, fb *model.Feedback) error
	}
)

// Generator is the single synchronous text-generation call. It returns a
// sentinel error text instead of failing; see the ai package.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) string
}
