package service

import (
	"context"
	"strings"
	"time"

	"github.com/xxxsen/healthsphere/internal/model"
	appErr "github.com/xxxsen/healthsphere/internal/pkg/errors"
)

type FeedbackService struct {
	feedback FeedbackStore
}

func NewFeedbackService(feedback FeedbackStore) *FeedbackService {
	return &FeedbackService{feedback: feedback}
}

// Submit stores one piece of free-form user feedback and returns its id.
func (s *FeedbackService) Submit(ctx context.Context, userID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", appErr.ErrInvalid
	}
	fb := &model.Feedback{
		ID:       newID(),
		UserID:   userID,
		Feedback: text,
		Ctime:    time.Now().UnixMilli(),
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return "", err
	}
	return fb.ID, nil
}
