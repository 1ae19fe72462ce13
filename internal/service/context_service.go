package service

import (
	"context"
	"fmt"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/healthsphere/internal/model"
)

// Window sizes for the per-request context. Check-ins are framed newest
// first for trend reading; chat turns oldest first for conversational flow.
const (
	checkinWindow = 7
	chatWindow    = 10
)

// ContextService assembles the bounded user context consumed by every
// generation prompt. It is a pure read over current state; nothing is
// cached between requests.
type ContextService struct {
	checkins CheckinStore
	chats    ChatStore
}

func NewContextService(checkins CheckinStore, chats ChatStore) *ContextService {
	return &ContextService{checkins: checkins, chats: chats}
}

// BuildContext never fails: a read error degrades to an empty window so the
// pipeline can still answer from the new input alone.
func (s *ContextService) BuildContext(ctx context.Context, userID string) *model.UserContext {
	logger := logutil.GetLogger(ctx).With(zap.String("user_id", userID))
	uc := &model.UserContext{
		RecentCheckins:      []model.CheckIn{},
		ConversationHistory: []string{},
		// TODO: read conditions/allergies from a user profile table once
		// one exists.
		HealthHistory: map[string]interface{}{
			"conditions": []string{"None specified"},
			"allergies":  []string{"None specified"},
		},
		Concerns: []string{"General wellness"},
	}

	checkins, err := s.checkins.ListRecent(ctx, userID, checkinWindow)
	if err != nil {
		logger.Error("failed to load recent check-ins for context", zap.Error(err))
	} else {
		uc.RecentCheckins = checkins
	}

	turns, err := s.chats.ListRecent(ctx, userID, chatWindow)
	if err != nil {
		logger.Error("failed to load chat history for context", zap.Error(err))
		return uc
	}
	// ListRecent is newest first; conversation reads oldest to newest.
	for i := len(turns) - 1; i >= 0; i-- {
		uc.ConversationHistory = append(uc.ConversationHistory,
			fmt.Sprintf("User: %s\nAssistant: %s", turns[i].Message, turns[i].Response))
	}
	return uc
}
