package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/healthsphere/internal/ai"
	"github.com/xxxsen/healthsphere/internal/model"
	appErr "github.com/xxxsen/healthsphere/internal/pkg/errors"
)

const (
	chatMaxTokens   = 1000
	chatTemperature = 0.7

	// Fixed confidence attached to every chat response. There is no
	// calibration signal from the model to derive a real one from.
	chatConfidence = 0.95
)

// ChatResult is the response payload for one conversational turn.
type ChatResult struct {
	Response         string   `json:"response"`
	SuggestedActions []string `json:"suggested_actions"`
	Confidence       float64  `json:"confidence"`
	ChatID           string   `json:"chat_id"`
}

type ChatService struct {
	contextSvc *ContextService
	chats      ChatStore
	gen        Generator
}

func NewChatService(contextSvc *ContextService, chats ChatStore, gen Generator) *ChatService {
	return &ChatService{contextSvc: contextSvc, chats: chats, gen: gen}
}

// Chat runs one conversational turn. The turn is persisted even when
// generation returns a sentinel error text, so the failure stays visible in
// the user's history.
func (s *ChatService) Chat(ctx context.Context, userID, message string) (*ChatResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, appErr.ErrInvalid
	}
	uc := s.contextSvc.BuildContext(ctx, userID)
	prompt := buildChatPrompt(uc, message)
	response := s.gen.Generate(ctx, prompt, chatMaxTokens, chatTemperature)

	turn := &model.ChatTurn{
		ID:         newID(),
		UserID:     userID,
		Message:    message,
		Response:   response,
		Context:    snapshotContext(uc),
		Confidence: chatConfidence,
		Ctime:      time.Now().UnixMilli(),
	}
	if err := s.chats.Create(ctx, turn); err != nil {
		logutil.GetLogger(ctx).Error("failed to persist chat turn",
			zap.String("user_id", userID), zap.Error(err))
	}

	return &ChatResult{
		Response:         response,
		SuggestedActions: suggestedActions(response),
		Confidence:       chatConfidence,
		ChatID:           turn.ID,
	}, nil
}

// History returns recent turns, newest first.
func (s *ChatService) History(ctx context.Context, userID string, limit uint) ([]model.ChatTurn, error) {
	return s.chats.ListRecent(ctx, userID, limit)
}

// suggestedActions derives quick-reply actions from the response text by
// keyword. A sentinel error response yields no actions.
func suggestedActions(response string) []string {
	actions := make([]string, 0, 2)
	if ai.IsErrorText(response) {
		return actions
	}
	lower := strings.ToLower(response)
	if strings.Contains(lower, "doctor") || strings.Contains(lower, "medical") || strings.Contains(lower, "provider") {
		actions = append(actions, "consult a healthcare provider")
	}
	if strings.Contains(lower, "symptom") || strings.Contains(lower, "monitor") || strings.Contains(lower, "track") {
		actions = append(actions, "monitor your symptoms")
	}
	return actions
}

func snapshotContext(uc *model.UserContext) string {
	data, err := json.Marshal(uc)
	if err != nil {
		return ""
	}
	return string(data)
}

func buildChatPrompt(uc *model.UserContext, message string) string {
	contextJSON, _ := json.Marshal(uc)
	return fmt.Sprintf(`You are an empathetic health assistant. Use the user's context to answer
their message. Be supportive and specific. Never diagnose conditions.
Always recommend consulting a healthcare professional.

User context:
%s

User message:
%s`, contextJSON, message)
}
