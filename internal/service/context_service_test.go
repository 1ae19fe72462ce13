package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/healthsphere/internal/model"
)

func TestBuildContext_Windows(t *testing.T) {
	checkins := &fakeCheckinStore{}
	chats := &fakeChatStore{}
	for i := 0; i < 10; i++ {
		checkins.checkins = append(checkins.checkins, model.CheckIn{
			ID: fmt.Sprintf("c%d", i), UserID: "user-1", Date: int64(i * 1000),
		})
	}
	for i := 0; i < 12; i++ {
		chats.turns = append(chats.turns, model.ChatTurn{
			ID: fmt.Sprintf("t%d", i), UserID: "user-1",
			Message:  fmt.Sprintf("question %d", i),
			Response: fmt.Sprintf("answer %d", i),
			Ctime:    int64(i * 1000),
		})
	}

	uc := NewContextService(checkins, chats).BuildContext(context.Background(), "user-1")

	// Check-ins: last 7, newest first.
	require.Len(t, uc.RecentCheckins, 7)
	require.Equal(t, "c9", uc.RecentCheckins[0].ID)
	require.Equal(t, "c3", uc.RecentCheckins[6].ID)

	// Conversation: last 10 turns, replayed oldest first.
	require.Len(t, uc.ConversationHistory, 10)
	require.Equal(t, "User: question 2\nAssistant: answer 2", uc.ConversationHistory[0])
	require.Equal(t, "User: question 11\nAssistant: answer 11", uc.ConversationHistory[9])
}

func TestBuildContext_EmptyHistory(t *testing.T) {
	uc := NewContextService(&fakeCheckinStore{}, &fakeChatStore{}).BuildContext(context.Background(), "user-1")
	require.NotNil(t, uc.RecentCheckins)
	require.Empty(t, uc.RecentCheckins)
	require.NotNil(t, uc.ConversationHistory)
	require.Empty(t, uc.ConversationHistory)
	require.Equal(t, []string{"General wellness"}, uc.Concerns)
	require.Contains(t, uc.HealthHistory, "conditions")
}

func TestBuildContext_ReadFailuresDegrade(t *testing.T) {
	checkins := &fakeCheckinStore{failList: true}
	chats := &fakeChatStore{failList: true}
	uc := NewContextService(checkins, chats).BuildContext(context.Background(), "user-1")
	require.Empty(t, uc.RecentCheckins)
	require.Empty(t, uc.ConversationHistory)
}
