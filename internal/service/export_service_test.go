package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/healthsphere/internal/model"
)

func TestBuildMarkdown(t *testing.T) {
	checkins := &fakeCheckinStore{checkins: []model.CheckIn{
		{
			ID: "c1", UserID: "user-1", Date: 1700000000000,
			Answers: map[string]interface{}{"sleep": float64(3)},
			Notes:   "tired all day",
			Analysis: model.Document{
				"summary":         "mild fatigue",
				"recommendations": []interface{}{"go to bed earlier"},
			},
		},
	}}
	reports := &fakeReportStore{reports: []model.ReportAnalysis{
		{
			ID: "r1", UserID: "user-1", Ctime: 1700000000000,
			Analysis:     model.Document{"summary": "routine bloodwork"},
			Findings:     []string{"slightly low iron"},
			UrgencyLevel: 2,
		},
	}}
	chats := &fakeChatStore{turns: []model.ChatTurn{
		{ID: "t1", UserID: "user-1", Message: "am I ok?", Response: "you are fine", Ctime: 1700000000000},
	}}

	svc := NewExportService(checkins, reports, chats)
	markdown, err := svc.BuildMarkdown(context.Background(), "user-1")
	require.NoError(t, err)
	require.Contains(t, markdown, "# Health History Export")
	require.Contains(t, markdown, "## Daily Check-ins")
	require.Contains(t, markdown, "tired all day")
	require.Contains(t, markdown, "go to bed earlier")
	require.Contains(t, markdown, "routine bloodwork")
	require.Contains(t, markdown, "Urgency level: 2/5")
	require.Contains(t, markdown, "**You:** am I ok?")
	require.Contains(t, markdown, "**Assistant:** you are fine")
}

func TestBuildMarkdown_EmptyHistory(t *testing.T) {
	svc := NewExportService(&fakeCheckinStore{}, &fakeReportStore{}, &fakeChatStore{})
	markdown, err := svc.BuildMarkdown(context.Background(), "user-1")
	require.NoError(t, err)
	require.Contains(t, markdown, "No check-ins recorded.")
	require.Contains(t, markdown, "No report analyses recorded.")
	require.Contains(t, markdown, "No conversations recorded.")
}

func TestBuildMarkdown_ReadFailure(t *testing.T) {
	svc := NewExportService(&fakeCheckinStore{failList: true}, &fakeReportStore{}, &fakeChatStore{})
	_, err := svc.BuildMarkdown(context.Background(), "user-1")
	require.Error(t, err)
}

func TestRenderHTML(t *testing.T) {
	svc := NewExportService(&fakeCheckinStore{}, &fakeReportStore{}, &fakeChatStore{})
	html, err := svc.RenderHTML("# Title\n\nsome **bold** text\n")
	require.NoError(t, err)
	require.Contains(t, html, "<h1>Title</h1>")
	require.Contains(t, html, "<strong>bold</strong>")
}
