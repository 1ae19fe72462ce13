package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/xxxsen/healthsphere/internal/model"
)

const exportWindow = 50

// ExportService renders a user's health history as a markdown document,
// optionally converted to HTML for in-browser viewing.
type ExportService struct {
	checkins CheckinStore
	reports  ReportStore
	chats    ChatStore
	md       goldmark.Markdown
}

func NewExportService(checkins CheckinStore, reports ReportStore, chats ChatStore) *ExportService {
	return &ExportService{
		checkins: checkins,
		reports:  reports,
		chats:    chats,
		md:       goldmark.New(),
	}
}

// BuildMarkdown assembles the export document. Unlike the context builder,
// a read failure here fails the export: a silently truncated health record
// is worse than no export.
func (s *ExportService) BuildMarkdown(ctx context.Context, userID string) (string, error) {
	checkins, err := s.checkins.ListRecent(ctx, userID, exportWindow)
	if err != nil {
		return "", fmt.Errorf("load check-ins: %w", err)
	}
	reports, err := s.reports.ListRecent(ctx, userID, exportWindow)
	if err != nil {
		return "", fmt.Errorf("load report analyses: %w", err)
	}
	turns, err := s.chats.ListRecent(ctx, userID, exportWindow)
	if err != nil {
		return "", fmt.Errorf("load conversations: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Health History Export\n\n")
	fmt.Fprintf(&b, "Generated at %s.\n\n", time.Now().Format(time.RFC1123))

	b.WriteString("## Daily Check-ins\n\n")
	if len(checkins) == 0 {
		b.WriteString("No check-ins recorded.\n\n")
	}
	for i := range checkins {
		writeCheckinSection(&b, &checkins[i])
	}

	b.WriteString("## Report Analyses\n\n")
	if len(reports) == 0 {
		b.WriteString("No report analyses recorded.\n\n")
	}
	for i := range reports {
		writeReportSection(&b, &reports[i])
	}

	b.WriteString("## Conversations\n\n")
	if len(turns) == 0 {
		b.WriteString("No conversations recorded.\n\n")
	}
	// Oldest first reads naturally in a document.
	for i := len(turns) - 1; i >= 0; i-- {
		turn := &turns[i]
		fmt.Fprintf(&b, "### %s\n\n", formatDate(turn.Ctime))
		fmt.Fprintf(&b, "**You:** %s\n\n", turn.Message)
		fmt.Fprintf(&b, "**Assistant:** %s\n\n", turn.Response)
	}
	return b.String(), nil
}

// RenderHTML converts the markdown export for inline viewing.
func (s *ExportService) RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("render export: %w", err)
	}
	return buf.String(), nil
}

func writeCheckinSection(b *strings.Builder, checkin *model.CheckIn) {
	fmt.Fprintf(b, "### %s\n\n", formatDate(checkin.Date))
	if len(checkin.Answers) > 0 {
		answers, _ := json.MarshalIndent(checkin.Answers, "", "  ")
		fmt.Fprintf(b, "```json\n%s\n```\n\n", answers)
	}
	if checkin.Notes != "" {
		fmt.Fprintf(b, "Notes: %s\n\n", checkin.Notes)
	}
	if checkin.Analysis != nil && !checkin.Analysis.IsError() {
		if summary, ok := checkin.Analysis["summary"].(string); ok && summary != "" {
			fmt.Fprintf(b, "Analysis: %s\n\n", summary)
		}
		for _, rec := range checkin.Analysis.StringList("recommendations") {
			fmt.Fprintf(b, "- %s\n", rec)
		}
		b.WriteString("\n")
	}
}

func writeReportSection(b *strings.Builder, report *model.ReportAnalysis) {
	fmt.Fprintf(b, "### %s\n\n", formatDate(report.Ctime))
	if summary, ok := report.Analysis["summary"].(string); ok && summary != "" {
		fmt.Fprintf(b, "%s\n\n", summary)
	}
	for _, finding := range report.Findings {
		fmt.Fprintf(b, "- %s\n", finding)
	}
	if len(report.Findings) > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(b, "Urgency level: %d/5\n\n", report.UrgencyLevel)
}

func formatDate(ms int64) string {
	return time.UnixMilli(ms).Format("2006-01-02 15:04")
}
