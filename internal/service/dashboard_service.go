package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const (
	activityPerSource = 3
	activityLimit     = 5
	insightWindow     = 7
	answerScaleMax    = 5.0
)

// Activity is one row of the dashboard's recent-activity feed.
type Activity struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Timestamp string `json:"timestamp"`
}

// WellnessScore summarizes recent numeric check-in answers as a percentage.
type WellnessScore struct {
	Score int    `json:"score"`
	Total int    `json:"total"`
	Label string `json:"label"`
}

type Insight struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

type HealthInsights struct {
	WellnessScore  WellnessScore `json:"wellnessScore"`
	TrendAnalysis  Insight       `json:"trendAnalysis"`
	Recommendation Insight       `json:"recommendation"`
}

type DashboardService struct {
	checkins CheckinStore
	uploads  UploadStore
	chats    ChatStore
}

func NewDashboardService(checkins CheckinStore, uploads UploadStore, chats ChatStore) *DashboardService {
	return &DashboardService{checkins: checkins, uploads: uploads, chats: chats}
}

// RecentActivity merges the newest check-ins, uploads and chat turns into a
// single feed. Source read failures are logged and skipped; the feed shows
// whatever remains.
func (s *DashboardService) RecentActivity(ctx context.Context, userID string) []Activity {
	logger := logutil.GetLogger(ctx).With(zap.String("user_id", userID))
	type entry struct {
		activity Activity
		at       int64
	}
	entries := make([]entry, 0, 3*activityPerSource)

	checkins, err := s.checkins.ListRecent(ctx, userID, activityPerSource)
	if err != nil {
		logger.Error("failed to load check-ins for activity feed", zap.Error(err))
	}
	for _, c := range checkins {
		entries = append(entries, entry{
			activity: Activity{ID: c.ID, Type: "checkin", Title: "Completed daily check-in"},
			at:       c.Date,
		})
	}

	uploads, err := s.uploads.ListRecent(ctx, userID, activityPerSource)
	if err != nil {
		logger.Error("failed to load uploads for activity feed", zap.Error(err))
	}
	for _, u := range uploads {
		entries = append(entries, entry{
			activity: Activity{ID: u.ID, Type: "report", Title: fmt.Sprintf("Uploaded report %s", u.Filename)},
			at:       u.Ctime,
		})
	}

	turns, err := s.chats.ListRecent(ctx, userID, activityPerSource)
	if err != nil {
		logger.Error("failed to load chats for activity feed", zap.Error(err))
	}
	for _, t := range turns {
		entries = append(entries, entry{
			activity: Activity{ID: t.ID, Type: "chat", Title: "Chatted with health assistant"},
			at:       t.Ctime,
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].at > entries[j].at })
	if len(entries) > activityLimit {
		entries = entries[:activityLimit]
	}
	now := time.Now()
	feed := make([]Activity, 0, len(entries))
	for _, e := range entries {
		activity := e.activity
		activity.Timestamp = relativeTime(e.at, now)
		feed = append(feed, activity)
	}
	return feed
}

// HealthInsights derives a wellness summary from the numeric answers of the
// recent check-in window.
func (s *DashboardService) HealthInsights(ctx context.Context, userID string) *HealthInsights {
	checkins, err := s.checkins.ListRecent(ctx, userID, insightWindow)
	if err != nil {
		logutil.GetLogger(ctx).Error("failed to load check-ins for insights",
			zap.String("user_id", userID), zap.Error(err))
		checkins = nil
	}
	if len(checkins) == 0 {
		return &HealthInsights{
			WellnessScore: WellnessScore{Score: 0, Total: 100, Label: "No data yet"},
			TrendAnalysis: Insight{
				Label:       "Not enough data",
				Description: "Complete a few daily check-ins to see your trends.",
			},
			Recommendation: Insight{
				Label:       "Start checking in",
				Description: "A daily check-in takes under a minute and builds your baseline.",
			},
		}
	}

	// checkins are newest first; averages per check-in, newest half vs
	// older half for the trend.
	averages := make([]float64, 0, len(checkins))
	for i := range checkins {
		if avg, ok := averageAnswers(checkins[i].Answers); ok {
			averages = append(averages, avg)
		}
	}
	score := 0
	if len(averages) > 0 {
		var sum float64
		for _, v := range averages {
			sum += v
		}
		score = int(sum / float64(len(averages)) / answerScaleMax * 100)
	}
	if score > 100 {
		score = 100
	}

	insights := &HealthInsights{
		WellnessScore: WellnessScore{Score: score, Total: 100, Label: scoreLabel(score)},
	}
	insights.TrendAnalysis = trendInsight(averages)
	insights.Recommendation = recommendationInsight(score)
	return insights
}

// averageAnswers averages the numeric answers of one check-in. Non-numeric
// answers (text, booleans) are skipped.
func averageAnswers(answers map[string]interface{}) (float64, bool) {
	var sum float64
	count := 0
	for _, v := range answers {
		if f, ok := v.(float64); ok {
			sum += f
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

func scoreLabel(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Needs attention"
	}
}

func trendInsight(averages []float64) Insight {
	if len(averages) < 2 {
		return Insight{
			Label:       "Building your baseline",
			Description: "Keep checking in so trends can be computed.",
		}
	}
	half := len(averages) / 2
	newer := mean(averages[:half])
	older := mean(averages[half:])
	switch {
	case newer > older+0.2:
		return Insight{
			Label:       "Improving",
			Description: "Your recent check-ins score higher than the week before.",
		}
	case newer < older-0.2:
		return Insight{
			Label:       "Declining",
			Description: "Your recent check-ins score lower than the week before.",
		}
	default:
		return Insight{
			Label:       "Stable",
			Description: "Your check-in scores have been steady recently.",
		}
	}
}

func recommendationInsight(score int) Insight {
	if score >= 60 {
		return Insight{
			Label:       "Keep it up",
			Description: "Maintain your current habits and keep checking in daily.",
		}
	}
	return Insight{
		Label:       "Consider a check-up",
		Description: "Your recent scores are low. Consider discussing them with a healthcare provider.",
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// relativeTime renders a millisecond timestamp as a coarse human-readable
// offset from now.
func relativeTime(ms int64, now time.Time) string {
	diff := now.Sub(time.UnixMilli(ms))
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	default:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}
