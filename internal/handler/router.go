package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/healthsphere/internal/middleware"
)

type RouterDeps struct {
	Auth      *AuthHandler
	Checkins  *CheckinHandler
	Reports   *ReportHandler
	Chat      *ChatHandler
	Dashboard *DashboardHandler
	Feedback  *FeedbackHandler
	Export    *ExportHandler
	AI        *AIHandler
	JWTSecret []byte
}

func RegisterRoutes(root *gin.RouterGroup, deps RouterDeps) {
	root.POST("/api/auth/signup", deps.Auth.Signup)
	root.POST("/api/auth/login", deps.Auth.Login)
	root.POST("/api/auth/logout", deps.Auth.Logout)
	root.GET("/api/ai/health", deps.AI.Health)

	authGroup := root.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))
	authGroup.GET("/api/auth/me", deps.Auth.Me)

	authGroup.POST("/functions/analyzeCheckin", deps.Checkins.Analyze)
	authGroup.GET("/api/generate-questions", deps.Checkins.GenerateQuestions)
	authGroup.GET("/api/checkins", deps.Checkins.List)
	authGroup.GET("/functions/riskSeries", deps.Checkins.RiskSeries)

	authGroup.POST("/functions/processReport", deps.Reports.Process)

	authGroup.POST("/functions/chat", deps.Chat.Chat)
	authGroup.GET("/api/chat/history", deps.Chat.History)

	authGroup.GET("/api/dashboard/recent-activity", deps.Dashboard.RecentActivity)
	authGroup.GET("/api/dashboard/health-insights", deps.Dashboard.HealthInsights)

	authGroup.POST("/functions/submitFeedback", deps.Feedback.Submit)
	authGroup.GET("/api/export", deps.Export.Export)
}
