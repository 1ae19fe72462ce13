package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appErr "github.com/xxxsen/healthsphere/internal/pkg/errors"
	"github.com/xxxsen/healthsphere/internal/pkg/response"
	"github.com/xxxsen/healthsphere/internal/service"
)

const (
	defaultListLimit = 30
	maxListLimit     = 200
)

type CheckinHandler struct {
	checkins *service.CheckinService
}

func NewCheckinHandler(checkins *service.CheckinService) *CheckinHandler {
	return &CheckinHandler{checkins: checkins}
}

// Analyze stores the submitted check-in and runs the analysis pipeline.
// The body is the analysis document itself; clients read risk_score,
// concerns, trends, recommendations and summary at the top level, or error
// when the generation failed. A failed generation is still a 200.
func (h *CheckinHandler) Analyze(c *gin.Context) {
	var payload service.CheckinPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		handleError(c, appErr.ErrInvalid)
		return
	}
	_, analysis, err := h.checkins.Analyze(c.Request.Context(), getUserID(c), &payload)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, analysis)
}

func (h *CheckinHandler) GenerateQuestions(c *gin.Context) {
	questions := h.checkins.GenerateQuestions(c.Request.Context(), getUserID(c))
	response.Success(c, gin.H{"questions": questions})
}

func (h *CheckinHandler) List(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), defaultListLimit)
	checkins, err := h.checkins.List(c.Request.Context(), getUserID(c), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"checkins": checkins})
}

func (h *CheckinHandler) RiskSeries(c *gin.Context) {
	series, err := h.checkins.RiskSeries(c.Request.Context(), getUserID(c), defaultListLimit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"series": series})
}

func parseLimit(raw string, fallback uint) uint {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return uint(n)
}
