package handler

import (
	"github.com/gin-gonic/gin"

	appErr "github.com/xxxsen/healthsphere/internal/pkg/errors"
	"github.com/xxxsen/healthsphere/internal/pkg/response"
	"github.com/xxxsen/healthsphere/internal/service"
)

type FeedbackHandler struct {
	feedback *service.FeedbackService
}

func NewFeedbackHandler(feedback *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedback: feedback}
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, appErr.ErrInvalid)
		return
	}
	id, err := h.feedback.Submit(c.Request.Context(), getUserID(c), req.Feedback)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "status": "ok"})
}
