package handler

import (
	"github.com/gin-gonic/gin"

	appErr "github.com/xxxsen/healthsphere/internal/pkg/errors"
	"github.com/xxxsen/healthsphere/internal/pkg/response"
	"github.com/xxxsen/healthsphere/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Message string `json:"message"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, appErr.ErrInvalid)
		return
	}
	result, err := h.chat.Chat(c.Request.Context(), getUserID(c), req.Message)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *ChatHandler) History(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), defaultListLimit)
	turns, err := h.chat.History(c.Request.Context(), getUserID(c), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"history": turns})
}
