package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/xxxsen/healthsphere/internal/ai"
	"github.com/xxxsen/healthsphere/internal/pkg/response"
)

type AIHandler struct {
	client *ai.Client
}

func NewAIHandler(client *ai.Client) *AIHandler {
	return &AIHandler{client: client}
}

// Health reports which generation backend is configured. It does not probe
// the backend; a dead backend surfaces as sentinel texts in pipelines.
func (h *AIHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"status":   "ok",
		"provider": h.client.ProviderName(),
		"model":    h.client.ModelName(),
	})
}
