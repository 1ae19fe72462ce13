package handler

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/healthsphere/internal/service"
)

type ExportHandler struct {
	export *service.ExportService
}

func NewExportHandler(export *service.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// Export renders the user's history as markdown, or as HTML with
// ?format=html.
func (h *ExportHandler) Export(c *gin.Context) {
	markdown, err := h.export.BuildMarkdown(c.Request.Context(), getUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	format := strings.TrimSpace(c.Query("format"))
	if strings.EqualFold(format, "html") {
		html, err := h.export.RenderHTML(markdown)
		if err != nil {
			handleError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}
	filename := fmt.Sprintf("health-history-%s.md", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(markdown))
}
