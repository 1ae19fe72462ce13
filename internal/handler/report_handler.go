package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	appErr "github.com/xxxsen/healthsphere/internal/pkg/errors"
	"github.com/xxxsen/healthsphere/internal/pkg/response"
	"github.com/xxxsen/healthsphere/internal/service"
)

// Uploaded documents are read fully into memory for OCR; cap the size.
const maxUploadBytes = 20 << 20

type ReportHandler struct {
	reports *service.ReportService
}

func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Process accepts a multipart "file" field and runs the report pipeline.
// An unreadable document is a 422 carrying the stored upload id; analysis
// failures are soft and come back inside the 200 body.
func (h *ReportHandler) Process(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		handleError(c, appErr.ErrInvalid)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "too_large", "uploaded file is too large")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		handleError(c, appErr.ErrInvalid)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil || len(data) == 0 || len(data) > maxUploadBytes {
		handleError(c, appErr.ErrInvalid)
		return
	}

	result, err := h.reports.Process(c.Request.Context(), getUserID(c), fileHeader.Filename, data)
	if err != nil {
		var extractionErr *service.ExtractionError
		if errors.As(err, &extractionErr) {
			response.ErrorWith(c, http.StatusUnprocessableEntity, "ocr_failed", extractionErr.Error(),
				gin.H{"upload_id": extractionErr.UploadID})
			return
		}
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
