package service

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/healthsphere/internal/filestore"
	"github.com/xxxsen/healthsphere/internal/model"
	"github.com/xxxsen/healthsphere/internal/ocr"
	"github.com/xxxsen/healthsphere/internal/pkg/llmjson"
)

const (
	reportMaxTokens      = 2000
	reportTemperature    = 0.7
	reportParseFailure   = "Failed to parse LLM analysis."
	defaultUrgency       = 3
	extractionErrMessage = "Could not extract text from the uploaded document."
)

// ExtractionError aborts the report pipeline before any generation call.
// It carries the upload id so the client can reference the stored upload.
type ExtractionError struct {
	UploadID string
}

func (e *ExtractionError) Error() string {
	return extractionErrMessage
}

// ReportMeta describes the upload a report result was derived from.
type ReportMeta struct {
	Filename    string `json:"filename"`
	UploadID    string `json:"upload_id"`
	ProcessedAt int64  `json:"processed_at"`
}

// ExtractedInfo is the structured slice of the analysis surfaced to clients
// alongside the full document.
type ExtractedInfo struct {
	Meta        ReportMeta    `json:"meta"`
	Labs        []interface{} `json:"labs"`
	Diagnoses   []string      `json:"diagnoses"`
	Medications []string      `json:"medications"`
}

// ReportResult is the response for a processed report. Analysis may be an
// error document; OCR text is always the real extraction output.
type ReportResult struct {
	OCRText   string         `json:"ocr"`
	Extracted ExtractedInfo  `json:"extracted"`
	Analysis  model.Document `json:"llm_analysis"`
}

type ReportService struct {
	uploads   UploadStore
	reports   ReportStore
	extractor ocr.Extractor
	files     filestore.Store
	gen       Generator
}

func NewReportService(uploads UploadStore, reports ReportStore, extractor ocr.Extractor, files filestore.Store, gen Generator) *ReportService {
	return &ReportService{
		uploads:   uploads,
		reports:   reports,
		extractor: extractor,
		files:     files,
		gen:       gen,
	}
}

// Process runs the full report pipeline: record the upload, retain the raw
// bytes, extract text, analyze, and persist the analysis. The upload row is
// written before extraction so even failed documents leave a trace.
func (s *ReportService) Process(ctx context.Context, userID, filename string, data []byte) (*ReportResult, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("user_id", userID), zap.String("filename", filename))
	now := time.Now().UnixMilli()
	upload := &model.Upload{
		ID:       newID(),
		UserID:   userID,
		Filename: filename,
		Ctime:    now,
	}
	upload.FileKey = s.retainFile(ctx, upload, data)
	if err := s.uploads.Create(ctx, upload); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	text, err := s.extractor.ExtractText(ctx, data, filename)
	if err != nil {
		logger.Error("text extraction failed", zap.String("upload_id", upload.ID), zap.Error(err))
		return nil, &ExtractionError{UploadID: upload.ID}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Warn("document contained no extractable text", zap.String("upload_id", upload.ID))
		return nil, &ExtractionError{UploadID: upload.ID}
	}

	doc := s.analyzeReport(ctx, upload.ID, text)
	if !doc.IsError() {
		report := &model.ReportAnalysis{
			ID:           newID(),
			UserID:       userID,
			UploadID:     upload.ID,
			OCRText:      text,
			Analysis:     doc,
			Findings:     doc.StringList("findings"),
			UrgencyLevel: int(doc.Float("urgency", defaultUrgency)),
			Ctime:        time.Now().UnixMilli(),
		}
		if err := s.reports.Create(ctx, report); err != nil {
			logger.Error("failed to persist report analysis",
				zap.String("upload_id", upload.ID), zap.Error(err))
		}
	}

	return &ReportResult{
		OCRText: text,
		Extracted: ExtractedInfo{
			Meta: ReportMeta{
				Filename:    filename,
				UploadID:    upload.ID,
				ProcessedAt: time.Now().UnixMilli(),
			},
			Labs:        doc.List("lab_values"),
			Diagnoses:   doc.StringList("diagnoses"),
			Medications: doc.StringList("medications"),
		},
		Analysis: doc,
	}, nil
}

// retainFile stores the raw document best-effort. Retention failure is not
// a pipeline failure; the extraction still runs over the in-memory bytes.
// Keys are flat: the local store rejects path separators.
func (s *ReportService) retainFile(ctx context.Context, upload *model.Upload, data []byte) string {
	if s.files == nil {
		return ""
	}
	key := fmt.Sprintf("%s-%s%s", upload.UserID, upload.ID, path.Ext(upload.Filename))
	reader := &byteReadSeekCloser{Reader: bytes.NewReader(data)}
	if err := s.files.Save(ctx, key, reader, int64(len(data))); err != nil {
		logutil.GetLogger(ctx).Error("failed to retain uploaded document",
			zap.String("upload_id", upload.ID), zap.Error(err))
		return ""
	}
	return key
}

func (s *ReportService) analyzeReport(ctx context.Context, uploadID, text string) model.Document {
	prompt := buildReportPrompt(text)
	out := s.gen.Generate(ctx, prompt, reportMaxTokens, reportTemperature)
	parsed, err := llmjson.ParseObject(out)
	if err != nil {
		logutil.GetLogger(ctx).Error("report analysis did not parse",
			zap.String("upload_id", uploadID),
			zap.String("raw_response", out),
			zap.Error(err))
		return model.ErrorDocument(reportParseFailure)
	}
	return model.Document(parsed)
}

// ListRecent returns the user's stored report analyses, newest first.
func (s *ReportService) ListRecent(ctx context.Context, userID string, limit uint) ([]model.ReportAnalysis, error) {
	return s.reports.ListRecent(ctx, userID, limit)
}

func buildReportPrompt(text string) string {
	return fmt.Sprintf(`Analyze this medical report text and extract structured information.

Report text:
%s

Respond with a JSON object containing:
- summary: brief plain-language summary of the report
- findings: list of notable findings
- lab_values: list of objects with test_name, value and significance
- diagnoses: list of diagnoses mentioned
- medications: list of medications mentioned
- urgency: integer from 1 (routine) to 5 (emergency)
- recommendations: list of recommended follow-up actions

If a field is unknown or absent from the report, use "N/A" or an empty
list; never omit the field.`, text)
}

type byteReadSeekCloser struct {
	*bytes.Reader
}

func (b *byteReadSeekCloser) Close() error { return nil }
