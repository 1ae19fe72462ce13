package model

// ReportAnalysis is created only after OCR extraction and analysis both
// succeed; an extraction failure produces no row.
type ReportAnalysis struct {
	ID           string   `json:"id"`
	UserID       string   `json:"user_id"`
	UploadID     string   `json:"upload_id"`
	OCRText      string   `json:"ocr_text"`
	Analysis     Document `json:"llm_analysis"`
	Findings     []string `json:"findings"`
	UrgencyLevel int      `json:"urgency_level"`
	Ctime        int64    `json:"created_at"`
}
