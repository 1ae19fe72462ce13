package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/healthsphere/internal/model"
	"github.com/xxxsen/healthsphere/internal/pkg/dbutil"
)

type ReportRepo struct {
	db *sql.DB
}

func NewReportRepo(db *sql.DB) *ReportRepo {
	return &ReportRepo{db: db}
}

func (r *ReportRepo) Create(ctx context.Context, report *model.ReportAnalysis) error {
	analysis, err := json.Marshal(report.Analysis)
	if err != nil {
		return err
	}
	findings, err := json.Marshal(report.Findings)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":            report.ID,
		"user_id":       report.UserID,
		"upload_id":     report.UploadID,
		"ocr_text":      report.OCRText,
		"llm_analysis":  string(analysis),
		"findings":      string(findings),
		"urgency_level": report.UrgencyLevel,
		"ctime":         report.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("report_analyses", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *ReportRepo) ListRecent(ctx context.Context, userID string, limit uint) ([]model.ReportAnalysis, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc",
		"_limit":   []uint{0, limit},
	}
	sqlStr, args, err := builder.BuildSelect("report_analyses", where,
		[]string{"id", "user_id", "upload_id", "ocr_text", "llm_analysis", "findings", "urgency_level", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	reports := make([]model.ReportAnalysis, 0)
	for rows.Next() {
		var report model.ReportAnalysis
		var ocrText, analysis, findings sql.NullString
		if err := rows.Scan(&report.ID, &report.UserID, &report.UploadID, &ocrText,
			&analysis, &findings, &report.UrgencyLevel, &report.Ctime); err != nil {
			return nil, err
		}
		report.OCRText = ocrText.String
		if analysis.Valid && analysis.String != "" {
			_ = json.Unmarshal([]byte(analysis.String), &report.Analysis)
		}
		if findings.Valid && findings.String != "" {
			_ = json.Unmarshal([]byte(findings.String), &report.Findings)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
