package repo

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/healthsphere/internal/model"
	"github.com/xxxsen/healthsphere/internal/pkg/dbutil"
	appErr "github.com/xxxsen/healthsphere/internal/pkg/errors"
)

var checkinColumns = []string{
	"id", "user_id", "date", "answers", "notes", "top_k", "explain_method",
	"use_winsorize", "force_local", "questions", "question_version", "llm_analysis",
}

type CheckinRepo struct {
	db *sql.DB
}

func NewCheckinRepo(db *sql.DB) *CheckinRepo {
	return &CheckinRepo{db: db}
}

func (r *CheckinRepo) Create(ctx context.Context, checkin *model.CheckIn) error {
	answers, err := json.Marshal(checkin.Answers)
	if err != nil {
		return err
	}
	questions, err := json.Marshal(checkin.Questions)
	if err != nil {
		return err
	}
	data := map[string]interface{}{
		"id":               checkin.ID,
		"user_id":          checkin.UserID,
		"date":             checkin.Date,
		"answers":          string(answers),
		"notes":            checkin.Notes,
		"top_k":            checkin.TopK,
		"explain_method":   checkin.ExplainMethod,
		"use_winsorize":    checkin.UseWinsorize,
		"force_local":      checkin.ForceLocal,
		"questions":        string(questions),
		"question_version": checkin.QuestionVersion,
	}
	sqlStr, args, err := builder.BuildInsert("daily_checkins", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// UpdateAnalysis attaches the analysis document to one check-in. The write
// replaces the column wholesale and is scoped by (id, user_id) so it can
// never touch another user's rows.
func (r *CheckinRepo) UpdateAnalysis(ctx context.Context, userID, checkinID string, analysis model.Document) error {
	encoded, err := json.Marshal(analysis)
	if err != nil {
		return err
	}
	where := map[string]interface{}{
		"id":      checkinID,
		"user_id": userID,
	}
	update := map[string]interface{}{
		"llm_analysis": string(encoded),
	}
	sqlStr, args, err := builder.BuildUpdate("daily_checkins", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

// ListRecent returns the newest check-ins first.
func (r *CheckinRepo) ListRecent(ctx context.Context, userID string, limit uint) ([]model.CheckIn, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "date desc",
		"_limit":   []uint{0, limit},
	}
	return r.list(ctx, where)
}

// ListAnalyzed returns analyzed check-ins in ascending date order, for the
// risk series chart.
func (r *CheckinRepo) ListAnalyzed(ctx context.Context, userID string, limit uint) ([]model.CheckIn, error) {
	where := map[string]interface{}{
		"user_id":   userID,
		"_custom_a": builder.Custom("llm_analysis IS NOT NULL"),
		"_orderby":  "date asc",
		"_limit":    []uint{0, limit},
	}
	return r.list(ctx, where)
}

// ListPendingAnalysis returns check-ins whose analysis never completed,
// oldest first, across users. Used only by the backfill job; every write it
// triggers is still scoped by (id, user_id).
func (r *CheckinRepo) ListPendingAnalysis(ctx context.Context, limit uint) ([]model.CheckIn, error) {
	where := map[string]interface{}{
		"_custom_a": builder.Custom("llm_analysis IS NULL"),
		"_orderby":  "date asc",
		"_limit":    []uint{0, limit},
	}
	return r.list(ctx, where)
}

func (r *CheckinRepo) list(ctx context.Context, where map[string]interface{}) ([]model.CheckIn, error) {
	sqlStr, args, err := builder.BuildSelect("daily_checkins", where, checkinColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	checkins := make([]model.CheckIn, 0)
	for rows.Next() {
		checkin, err := scanCheckIn(rows)
		if err != nil {
			return nil, err
		}
		checkins = append(checkins, checkin)
	}
	return checkins, rows.Err()
}

func scanCheckIn(rows *sql.Rows) (model.CheckIn, error) {
	var checkin model.CheckIn
	var answers, questions string
	var notes, analysis sql.NullString
	if err := rows.Scan(
		&checkin.ID, &checkin.UserID, &checkin.Date, &answers, &notes,
		&checkin.TopK, &checkin.ExplainMethod, &checkin.UseWinsorize,
		&checkin.ForceLocal, &questions, &checkin.QuestionVersion, &analysis,
	); err != nil {
		return model.CheckIn{}, err
	}
	checkin.Notes = notes.String
	if err := json.Unmarshal([]byte(answers), &checkin.Answers); err != nil {
		checkin.Answers = map[string]interface{}{}
	}
	if questions != "" {
		_ = json.Unmarshal([]byte(questions), &checkin.Questions)
	}
	if analysis.Valid && analysis.String != "" {
		_ = json.Unmarshal([]byte(analysis.String), &checkin.Analysis)
	}
	return checkin, nil
}
