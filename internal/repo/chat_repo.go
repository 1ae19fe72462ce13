package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/healthsphere/internal/model"
	"github.com/xxxsen/healthsphere/internal/pkg/dbutil"
)

type ChatRepo struct {
	db *sql.DB
}

func NewChatRepo(db *sql.DB) *ChatRepo {
	return &ChatRepo{db: db}
}

func (r *ChatRepo) Create(ctx context.Context, turn *model.ChatTurn) error {
	data := map[string]interface{}{
		"id":               turn.ID,
		"user_id":          turn.UserID,
		"message":          turn.Message,
		"response":         turn.Response,
		"context":          turn.Context,
		"confidence_score": turn.Confidence,
		"ctime":            turn.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("chat_sessions", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

// ListRecent returns the newest turns first; callers that need
// conversational order reverse the slice.
func (r *ChatRepo) ListRecent(ctx context.Context, userID string, limit uint) ([]model.ChatTurn, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc",
		"_limit":   []uint{0, limit},
	}
	sqlStr, args, err := builder.BuildSelect("chat_sessions", where,
		[]string{"id", "user_id", "message", "response", "context", "confidence_score", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	turns := make([]model.ChatTurn, 0)
	for rows.Next() {
		var turn model.ChatTurn
		var contextText sql.NullString
		if err := rows.Scan(&turn.ID, &turn.UserID, &turn.Message, &turn.Response,
			&contextText, &turn.Confidence, &turn.Ctime); err != nil {
			return nil, err
		}
		turn.Context = contextText.String
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}
