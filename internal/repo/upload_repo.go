package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/healthsphere/internal/model"
	"github.com/xxxsen/healthsphere/internal/pkg/dbutil"
)

type UploadRepo struct {
	db *sql.DB
}

func NewUploadRepo(db *sql.DB) *UploadRepo {
	return &UploadRepo{db: db}
}

func (r *UploadRepo) Create(ctx context.Context, upload *model.Upload) error {
	data := map[string]interface{}{
		"id":       upload.ID,
		"user_id":  upload.UserID,
		"filename": upload.Filename,
		"file_key": upload.FileKey,
		"ctime":    upload.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("uploads", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *UploadRepo) ListRecent(ctx context.Context, userID string, limit uint) ([]model.Upload, error) {
	where := map[string]interface{}{
		"user_id":  userID,
		"_orderby": "ctime desc",
		"_limit":   []uint{0, limit},
	}
	sqlStr, args, err := builder.BuildSelect("uploads", where,
		[]string{"id", "user_id", "filename", "file_key", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	uploads := make([]model.Upload, 0)
	for rows.Next() {
		var upload model.Upload
		var fileKey sql.NullString
		if err := rows.Scan(&upload.ID, &upload.UserID, &upload.Filename, &fileKey, &upload.Ctime); err != nil {
			return nil, err
		}
		upload.FileKey = fileKey.String
		uploads = append(uploads, upload)
	}
	return uploads, rows.Err()
}
