package uploads

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/worklogger/internal/client/models"
	"github.com/dmitrijs2005/worklogger/internal/common"
	"github.com/dmitrijs2005/worklogger/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Enqueue(ctx context.Context, u *models.ExportUpload) error {

	query := `INSERT INTO export_uploads (local_path, filename, content_type, upload_status, url, updated_at)
			VALUES (?, ?, ?, 'pending', '', CURRENT_TIMESTAMP)
			ON CONFLICT(local_path) DO UPDATE SET
				filename = excluded.filename,
				content_type = excluded.content_type,
				upload_status = 'pending',
				url = '',
				updated_at = CURRENT_TIMESTAMP`

	_, err := r.db.ExecContext(ctx, query, u.LocalPath, u.Filename, u.ContentType)
	if err != nil {
		return fmt.Errorf("failed to enqueue upload: %w", err)
	}

	return nil
}

func (r *SQLiteRepository) Pending(ctx context.Context) ([]*models.ExportUpload, error) {

	query := `SELECT local_path, filename, content_type, upload_status, url FROM export_uploads
			WHERE upload_status = 'pending' ORDER BY updated_at, local_path`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error selecting uploads: %w", err)
	}
	defer rows.Close()

	var result []*models.ExportUpload

	for rows.Next() {
		item := &models.ExportUpload{}
		if err := rows.Scan(&item.LocalPath, &item.Filename, &item.ContentType, &item.UploadStatus, &item.URL); err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *SQLiteRepository) MarkUploaded(ctx context.Context, localPath, url string) error {

	query := `UPDATE export_uploads SET upload_status = 'completed', url = ?, updated_at = CURRENT_TIMESTAMP
			WHERE local_path = ?`
	return r.execOne(ctx, query, url, localPath)
}

func (r *SQLiteRepository) Drop(ctx context.Context, localPath string) error {
	return r.execOne(ctx, `DELETE FROM export_uploads WHERE local_path = ?`, localPath)
}

func (r *SQLiteRepository) execOne(ctx context.Context, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update upload: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return common.ErrorNotFound
	}

	return nil
}
