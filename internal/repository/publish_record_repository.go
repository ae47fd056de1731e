package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/Chris701117/pagepilot/internal/models"
)

type PublishRecordRepository interface {
	Create(ctx context.Context, record *models.PublishRecord) (int64, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.PublishRecord, error)
}

type publishRecordRepository struct {
	db *sql.DB
}

func NewPublishRecordRepository(db *sql.DB) PublishRecordRepository {
	return &publishRecordRepository{db: db}
}

func (r *publishRecordRepository) Create(ctx context.Context, record *models.PublishRecord) (int64, error) {
	query := `
		INSERT INTO publish_records (post_id, page_id, platform, success, external_id, error_message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, record.PostID, record.PageID, record.Platform,
		record.Success, record.ExternalID, record.ErrorMessage).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *publishRecordRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PublishRecord, error) {
	query := `SELECT id, post_id, page_id, platform, success, external_id, error_message, created_at
		FROM publish_records WHERE post_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var records []*models.PublishRecord
	for rows.Next() {
		var record models.PublishRecord
		err := rows.Scan(&record.ID, &record.PostID, &record.PageID, &record.Platform,
			&record.Success, &record.ExternalID, &record.ErrorMessage, &record.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
