package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Chris701117/pagepilot/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Post, error)
	// Update merges a partial update atomically with respect to other
	// writers of the same post id and returns the updated record.
	Update(ctx context.Context, id int64, u models.PostUpdate) (*models.Post, error)
	ListByPage(ctx context.Context, pageID int64) ([]*models.Post, error)
	ListByPageAndStatus(ctx context.Context, pageID int64, status string) ([]*models.Post, error)
	ListDeletedByPage(ctx context.Context, pageID int64) ([]*models.Post, error)
	ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]*models.Post, error)
	ListNeedingReminder(ctx context.Context, now time.Time) ([]*models.Post, error)
	ListDueForPublishing(ctx context.Context, now time.Time) ([]*models.Post, error)
	Remove(ctx context.Context, id int64) error
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, page_id, external_id, title, platform_content, platform_statuses, media_keys,
	status, scheduled_time, reminder_time, reminder_sent, published_time,
	is_completed, completed_at, deleted, deleted_at, created_at, updated_at`

// Listing order: scheduled posts first by ascending scheduled time, then
// published posts by descending published time, everything else by
// descending creation time.
const postOrder = `
	CASE status WHEN 'scheduled' THEN 0 WHEN 'published' THEN 1 ELSE 2 END,
	CASE WHEN status = 'scheduled' THEN scheduled_time END ASC,
	CASE WHEN status = 'published' THEN published_time END DESC,
	created_at DESC`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var post models.Post
	var content, statuses, mediaKeys []byte

	err := row.Scan(&post.ID, &post.PageID, &post.ExternalID, &post.Title, &content, &statuses, &mediaKeys,
		&post.Status, &post.ScheduledTime, &post.ReminderTime, &post.ReminderSent, &post.PublishedTime,
		&post.IsCompleted, &post.CompletedAt, &post.Deleted, &post.DeletedAt, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(content, &post.PlatformContent); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(statuses, &post.PlatformStatuses); err != nil {
		return nil, err
	}
	if len(mediaKeys) > 0 {
		if err := json.Unmarshal(mediaKeys, &post.MediaKeys); err != nil {
			return nil, err
		}
	}
	post.NormalizePlatformMaps()

	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	post.NormalizePlatformMaps()

	content, err := json.Marshal(post.PlatformContent)
	if err != nil {
		return 0, err
	}
	statuses, err := json.Marshal(post.PlatformStatuses)
	if err != nil {
		return 0, err
	}
	mediaKeys, err := json.Marshal(post.MediaKeys)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO posts (page_id, external_id, title, platform_content, platform_statuses, media_keys,
			status, scheduled_time, reminder_time, reminder_sent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err = r.db.QueryRowContext(ctx, query, post.PageID, post.ExternalID, post.Title, content, statuses, mediaKeys,
		post.Status, post.ScheduledTime, post.ReminderTime, post.ReminderSent).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE external_id = $1 AND deleted = false`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, externalID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) Update(ctx context.Context, id int64, u models.PostUpdate) (*models.Post, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Row lock serializes concurrent merges of the same post.
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 FOR UPDATE`
	post, err := scanPost(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	post.ApplyUpdate(u, time.Now())

	content, err := json.Marshal(post.PlatformContent)
	if err != nil {
		return nil, err
	}
	statuses, err := json.Marshal(post.PlatformStatuses)
	if err != nil {
		return nil, err
	}
	mediaKeys, err := json.Marshal(post.MediaKeys)
	if err != nil {
		return nil, err
	}

	update := `
		UPDATE posts
		SET page_id = $1, external_id = $2, title = $3, platform_content = $4, platform_statuses = $5,
			media_keys = $6, status = $7, scheduled_time = $8, reminder_time = $9, reminder_sent = $10,
			published_time = $11, is_completed = $12, completed_at = $13, deleted = $14, deleted_at = $15,
			updated_at = $16
		WHERE id = $17
	`
	_, err = tx.ExecContext(ctx, update, post.PageID, post.ExternalID, post.Title, content, statuses,
		mediaKeys, post.Status, post.ScheduledTime, post.ReminderTime, post.ReminderSent,
		post.PublishedTime, post.IsCompleted, post.CompletedAt, post.Deleted, post.DeletedAt,
		post.UpdatedAt, post.ID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *postRepository) list(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

func (r *postRepository) ListByPage(ctx context.Context, pageID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE page_id = $1 AND deleted = false ORDER BY` + postOrder
	return r.list(ctx, query, pageID)
}

func (r *postRepository) ListByPageAndStatus(ctx context.Context, pageID int64, status string) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE page_id = $1 AND status = $2 AND deleted = false ORDER BY` + postOrder
	return r.list(ctx, query, pageID, status)
}

func (r *postRepository) ListDeletedByPage(ctx context.Context, pageID int64) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE page_id = $1 AND deleted = true ORDER BY deleted_at DESC`
	return r.list(ctx, query, pageID)
}

func (r *postRepository) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE deleted = true AND deleted_at <= $1`
	return r.list(ctx, query, cutoff)
}

func (r *postRepository) ListNeedingReminder(ctx context.Context, now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE deleted = false AND status = $1 AND reminder_sent = false AND reminder_time <= $2`
	return r.list(ctx, query, models.PostStatusScheduled, now)
}

func (r *postRepository) ListDueForPublishing(ctx context.Context, now time.Time) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts
		WHERE deleted = false AND status = $1 AND scheduled_time <= $2`
	return r.list(ctx, query, models.PostStatusScheduled, now)
}

func (r *postRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM posts WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
