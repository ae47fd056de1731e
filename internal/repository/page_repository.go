package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/Chris701117/pagepilot/internal/models"
)

type PageRepository interface {
	Create(ctx context.Context, page *models.Page) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Page, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Page, error)
	// ListLive returns every page that still exists, oldest first. Used to
	// pick a fallback parent when restoring an orphaned post.
	ListLive(ctx context.Context) ([]*models.Page, error)
	Remove(ctx context.Context, id int64) error
}

type pageRepository struct {
	db *sql.DB
}

func NewPageRepository(db *sql.DB) PageRepository {
	return &pageRepository{db: db}
}

const pageColumns = `id, owner_id, name, access_token, connected, simulation, created_at, updated_at`

func scanPage(row rowScanner) (*models.Page, error) {
	var page models.Page
	var connected []byte

	err := row.Scan(&page.ID, &page.OwnerID, &page.Name, &page.AccessToken, &connected,
		&page.Simulation, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(connected) > 0 {
		if err := json.Unmarshal(connected, &page.Connected); err != nil {
			return nil, err
		}
	}
	if page.Connected == nil {
		page.Connected = make(map[string]bool)
	}

	return &page, nil
}

func (r *pageRepository) Create(ctx context.Context, page *models.Page) (int64, error) {
	if page.Connected == nil {
		page.Connected = make(map[string]bool)
	}
	connected, err := json.Marshal(page.Connected)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO pages (owner_id, name, access_token, connected, simulation)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err = r.db.QueryRowContext(ctx, query, page.OwnerID, page.Name, page.AccessToken, connected, page.Simulation).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *pageRepository) GetByID(ctx context.Context, id int64) (*models.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = $1`

	page, err := scanPage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return page, nil
}

func (r *pageRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE owner_id = $1 ORDER BY id`
	return r.listPages(ctx, query, ownerID)
}

func (r *pageRepository) ListLive(ctx context.Context) ([]*models.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages ORDER BY id`
	return r.listPages(ctx, query)
}

func (r *pageRepository) listPages(ctx context.Context, query string, args ...any) ([]*models.Page, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var pages []*models.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

func (r *pageRepository) Remove(ctx context.Context, id int64) error {
	// Posts are left pointing at the removed page; the restore path repairs
	// the dangling reference.
	query := `DELETE FROM pages WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
