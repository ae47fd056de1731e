package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chris701117/pagepilot/internal/models"
	"github.com/Chris701117/pagepilot/internal/repository"
)

// MediaReleaser frees an externally stored media asset. Implemented by the
// R2 storage service; tests supply a fake.
type MediaReleaser interface {
	Release(ctx context.Context, key string) error
}

type TrashService interface {
	// SoftDelete marks the post deleted. Deleting an already-deleted post is
	// a no-op success here; the route layer decides whether to reject it.
	SoftDelete(ctx context.Context, postID int64) (*models.Post, error)
	ListDeleted(ctx context.Context, pageID int64) ([]*models.Post, error)
	Restore(ctx context.Context, postID int64, targetPageID *int64) (*models.Post, error)
	Purge(ctx context.Context, postID int64) error
	// PurgeExpired permanently removes posts deleted longer than retention
	// ago and reports how many were purged.
	PurgeExpired(ctx context.Context, retention time.Duration) (int, error)
}

type trashService struct {
	pr    repository.PostRepository
	pg    repository.PageRepository
	media MediaReleaser
}

func NewTrashService(pr repository.PostRepository, pg repository.PageRepository, media MediaReleaser) TrashService {
	return &trashService{pr: pr, pg: pg, media: media}
}

func (s *trashService) SoftDelete(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.Deleted {
		return post, nil
	}

	deleted := true
	updated, err := s.pr.Update(ctx, postID, models.PostUpdate{Deleted: &deleted})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrPostNotFound
	}
	return updated, nil
}

func (s *trashService) ListDeleted(ctx context.Context, pageID int64) ([]*models.Post, error) {
	return s.pr.ListDeletedByPage(ctx, pageID)
}

// Restore brings a deleted post back. If its page no longer resolves it is
// reattached — to targetPageID when supplied, else to the first live page —
// because a post parked on a dead page is unreachable through every
// page-scoped listing. A restored draft stays a draft; any other status is
// normalized to published with a fresh published time so the post shows up
// in standard listings immediately.
func (s *trashService) Restore(ctx context.Context, postID int64, targetPageID *int64) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if !post.Deleted {
		return nil, fmt.Errorf("%w: post is not deleted", ErrInvalidState)
	}

	deleted := false
	update := models.PostUpdate{Deleted: &deleted}

	if targetPageID != nil {
		target, err := s.pg.GetByID(ctx, *targetPageID)
		if err != nil {
			return nil, err
		}
		if target == nil {
			return nil, ErrPageNotFound
		}
		update.PageID = targetPageID
	} else {
		page, err := s.pg.GetByID(ctx, post.PageID)
		if err != nil {
			return nil, err
		}
		if page == nil {
			live, err := s.pg.ListLive(ctx)
			if err != nil {
				return nil, err
			}
			if len(live) > 0 {
				update.PageID = &live[0].ID
			}
			// No live page at all: the post keeps its dangling reference.
		}
	}

	if post.Status != models.PostStatusDraft {
		status := models.PostStatusPublished
		publishedTime := time.Now()
		update.Status = &status
		update.PublishedTime = &publishedTime
	}

	updated, err := s.pr.Update(ctx, postID, update)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrPostNotFound
	}
	return updated, nil
}

func (s *trashService) Purge(ctx context.Context, postID int64) error {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if !post.Deleted {
		return fmt.Errorf("%w: only deleted posts can be purged", ErrInvalidState)
	}

	for _, key := range post.MediaKeys {
		if err := s.media.Release(ctx, key); err != nil {
			// Best effort: an unreleasable asset must not block the purge.
			slog.Info("failed to release media asset", "post_id", postID, "key", key, "error", err.Error())
		}
	}

	return s.pr.Remove(ctx, postID)
}

func (s *trashService) PurgeExpired(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	expired, err := s.pr.ListDeletedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, post := range expired {
		if err := s.Purge(ctx, post.ID); err != nil {
			slog.Info("failed to purge expired post", "post_id", post.ID, "error", err.Error())
			continue
		}
		purged++
	}
	return purged, nil
}
