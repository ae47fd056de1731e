package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chris701117/pagepilot/internal/models"
	"github.com/Chris701117/pagepilot/internal/notify"
	"github.com/Chris701117/pagepilot/internal/repository"
)

type PublishService interface {
	// PublishToAllPlatforms pushes the post to every platform the page is
	// connected on and aggregates the per-platform outcomes into the post's
	// overall status. Idempotent: platforms already marked live are skipped
	// and never reset, so a manual re-trigger only fills in the gaps.
	PublishToAllPlatforms(ctx context.Context, postID int64) (*models.Post, error)
}

type publishService struct {
	pr  repository.PostRepository
	pg  repository.PageRepository
	rec repository.PublishRecordRepository
	reg *PublisherRegistry
	n   notify.Notifier
}

func NewPublishService(
	pr repository.PostRepository,
	pg repository.PageRepository,
	rec repository.PublishRecordRepository,
	reg *PublisherRegistry,
	n notify.Notifier) PublishService {
	return &publishService{
		pr:  pr,
		pg:  pg,
		rec: rec,
		reg: reg,
		n:   n,
	}
}

func (s *publishService) PublishToAllPlatforms(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.Deleted {
		return nil, fmt.Errorf("%w: cannot publish a deleted post", ErrInvalidState)
	}

	page, err := s.pg.GetByID(ctx, post.PageID)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, ErrPageNotFound
	}

	s.n.Notify(page.OwnerID, notify.Event{
		Type:    notify.EventTypePublishing,
		Post:    post,
		Message: fmt.Sprintf("Publishing %q", post.Title),
	})

	// A publish attempt runs to completion once started; one platform's
	// failure never blocks the remaining attempts.
	statuses := make(map[string]bool)
	firstExternalID := ""
	for _, platform := range models.Platforms {
		if !page.ConnectedOn(platform) {
			continue
		}
		if post.PlatformStatuses[platform] {
			continue
		}

		result := s.attempt(ctx, platform, post, page)
		statuses[platform] = result.Success
		if result.Success && firstExternalID == "" {
			firstExternalID = result.ExternalID
		}
		if !result.Success {
			slog.Info("platform publish failed",
				"post_id", post.ID, "platform", platform, "reason", result.Error)
		}
	}

	anySuccess := false
	for _, platform := range models.Platforms {
		if post.PlatformStatuses[platform] || statuses[platform] {
			anySuccess = true
			break
		}
	}

	status := models.PostStatusPublishFailed
	update := models.PostUpdate{PlatformStatuses: statuses}
	if anySuccess {
		status = models.PostStatusPublished
		if post.PublishedTime == nil {
			publishedTime := time.Now()
			update.PublishedTime = &publishedTime
		}
		if post.ExternalID == "" && firstExternalID != "" {
			update.ExternalID = &firstExternalID
		}
	}
	update.Status = &status

	updated, err := s.pr.Update(ctx, post.ID, update)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrPostNotFound
	}

	message := fmt.Sprintf("%q failed to publish on every platform", updated.Title)
	if anySuccess {
		live := 0
		for _, ok := range updated.PlatformStatuses {
			if ok {
				live++
			}
		}
		message = fmt.Sprintf("%q is live on %d platform(s)", updated.Title, live)
	}
	s.n.Notify(page.OwnerID, notify.Event{
		Type:    notify.EventTypeCompletion,
		Post:    updated,
		Message: message,
	})

	return updated, nil
}

func (s *publishService) attempt(ctx context.Context, platform string, post *models.Post, page *models.Page) PublishResult {
	publisher := s.reg.For(platform, page)

	var result PublishResult
	if publisher == nil {
		result = PublishResult{Error: fmt.Sprintf("no publisher configured for %s", platform)}
	} else {
		result = publisher.Publish(ctx, post, page)
	}

	record := models.PublishRecord{
		PostID:       post.ID,
		PageID:       page.ID,
		Platform:     platform,
		Success:      result.Success,
		ExternalID:   result.ExternalID,
		ErrorMessage: result.Error,
	}
	if _, err := s.rec.Create(ctx, &record); err != nil {
		slog.Info("failed to save publish record", "post_id", post.ID, "error", err.Error())
	}

	return result
}
