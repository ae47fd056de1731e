package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Chris701117/pagepilot/internal/models"
	"github.com/Chris701117/pagepilot/internal/repository"
	"github.com/Chris701117/pagepilot/internal/transfer"
)

const ScheduledTimeLayout = "2006-01-02T15:04"

type PostService interface {
	// Create returns the stored post and, for scheduled posts, how long
	// until it is due so the caller can enqueue the publish task.
	Create(ctx context.Context, ownerID int64, pc *transfer.PostCreation) (*models.Post, time.Duration, error)
	Info(ctx context.Context, postID int64) (*models.Post, error)
	List(ctx context.Context, pageID int64, status string) ([]*models.Post, error)
	Update(ctx context.Context, postID int64, req *transfer.PostUpdateRequest) (*models.Post, error)
	MarkCompleted(ctx context.Context, postID int64) (*models.Post, error)
	MarkReminderSent(ctx context.Context, postID int64) (*models.Post, error)
}

type postService struct {
	pr repository.PostRepository
	pg repository.PageRepository
}

func NewPostService(pr repository.PostRepository, pg repository.PageRepository) PostService {
	return &postService{pr: pr, pg: pg}
}

func (s *postService) Create(ctx context.Context, ownerID int64, pc *transfer.PostCreation) (*models.Post, time.Duration, error) {
	if pc == nil {
		return nil, 0, fmt.Errorf("%w: post creation data is nil", ErrInvalidState)
	}

	page, err := s.pg.GetByID(ctx, pc.PageID)
	if err != nil {
		return nil, 0, err
	}
	if page == nil {
		return nil, 0, ErrPageNotFound
	}
	if page.OwnerID != ownerID {
		return nil, 0, ErrPageNotFound
	}

	status := pc.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if status != models.PostStatusDraft && status != models.PostStatusScheduled {
		return nil, 0, fmt.Errorf("%w: posts are created as draft or scheduled", ErrInvalidState)
	}

	post := models.Post{
		PageID:          pc.PageID,
		Title:           pc.Title,
		PlatformContent: pc.PlatformContent,
		MediaKeys:       pc.MediaKeys,
		Status:          status,
	}
	post.NormalizePlatformMaps()

	var delay time.Duration
	if status == models.PostStatusScheduled {
		if pc.ScheduledTime == "" {
			return nil, 0, fmt.Errorf("%w: scheduled posts require a scheduled time", ErrInvalidState)
		}
		scheduled, err := time.Parse(ScheduledTimeLayout, pc.ScheduledTime)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid scheduled time format", ErrInvalidState)
		}
		reminder := models.ReminderTimeFor(scheduled)
		post.ScheduledTime = &scheduled
		post.ReminderTime = &reminder

		delay = time.Until(scheduled)
		if delay < 0 {
			delay = 0
		}
	}

	id, err := s.pr.Create(ctx, &post)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating post: %w", err)
	}

	created, err := s.pr.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return created, delay, nil
}

func (s *postService) Info(ctx context.Context, postID int64) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, pageID int64, status string) ([]*models.Post, error) {
	if status != "" {
		return s.pr.ListByPageAndStatus(ctx, pageID, status)
	}
	return s.pr.ListByPage(ctx, pageID)
}

func (s *postService) Update(ctx context.Context, postID int64, req *transfer.PostUpdateRequest) (*models.Post, error) {
	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.Deleted {
		return nil, fmt.Errorf("%w: cannot update a deleted post", ErrInvalidState)
	}

	update := models.PostUpdate{
		Title:           req.Title,
		PlatformContent: req.PlatformContent,
		MediaKeys:       req.MediaKeys,
		Status:          req.Status,
	}

	if req.ScheduledTime != nil {
		scheduled, err := time.Parse(ScheduledTimeLayout, *req.ScheduledTime)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid scheduled time format", ErrInvalidState)
		}
		update.ScheduledTime = &scheduled
	}

	// A post cannot be scheduled without a scheduled time.
	targetStatus := post.Status
	if req.Status != nil {
		targetStatus = *req.Status
	}
	if targetStatus == models.PostStatusScheduled && update.ScheduledTime == nil && post.ScheduledTime == nil {
		return nil, fmt.Errorf("%w: scheduled posts require a scheduled time", ErrInvalidState)
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

func (s *postService) MarkCompleted(ctx context.Context, postID int64) (*models.Post, error) {
	completed := true
	updated, err := s.pr.Update(ctx, postID, models.PostUpdate{Completed: &completed})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrPostNotFound
	}
	return updated, nil
}

func (s *postService) MarkReminderSent(ctx context.Context, postID int64) (*models.Post, error) {
	sent := true
	updated, err := s.pr.Update(ctx, postID, models.PostUpdate{ReminderSent: &sent})
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if updated == nil {
		return nil, ErrPostNotFound
	}
	return updated, nil
}
