package service

import (
	"context"
	"testing"
	"time"

	"github.com/Chris701117/pagepilot/internal/models"
	"github.com/Chris701117/pagepilot/internal/repository"
	"github.com/Chris701117/pagepilot/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostServiceFixture(t *testing.T) (PostService, *repository.MemoryPostRepository, int64) {
	t.Helper()
	posts := repository.NewMemoryPostRepository()
	pages := repository.NewMemoryPageRepository()

	pageID, err := pages.Create(context.Background(), &models.Page{OwnerID: 7, Name: "demo"})
	require.NoError(t, err)

	return NewPostService(posts, pages), posts, pageID
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	s, _, pageID := newPostServiceFixture(t)

	tests := []struct {
		name    string
		ownerID int64
		pc      *transfer.PostCreation
		wantErr error
	}{
		{
			name:    "missing page",
			ownerID: 7,
			pc:      &transfer.PostCreation{PageID: 99, Title: "x"},
			wantErr: ErrPageNotFound,
		},
		{
			name:    "page owned by someone else",
			ownerID: 8,
			pc:      &transfer.PostCreation{PageID: pageID, Title: "x"},
			wantErr: ErrPageNotFound,
		},
		{
			name:    "scheduled without time",
			ownerID: 7,
			pc:      &transfer.PostCreation{PageID: pageID, Title: "x", Status: models.PostStatusScheduled},
			wantErr: ErrInvalidState,
		},
		{
			name:    "bad status",
			ownerID: 7,
			pc:      &transfer.PostCreation{PageID: pageID, Title: "x", Status: models.PostStatusPublished},
			wantErr: ErrInvalidState,
		},
		{
			name:    "bad time format",
			ownerID: 7,
			pc: &transfer.PostCreation{
				PageID: pageID, Title: "x",
				Status: models.PostStatusScheduled, ScheduledTime: "tomorrow",
			},
			wantErr: ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.Create(ctx, tt.ownerID, tt.pc)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateDraftPost(t *testing.T) {
	ctx := context.Background()
	s, _, pageID := newPostServiceFixture(t)

	post, delay, err := s.Create(ctx, 7, &transfer.PostCreation{
		PageID:          pageID,
		Title:           "hello",
		PlatformContent: map[string]string{"fb": "hello fb"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusDraft, post.Status)
	assert.Zero(t, delay)
	assert.Nil(t, post.ScheduledTime)
	assert.Len(t, post.PlatformStatuses, len(models.Platforms))
	assert.Equal(t, "hello fb", post.PlatformContent["fb"])
}

func TestCreateScheduledPostDerivesReminder(t *testing.T) {
	ctx := context.Background()
	s, _, pageID := newPostServiceFixture(t)

	scheduled := time.Now().Add(48 * time.Hour).Truncate(time.Minute)
	post, delay, err := s.Create(ctx, 7, &transfer.PostCreation{
		PageID:        pageID,
		Title:         "hello",
		Status:        models.PostStatusScheduled,
		ScheduledTime: scheduled.Format(ScheduledTimeLayout),
	})
	require.NoError(t, err)

	require.NotNil(t, post.ScheduledTime)
	require.NotNil(t, post.ReminderTime)
	assert.True(t, post.ReminderTime.Equal(post.ScheduledTime.Add(-24*time.Hour)))
	assert.False(t, post.ReminderSent)
	assert.Greater(t, delay, time.Duration(0))
}

func TestUpdateReschedulingResetsReminder(t *testing.T) {
	ctx := context.Background()
	s, posts, pageID := newPostServiceFixture(t)

	scheduled := time.Now().Add(48 * time.Hour).Truncate(time.Minute)
	post, _, err := s.Create(ctx, 7, &transfer.PostCreation{
		PageID:        pageID,
		Title:         "hello",
		Status:        models.PostStatusScheduled,
		ScheduledTime: scheduled.Format(ScheduledTimeLayout),
	})
	require.NoError(t, err)

	sent := true
	_, err = posts.Update(ctx, post.ID, models.PostUpdate{ReminderSent: &sent})
	require.NoError(t, err)

	// Touching other fields leaves the sent flag alone.
	title := "renamed"
	updated, err := s.Update(ctx, post.ID, &transfer.PostUpdateRequest{Title: &title})
	require.NoError(t, err)
	assert.True(t, updated.ReminderSent)

	// Moving the scheduled time re-arms the reminder.
	rescheduled := scheduled.Add(24 * time.Hour).Format(ScheduledTimeLayout)
	updated, err = s.Update(ctx, post.ID, &transfer.PostUpdateRequest{ScheduledTime: &rescheduled})
	require.NoError(t, err)
	assert.False(t, updated.ReminderSent)
	require.NotNil(t, updated.ReminderTime)
	assert.True(t, updated.ReminderTime.Equal(updated.ScheduledTime.Add(-24*time.Hour)))
}

func TestUpdateGuards(t *testing.T) {
	ctx := context.Background()
	s, posts, pageID := newPostServiceFixture(t)

	post, _, err := s.Create(ctx, 7, &transfer.PostCreation{PageID: pageID, Title: "draft"})
	require.NoError(t, err)

	scheduledStatus := models.PostStatusScheduled
	_, err = s.Update(ctx, post.ID, &transfer.PostUpdateRequest{Status: &scheduledStatus})
	assert.ErrorIs(t, err, ErrInvalidState, "cannot schedule without a time")

	deleted := true
	_, err = posts.Update(ctx, post.ID, models.PostUpdate{Deleted: &deleted})
	require.NoError(t, err)

	title := "x"
	_, err = s.Update(ctx, post.ID, &transfer.PostUpdateRequest{Title: &title})
	assert.ErrorIs(t, err, ErrInvalidState, "cannot update a deleted post")

	_, err = s.Update(ctx, 99, &transfer.PostUpdateRequest{Title: &title})
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestMarkCompleted(t *testing.T) {
	ctx := context.Background()
	s, _, pageID := newPostServiceFixture(t)

	post, _, err := s.Create(ctx, 7, &transfer.PostCreation{PageID: pageID, Title: "draft"})
	require.NoError(t, err)

	completed, err := s.MarkCompleted(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, completed.IsCompleted)
	assert.NotNil(t, completed.CompletedAt)
	assert.Equal(t, models.PostStatusDraft, completed.Status, "completion is independent of publish status")

	_, err = s.MarkCompleted(ctx, 99)
	assert.ErrorIs(t, err, ErrPostNotFound)
}
