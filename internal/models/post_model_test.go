package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time {
	return &t
}

func strPtr(s string) *string {
	return &s
}

func boolPtr(b bool) *bool {
	return &b
}

func newScheduledPost(scheduled time.Time) *Post {
	reminder := ReminderTimeFor(scheduled)
	post := &Post{
		Status:        PostStatusScheduled,
		ScheduledTime: timePtr(scheduled),
		ReminderTime:  timePtr(reminder),
	}
	post.NormalizePlatformMaps()
	return post
}

func TestNormalizePlatformMaps(t *testing.T) {
	post := &Post{PlatformContent: map[string]string{"fb": "hello"}}
	post.NormalizePlatformMaps()

	require.Len(t, post.PlatformContent, len(Platforms))
	require.Len(t, post.PlatformStatuses, len(Platforms))
	assert.Equal(t, "hello", post.PlatformContent[PlatformFacebook])
	for _, platform := range Platforms {
		assert.False(t, post.PlatformStatuses[platform])
	}
}

func TestApplyUpdatePlatformStatusesAreMonotonic(t *testing.T) {
	post := newScheduledPost(time.Now().Add(time.Hour))
	now := time.Now()

	post.ApplyUpdate(PostUpdate{PlatformStatuses: map[string]bool{"fb": true, "ig": false}}, now)
	assert.True(t, post.PlatformStatuses["fb"])
	assert.False(t, post.PlatformStatuses["ig"])

	// A later round that fails on fb must not clear the earlier success.
	post.ApplyUpdate(PostUpdate{PlatformStatuses: map[string]bool{"fb": false, "ig": true}}, now)
	assert.True(t, post.PlatformStatuses["fb"])
	assert.True(t, post.PlatformStatuses["ig"])
}

func TestApplyUpdateIgnoresUnknownPlatformKeys(t *testing.T) {
	post := newScheduledPost(time.Now().Add(time.Hour))

	post.ApplyUpdate(PostUpdate{
		PlatformStatuses: map[string]bool{"myspace": true},
		PlatformContent:  map[string]string{"myspace": "hi"},
	}, time.Now())

	assert.Len(t, post.PlatformStatuses, len(Platforms))
	assert.Len(t, post.PlatformContent, len(Platforms))
}

func TestApplyUpdateReminderReset(t *testing.T) {
	scheduled := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name         string
		update       PostUpdate
		wantSent     bool
		wantReminder time.Time
	}{
		{
			name:         "unrelated update leaves reminder sent",
			update:       PostUpdate{Title: strPtr("new title")},
			wantSent:     true,
			wantReminder: scheduled.Add(-24 * time.Hour),
		},
		{
			name:         "same scheduled time leaves reminder sent",
			update:       PostUpdate{ScheduledTime: timePtr(scheduled)},
			wantSent:     true,
			wantReminder: scheduled.Add(-24 * time.Hour),
		},
		{
			name:         "new scheduled time resets reminder sent",
			update:       PostUpdate{ScheduledTime: timePtr(scheduled.Add(2 * time.Hour))},
			wantSent:     false,
			wantReminder: scheduled.Add(2*time.Hour - 24*time.Hour),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := newScheduledPost(scheduled)
			post.ReminderSent = true

			post.ApplyUpdate(tt.update, time.Now())

			assert.Equal(t, tt.wantSent, post.ReminderSent)
			require.NotNil(t, post.ReminderTime)
			assert.True(t, post.ReminderTime.Equal(tt.wantReminder))
		})
	}
}

func TestApplyUpdateReminderPreservesTimeOfDay(t *testing.T) {
	scheduled := time.Date(2026, 9, 10, 18, 45, 0, 0, time.UTC)
	post := newScheduledPost(scheduled)

	require.NotNil(t, post.ReminderTime)
	assert.Equal(t, 18, post.ReminderTime.Hour())
	assert.Equal(t, 45, post.ReminderTime.Minute())
	assert.Equal(t, 9, post.ReminderTime.Day())
}

func TestApplyUpdateDeletedAtLifecycle(t *testing.T) {
	post := newScheduledPost(time.Now().Add(time.Hour))
	now := time.Now()

	post.ApplyUpdate(PostUpdate{Deleted: boolPtr(true)}, now)
	assert.True(t, post.Deleted)
	require.NotNil(t, post.DeletedAt)

	post.ApplyUpdate(PostUpdate{Deleted: boolPtr(false)}, now)
	assert.False(t, post.Deleted)
	assert.Nil(t, post.DeletedAt)
}

func TestApplyUpdateCompletion(t *testing.T) {
	post := newScheduledPost(time.Now().Add(time.Hour))
	now := time.Now()

	post.ApplyUpdate(PostUpdate{Completed: boolPtr(true)}, now)
	assert.True(t, post.IsCompleted)
	require.NotNil(t, post.CompletedAt)

	post.ApplyUpdate(PostUpdate{Completed: boolPtr(false)}, now)
	assert.False(t, post.IsCompleted)
	assert.Nil(t, post.CompletedAt)
}
