package service

import (
	"context"
	"testing"
	"time"

	"github.com/Chris701117/pagepilot/internal/models"
	"github.com/Chris701117/pagepilot/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trashFixture struct {
	posts    *repository.MemoryPostRepository
	pages    *repository.MemoryPageRepository
	releaser *fakeReleaser
	service  TrashService
}

func newTrashFixture(t *testing.T) *trashFixture {
	t.Helper()
	f := &trashFixture{
		posts:    repository.NewMemoryPostRepository(),
		pages:    repository.NewMemoryPageRepository(),
		releaser: &fakeReleaser{},
	}
	f.service = NewTrashService(f.posts, f.pages, f.releaser)
	return f
}

func (f *trashFixture) addPage(t *testing.T, name string) int64 {
	t.Helper()
	id, err := f.pages.Create(context.Background(), &models.Page{OwnerID: 7, Name: name})
	require.NoError(t, err)
	return id
}

func (f *trashFixture) addPost(t *testing.T, post *models.Post) int64 {
	t.Helper()
	id, err := f.posts.Create(context.Background(), post)
	require.NoError(t, err)
	return id
}

func (f *trashFixture) addDeletedPost(t *testing.T, post *models.Post) int64 {
	t.Helper()
	id := f.addPost(t, post)
	_, err := f.service.SoftDelete(context.Background(), id)
	require.NoError(t, err)
	return id
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	f := newTrashFixture(t)

	pageID := f.addPage(t, "demo")
	postID := f.addPost(t, &models.Post{PageID: pageID, Status: models.PostStatusDraft})

	deleted, err := f.service.SoftDelete(ctx, postID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	require.NotNil(t, deleted.DeletedAt)
	firstDeletedAt := *deleted.DeletedAt

	// Deleting again is a no-op success and keeps the original deletion time.
	again, err := f.service.SoftDelete(ctx, postID)
	require.NoError(t, err)
	assert.True(t, again.Deleted)
	require.NotNil(t, again.DeletedAt)
	assert.True(t, again.DeletedAt.Equal(firstDeletedAt))

	_, err = f.service.SoftDelete(ctx, 99)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestRestoreDraftKeepsStatus(t *testing.T) {
	ctx := context.Background()
	f := newTrashFixture(t)

	pageID := f.addPage(t, "demo")
	postID := f.addDeletedPost(t, &models.Post{PageID: pageID, Status: models.PostStatusDraft})

	restored, err := f.service.Restore(ctx, postID, nil)
	require.NoError(t, err)

	assert.False(t, restored.Deleted)
	assert.Nil(t, restored.DeletedAt)
	assert.Equal(t, models.PostStatusDraft, restored.Status)
	assert.Nil(t, restored.PublishedTime)
	assert.Equal(t, pageID, restored.PageID)
}

func TestRestoreNormalizesNonDraftToPublished(t *testing.T) {
	ctx := context.Background()
	f := newTrashFixture(t)

	pageID := f.addPage(t, "demo")
	scheduled := time.Now().Add(time.Hour)
	postID := f.addDeletedPost(t, &models.Post{
		PageID:        pageID,
		Status:        models.PostStatusScheduled,
		ScheduledTime: &scheduled,
	})

	before := time.Now()
	restored, err := f.service.Restore(ctx, postID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.PostStatusPublished, restored.Status)
	require.NotNil(t, restored.PublishedTime)
	assert.False(t, restored.PublishedTime.Before(before), "published time is stamped at restore")
}

func TestRestoreReattachesOrphanToFirstLivePage(t *testing.T) {
	ctx := context.Background()
	f := newTrashFixture(t)

	deadPageID := f.addPage(t, "doomed")
	livePageID := f.addPage(t, "survivor")
	postID := f.addDeletedPost(t, &models.Post{PageID: deadPageID, Status: models.PostStatusDraft})

	require.NoError(t, f.pages.Remove(ctx, deadPageID))

	restored, err := f.service.Restore(ctx, postID, nil)
	require.NoError(t, err)
	assert.Equal(t, livePageID, restored.PageID)
}

func TestRestoreWithNoLivePageKeepsReference(t *testing.T) {
	ctx := context.Background()
	f := newTrashFixture(t)

	pageID := f.addPage(t, "doomed")
	postID := f.addDeletedPost(t, &models.Post{PageID: pageID, Status: models.PostStatusDraft})

	require.NoError(t, f.pages.Remove(ctx, pageID))

	restored, err := f.service.Restore(ctx, postID, nil)
	require.NoError(t, err)
	assert.False(t, restored.Deleted)
	assert.Equal(t, pageID, restored.PageID, "nothing to reattach to")
}

func TestRestoreHonorsExplicitTarget(t *testing.T) {
	ctx := context.Background()
	f := newTrashFixture(t)

	pageID := f.addPage(t, "origin")
	targetID := f.addPage(t, "target")
	postID := f.addDeletedPost(t, &models.Post{PageID: pageID, Status: models.PostStatusDraft})

	restored, err := f.service.Restore(ctx, postID, &targetID)
	require.NoError(t, err)
	assert.Equal(t, targetID, restored.PageID, "explicit target wins even when the original page is alive")

	// A missing target is an error, not a silent fallback.
	otherID := f.addDeletedPost(t, &models.Post{PageID: pageID, Status: models.PostStatusDraft})
	missing := int64(99)
	_, err = f.service.Restore(ctx, otherID, &missing)
	assert.ErrorIs(t, err, ErrPageNotFound)
}

func TestRestoreErrors(t *testing.T) {
	ctx := context.Background()
	f := newTrashFixture(t)

	pageID := f.addPage(t, "demo")
	liveID := f.addPost(t, &models.Post{PageID: pageID, Status: models.PostStatusDraft})

	_, err := f.service.Restore(ctx, liveID, nil)
	assert.ErrorIs(t, err, ErrInvalidState, "only deleted posts can be restored")

	_, err = f.service.Restore(ctx, 99, nil)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPurgeReleasesMedia(t *testing.T) {
	ctx := context.Background()
	f := newTrashFixture(t)

	pageID := f.addPage(t, "demo")
	postID := f.addDeletedPost(t, &models.Post{
		PageID:    pageID,
		Status:    models.PostStatusDraft,
		MediaKeys: []string{"media/a.jpg", "media/b.jpg"},
	})

	require.NoError(t, f.service.Purge(ctx, postID))
	assert.Equal(t, []string{"media/a.jpg", "media/b.jpg"}, f.releaser.released)

	post, err := f.posts.GetByID(ctx, postID)
	require.NoError(t, err)
	assert.Nil(t, post)
}

func TestPurgeRequiresDeletedState(t *testing.T) {
	ctx := context.Background()
	f := newTrashFixture(t)

	pageID := f.addPage(t, "demo")
	liveID := f.addPost(t, &models.Post{PageID: pageID, Status: models.PostStatusDraft})

	err := f.service.Purge(ctx, liveID)
	assert.ErrorIs(t, err, ErrInvalidState)

	err = f.service.Purge(ctx, 99)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	f := newTrashFixture(t)
	now := time.Now()

	pageID := f.addPage(t, "demo")

	expiredID := f.addDeletedPost(t, &models.Post{PageID: pageID, Status: models.PostStatusDraft})
	old := now.Add(-40 * 24 * time.Hour)
	deleted := true
	_, err := f.posts.Update(ctx, expiredID, models.PostUpdate{Deleted: &deleted, DeletedAt: &old})
	require.NoError(t, err)

	freshID := f.addDeletedPost(t, &models.Post{PageID: pageID, Status: models.PostStatusDraft})

	purged, err := f.service.PurgeExpired(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	gone, err := f.posts.GetByID(ctx, expiredID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := f.posts.GetByID(ctx, freshID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}
