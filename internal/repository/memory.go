package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Chris701117/pagepilot/internal/models"
)

// In-memory adapters backing the same repository interfaces as the postgres
// ones. Used by tests and local development. A single mutex per store
// serializes writes, which satisfies the one-writer-per-id contract; reads
// return deep copies so callers never alias stored state.

type MemoryPostRepository struct {
	mu    sync.RWMutex
	seq   int64
	posts map[int64]*models.Post
}

func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{posts: make(map[int64]*models.Post)}
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.PlatformContent = make(map[string]string, len(p.PlatformContent))
	for k, v := range p.PlatformContent {
		c.PlatformContent[k] = v
	}
	c.PlatformStatuses = make(map[string]bool, len(p.PlatformStatuses))
	for k, v := range p.PlatformStatuses {
		c.PlatformStatuses[k] = v
	}
	if p.MediaKeys != nil {
		c.MediaKeys = append([]string(nil), p.MediaKeys...)
	}
	copyTime := func(t *time.Time) *time.Time {
		if t == nil {
			return nil
		}
		v := *t
		return &v
	}
	c.ScheduledTime = copyTime(p.ScheduledTime)
	c.ReminderTime = copyTime(p.ReminderTime)
	c.PublishedTime = copyTime(p.PublishedTime)
	c.CompletedAt = copyTime(p.CompletedAt)
	c.DeletedAt = copyTime(p.DeletedAt)
	return &c
}

func (r *MemoryPostRepository) Create(ctx context.Context, post *models.Post) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	stored := clonePost(post)
	stored.ID = r.seq
	stored.NormalizePlatformMaps()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.posts[stored.ID] = stored

	return stored.ID, nil
}

func (r *MemoryPostRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	return clonePost(post), nil
}

func (r *MemoryPostRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, post := range r.posts {
		if post.ExternalID == externalID && !post.Deleted {
			return clonePost(post), nil
		}
	}
	return nil, nil
}

func (r *MemoryPostRepository) Update(ctx context.Context, id int64, u models.PostUpdate) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	post.ApplyUpdate(u, time.Now())
	return clonePost(post), nil
}

func (r *MemoryPostRepository) selectPosts(match func(*models.Post) bool) []*models.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var posts []*models.Post
	for _, post := range r.posts {
		if match(post) {
			posts = append(posts, clonePost(post))
		}
	}
	return posts
}

func statusRank(status string) int {
	switch status {
	case models.PostStatusScheduled:
		return 0
	case models.PostStatusPublished:
		return 1
	default:
		return 2
	}
}

// sortPosts mirrors the SQL listing order.
func sortPosts(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		ra, rb := statusRank(a.Status), statusRank(b.Status)
		if ra != rb {
			return ra < rb
		}
		switch ra {
		case 0:
			if a.ScheduledTime != nil && b.ScheduledTime != nil && !a.ScheduledTime.Equal(*b.ScheduledTime) {
				return a.ScheduledTime.Before(*b.ScheduledTime)
			}
		case 1:
			if a.PublishedTime != nil && b.PublishedTime != nil && !a.PublishedTime.Equal(*b.PublishedTime) {
				return a.PublishedTime.After(*b.PublishedTime)
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func (r *MemoryPostRepository) ListByPage(ctx context.Context, pageID int64) ([]*models.Post, error) {
	posts := r.selectPosts(func(p *models.Post) bool {
		return p.PageID == pageID && !p.Deleted
	})
	sortPosts(posts)
	return posts, nil
}

func (r *MemoryPostRepository) ListByPageAndStatus(ctx context.Context, pageID int64, status string) ([]*models.Post, error) {
	posts := r.selectPosts(func(p *models.Post) bool {
		return p.PageID == pageID && p.Status == status && !p.Deleted
	})
	sortPosts(posts)
	return posts, nil
}

func (r *MemoryPostRepository) ListDeletedByPage(ctx context.Context, pageID int64) ([]*models.Post, error) {
	posts := r.selectPosts(func(p *models.Post) bool {
		return p.PageID == pageID && p.Deleted
	})
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i].DeletedAt, posts[j].DeletedAt
		if a != nil && b != nil && !a.Equal(*b) {
			return a.After(*b)
		}
		return posts[i].ID > posts[j].ID
	})
	return posts, nil
}

func (r *MemoryPostRepository) ListDeletedBefore(ctx context.Context, cutoff time.Time) ([]*models.Post, error) {
	return r.selectPosts(func(p *models.Post) bool {
		return p.Deleted && p.DeletedAt != nil && !p.DeletedAt.After(cutoff)
	}), nil
}

func (r *MemoryPostRepository) ListNeedingReminder(ctx context.Context, now time.Time) ([]*models.Post, error) {
	return r.selectPosts(func(p *models.Post) bool {
		return !p.Deleted && p.Status == models.PostStatusScheduled &&
			!p.ReminderSent && p.ReminderTime != nil && !p.ReminderTime.After(now)
	}), nil
}

func (r *MemoryPostRepository) ListDueForPublishing(ctx context.Context, now time.Time) ([]*models.Post, error) {
	return r.selectPosts(func(p *models.Post) bool {
		return !p.Deleted && p.Status == models.PostStatusScheduled &&
			p.ScheduledTime != nil && !p.ScheduledTime.After(now)
	}), nil
}

func (r *MemoryPostRepository) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.posts, id)
	return nil
}

type MemoryPageRepository struct {
	mu    sync.RWMutex
	seq   int64
	pages map[int64]*models.Page
}

func NewMemoryPageRepository() *MemoryPageRepository {
	return &MemoryPageRepository{pages: make(map[int64]*models.Page)}
}

func clonePage(p *models.Page) *models.Page {
	c := *p
	c.Connected = make(map[string]bool, len(p.Connected))
	for k, v := range p.Connected {
		c.Connected[k] = v
	}
	return &c
}

func (r *MemoryPageRepository) Create(ctx context.Context, page *models.Page) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	stored := clonePage(page)
	stored.ID = r.seq
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.pages[stored.ID] = stored

	return stored.ID, nil
}

func (r *MemoryPageRepository) GetByID(ctx context.Context, id int64) (*models.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page, ok := r.pages[id]
	if !ok {
		return nil, nil
	}
	return clonePage(page), nil
}

func (r *MemoryPageRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pages []*models.Page
	for _, page := range r.pages {
		if page.OwnerID == ownerID {
			pages = append(pages, clonePage(page))
		}
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].ID < pages[j].ID })
	return pages, nil
}

func (r *MemoryPageRepository) ListLive(ctx context.Context) ([]*models.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pages []*models.Page
	for _, page := range r.pages {
		pages = append(pages, clonePage(page))
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].ID < pages[j].ID })
	return pages, nil
}

func (r *MemoryPageRepository) Remove(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.pages, id)
	return nil
}

type MemoryPublishRecordRepository struct {
	mu      sync.RWMutex
	seq     int64
	records []*models.PublishRecord
}

func NewMemoryPublishRecordRepository() *MemoryPublishRecordRepository {
	return &MemoryPublishRecordRepository{}
}

func (r *MemoryPublishRecordRepository) Create(ctx context.Context, record *models.PublishRecord) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	stored := *record
	stored.ID = r.seq
	stored.CreatedAt = time.Now()
	r.records = append(r.records, &stored)

	return stored.ID, nil
}

func (r *MemoryPublishRecordRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PublishRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var records []*models.PublishRecord
	for i := len(r.records) - 1; i >= 0; i-- {
		if r.records[i].PostID == postID {
			record := *r.records[i]
			records = append(records, &record)
		}
	}
	return records, nil
}
