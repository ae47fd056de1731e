package service

import (
	"context"
	"sync"

	"github.com/Chris701117/pagepilot/internal/models"
	"github.com/Chris701117/pagepilot/internal/notify"
)

type fakeNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	users  []int64
}

func (f *fakeNotifier) Notify(userID int64, event notify.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	f.users = append(f.users, userID)
}

func (f *fakeNotifier) byType(eventType string) []notify.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []notify.Event
	for _, e := range f.events {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

type publisherFunc func(ctx context.Context, post *models.Post, page *models.Page) PublishResult

func (f publisherFunc) Publish(ctx context.Context, post *models.Post, page *models.Page) PublishResult {
	return f(ctx, post, page)
}

func succeedingPublisher(externalID string) PlatformPublisher {
	return publisherFunc(func(ctx context.Context, post *models.Post, page *models.Page) PublishResult {
		return PublishResult{Success: true, ExternalID: externalID}
	})
}

func failingPublisher(reason string) PlatformPublisher {
	return publisherFunc(func(ctx context.Context, post *models.Post, page *models.Page) PublishResult {
		return PublishResult{Error: reason}
	})
}

type fakeReleaser struct {
	mu       sync.Mutex
	released []string
}

func (f *fakeReleaser) Release(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, key)
	return nil
}
