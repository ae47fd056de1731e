package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Chris701117/pagepilot/internal/models"
	"github.com/Chris701117/pagepilot/internal/notify"
	"github.com/Chris701117/pagepilot/internal/repository"
	"github.com/Chris701117/pagepilot/internal/service"
)

// LifecycleJob is the recurring scan that fires due reminders and publishes
// due posts. One failing post never aborts the rest of the tick, and a tick
// never overlaps a still-running previous tick.
type LifecycleJob struct {
	pr        repository.PostRepository
	pg        repository.PageRepository
	posts     service.PostService
	publisher service.PublishService
	n         notify.Notifier

	running atomic.Bool
}

func NewLifecycleJob(
	pr repository.PostRepository,
	pg repository.PageRepository,
	posts service.PostService,
	publisher service.PublishService,
	n notify.Notifier) *LifecycleJob {
	return &LifecycleJob{
		pr:        pr,
		pg:        pg,
		posts:     posts,
		publisher: publisher,
		n:         n,
	}
}

func (j *LifecycleJob) Run() {
	if !j.running.CompareAndSwap(false, true) {
		slog.Info("lifecycle scan still in flight, skipping tick")
		return
	}
	defer j.running.Store(false)

	ctx := context.Background()
	now := time.Now()

	j.sendReminders(ctx, now)
	j.publishDue(ctx, now)
}

func (j *LifecycleJob) sendReminders(ctx context.Context, now time.Time) {
	due, err := j.pr.ListNeedingReminder(ctx, now)
	if err != nil {
		slog.Info("reminder scan failed", "error", err.Error())
		return
	}

	for _, post := range due {
		// Mark before dispatching so a repeated tick can never send the
		// same reminder twice.
		updated, err := j.posts.MarkReminderSent(ctx, post.ID)
		if err != nil {
			slog.Info("failed to mark reminder sent", "post_id", post.ID, "error", err.Error())
			continue
		}

		page, err := j.pg.GetByID(ctx, updated.PageID)
		if err != nil || page == nil {
			slog.Info("no page for reminder", "post_id", updated.ID, "page_id", updated.PageID)
			continue
		}

		j.n.Notify(page.OwnerID, notify.Event{
			Type: notify.EventTypeReminder,
			Post: updated,
			Message: fmt.Sprintf("Reminder: %q is scheduled for %s",
				updated.Title, updated.ScheduledTime.Format(time.RFC3339)),
		})
	}
}

func (j *LifecycleJob) publishDue(ctx context.Context, now time.Time) {
	due, err := j.pr.ListDueForPublishing(ctx, now)
	if err != nil {
		slog.Info("publish scan failed", "error", err.Error())
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5)

	for _, post := range due {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(post *models.Post) {
			defer wg.Done()
			defer func() { <-semaphore }()

			// A post that ends up publish_failed stays that way until a
			// manual re-trigger; retry storms against broken credentials
			// are worse than a failed post.
			if _, err := j.publisher.PublishToAllPlatforms(ctx, post.ID); err != nil {
				slog.Info("scheduled publish failed", "post_id", post.ID, "error", err.Error())
			}
		}(post)
	}

	wg.Wait()
}
