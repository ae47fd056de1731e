package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Chris701117/pagepilot/internal/models"
	"github.com/hibiken/asynq"
)

func (q *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	post, err := q.pr.GetByID(ctx, payload.PostID)
	if err != nil {
		return err
	}

	// The task may be stale: the post can be gone, already published,
	// soft-deleted, or rescheduled to a later time (in which case a newer
	// task covers it). Stale tasks are dropped, not retried.
	if post == nil || post.Deleted || post.Status != models.PostStatusScheduled {
		return nil
	}
	if post.ScheduledTime != nil && post.ScheduledTime.After(time.Now()) {
		return nil
	}

	if _, err := q.publisher.PublishToAllPlatforms(ctx, post.ID); err != nil {
		// Publish failures are recorded on the post itself and wait for a
		// manual re-trigger; asynq must not retry them.
		slog.Info("queued publish failed", "post_id", post.ID, "error", err.Error())
	}

	return nil
}
