package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/Chris701117/pagepilot/internal/service"
)

// TrashJob permanently removes posts that have sat in the trash longer than
// the retention window.
type TrashJob struct {
	trash     service.TrashService
	retention time.Duration
}

func NewTrashJob(trash service.TrashService, retentionDays int) *TrashJob {
	return &TrashJob{
		trash:     trash,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

func (j *TrashJob) Run() {
	purged, err := j.trash.PurgeExpired(context.Background(), j.retention)
	if err != nil {
		slog.Info("trash sweep failed", "error", err.Error())
		return
	}
	if purged > 0 {
		slog.Info("trash sweep complete", "purged", purged)
	}
}
