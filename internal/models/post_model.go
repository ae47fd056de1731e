package models

import "time"

type Post struct {
	ID               int64             `db:"id" json:"id"`
	PageID           int64             `db:"page_id" json:"page_id"`
	ExternalID       string            `db:"external_id" json:"external_id"`
	Title            string            `db:"title" json:"title"`
	PlatformContent  map[string]string `db:"platform_content" json:"platform_content"`
	PlatformStatuses map[string]bool   `db:"platform_statuses" json:"platform_statuses"`
	MediaKeys        []string          `db:"media_keys" json:"media_keys"`
	Status           string            `db:"status" json:"status"` // draft, scheduled, published, publish_failed
	ScheduledTime    *time.Time        `db:"scheduled_time" json:"scheduled_time"`
	ReminderTime     *time.Time        `db:"reminder_time" json:"reminder_time"`
	ReminderSent     bool              `db:"reminder_sent" json:"reminder_sent"`
	PublishedTime    *time.Time        `db:"published_time" json:"published_time"`
	IsCompleted      bool              `db:"is_completed" json:"is_completed"`
	CompletedAt      *time.Time        `db:"completed_at" json:"completed_at"`
	Deleted          bool              `db:"deleted" json:"deleted"`
	DeletedAt        *time.Time        `db:"deleted_at" json:"deleted_at"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updated_at"`
}

const (
	PostStatusDraft         = "draft"
	PostStatusScheduled     = "scheduled"
	PostStatusPublished     = "published"
	PostStatusPublishFailed = "publish_failed"
)

const (
	PlatformFacebook  = "fb"
	PlatformInstagram = "ig"
	PlatformTiktok    = "tiktok"
	PlatformThreads   = "threads"
	PlatformX         = "x"
)

// Platforms is the fixed set of platform keys. Both per-platform maps on a
// Post always carry every key in this list.
var Platforms = []string{
	PlatformFacebook,
	PlatformInstagram,
	PlatformTiktok,
	PlatformThreads,
	PlatformX,
}

// ReminderOffset is how far ahead of the scheduled time the reminder fires.
const ReminderOffset = 24 * time.Hour

func ReminderTimeFor(scheduled time.Time) time.Time {
	return scheduled.Add(-ReminderOffset)
}

// NormalizePlatformMaps fills in missing platform keys so the maps always
// contain the full fixed set.
func (p *Post) NormalizePlatformMaps() {
	if p.PlatformContent == nil {
		p.PlatformContent = make(map[string]string, len(Platforms))
	}
	if p.PlatformStatuses == nil {
		p.PlatformStatuses = make(map[string]bool, len(Platforms))
	}
	for _, key := range Platforms {
		if _, ok := p.PlatformContent[key]; !ok {
			p.PlatformContent[key] = ""
		}
		if _, ok := p.PlatformStatuses[key]; !ok {
			p.PlatformStatuses[key] = false
		}
	}
}

// PostUpdate is a partial update. Nil fields are left untouched; map fields
// are merged key by key.
type PostUpdate struct {
	PageID           *int64
	ExternalID       *string
	Title            *string
	PlatformContent  map[string]string
	PlatformStatuses map[string]bool
	MediaKeys        []string
	Status           *string
	ScheduledTime    *time.Time
	ReminderSent     *bool
	PublishedTime    *time.Time
	Completed        *bool
	Deleted          *bool
	DeletedAt        *time.Time
}

// ApplyUpdate merges u into p. Both storage adapters call this inside their
// per-post critical section so the merge is atomic with respect to other
// writers of the same id.
//
// Rules encoded here:
//   - platform status true values are monotonic: a false in the update never
//     clears a previously recorded true
//   - changing ScheduledTime to a different instant resets ReminderSent so a
//     new reminder fires; an unchanged ScheduledTime leaves it alone
//   - ReminderTime is re-derived whenever the post ends up scheduled with a
//     scheduled time
//   - clearing Deleted also clears DeletedAt
func (p *Post) ApplyUpdate(u PostUpdate, now time.Time) {
	if u.PageID != nil {
		p.PageID = *u.PageID
	}
	if u.ExternalID != nil {
		p.ExternalID = *u.ExternalID
	}
	if u.Title != nil {
		p.Title = *u.Title
	}
	for key, content := range u.PlatformContent {
		if _, ok := p.PlatformContent[key]; ok {
			p.PlatformContent[key] = content
		}
	}
	for key, ok := range u.PlatformStatuses {
		if _, known := p.PlatformStatuses[key]; known {
			p.PlatformStatuses[key] = p.PlatformStatuses[key] || ok
		}
	}
	if u.MediaKeys != nil {
		p.MediaKeys = u.MediaKeys
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.ScheduledTime != nil {
		scheduled := *u.ScheduledTime
		if p.ScheduledTime == nil || !p.ScheduledTime.Equal(scheduled) {
			p.ReminderSent = false
		}
		p.ScheduledTime = &scheduled
	}
	if p.Status == PostStatusScheduled && p.ScheduledTime != nil {
		reminder := ReminderTimeFor(*p.ScheduledTime)
		p.ReminderTime = &reminder
	}
	if u.ReminderSent != nil {
		p.ReminderSent = *u.ReminderSent
	}
	if u.PublishedTime != nil {
		p.PublishedTime = u.PublishedTime
	}
	if u.Completed != nil {
		p.IsCompleted = *u.Completed
		if *u.Completed {
			completedAt := now
			p.CompletedAt = &completedAt
		} else {
			p.CompletedAt = nil
		}
	}
	if u.Deleted != nil {
		p.Deleted = *u.Deleted
		if *u.Deleted {
			if u.DeletedAt != nil {
				p.DeletedAt = u.DeletedAt
			} else {
				deletedAt := now
				p.DeletedAt = &deletedAt
			}
		} else {
			p.DeletedAt = nil
		}
	}
	p.UpdatedAt = now
}
