package models

import "time"

// Page is one externally managed destination (a social account/page). It is
// the account of record on Facebook; other platforms are attempted only when
// Connected marks them as linked. Connection state is written by the external
// connect flow, the core only reads it.
type Page struct {
	ID          int64           `db:"id" json:"id"`
	OwnerID     int64           `db:"owner_id" json:"owner_id"`
	Name        string          `db:"name" json:"name"`
	AccessToken string          `db:"access_token" json:"-"` // encrypted, opaque to the core
	Connected   map[string]bool `db:"connected" json:"connected"`
	Simulation  bool            `db:"simulation" json:"simulation"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// ConnectedOn reports whether publishing should be attempted on a platform.
// Facebook is always attempted.
func (p *Page) ConnectedOn(platform string) bool {
	if platform == PlatformFacebook {
		return true
	}
	return p.Connected[platform]
}
