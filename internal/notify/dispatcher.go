package notify

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Chris701117/pagepilot/internal/models"
)

const (
	EventTypeReminder   = "reminder"
	EventTypeCompletion = "completion"
	EventTypePublishing = "publishing"
)

// Event is the wire payload pushed to a user's live connections.
type Event struct {
	Type      string       `json:"type"`
	Post      *models.Post `json:"post"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
}

// Notifier is what the services depend on; the Dispatcher implements it.
type Notifier interface {
	Notify(userID int64, event Event)
}

// Conn is one live transport connection. Write must not block: a connection
// that cannot accept the payload right now drops the event or reports an
// error. Notifications are best-effort, never buffered.
type Conn interface {
	Write(data []byte) error
	// Alive reports whether the connection can still be written to at all.
	Alive() bool
}

// Dispatcher fans lifecycle events out to the owning user's connections.
// It is an injected component with explicit lifecycle so tests can run
// isolated instances.
type Dispatcher struct {
	mu    sync.RWMutex
	conns map[int64]map[Conn]struct{}
	users map[Conn]int64
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		conns: make(map[int64]map[Conn]struct{}),
		users: make(map[Conn]int64),
	}
}

func (d *Dispatcher) Register(userID int64, conn Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conns[userID] == nil {
		d.conns[userID] = make(map[Conn]struct{})
	}
	d.conns[userID][conn] = struct{}{}
	d.users[conn] = userID
}

func (d *Dispatcher) Unregister(conn Conn) {
	d.mu.Lock()
	defer d.mu.Unlock()

	userID, ok := d.users[conn]
	if !ok {
		return
	}
	delete(d.users, conn)
	delete(d.conns[userID], conn)
	if len(d.conns[userID]) == 0 {
		delete(d.conns, userID)
	}
}

// Notify serializes the event once and pushes it to every live connection
// for the user. Dead or unwritable connections are skipped; a write failure
// drops the connection from the registry.
func (d *Dispatcher) Notify(userID int64, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	d.mu.RLock()
	targets := make([]Conn, 0, len(d.conns[userID]))
	for conn := range d.conns[userID] {
		targets = append(targets, conn)
	}
	d.mu.RUnlock()

	for _, conn := range targets {
		if !conn.Alive() {
			continue
		}
		if err := conn.Write(data); err != nil {
			d.Unregister(conn)
		}
	}
}

// ConnCount reports the number of live connections for a user.
func (d *Dispatcher) ConnCount(userID int64) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.conns[userID])
}
