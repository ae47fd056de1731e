package handlers

import (
	"bufio"
	"fmt"

	"github.com/Chris701117/pagepilot/internal/notify"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

type NotificationHandler struct {
	d *notify.Dispatcher
}

func NewNotificationHandler(d *notify.Dispatcher) *NotificationHandler {
	return &NotificationHandler{d: d}
}

// Stream registers the caller for lifecycle events over server-sent events.
// The connection is dropped from the dispatcher as soon as the client goes
// away; events raised while nobody listens are simply lost.
func (h *NotificationHandler) Stream(c *fiber.Ctx) error {
	userID := GetUserID(c)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	conn := notify.NewStreamConn(64)
	h.d.Register(userID, conn)

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.d.Unregister(conn)
		defer conn.Close()

		for data := range conn.C() {
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}
