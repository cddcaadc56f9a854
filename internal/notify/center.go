// Package notify provides the user-visible notification queue and optional
// outbound notification channels.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"marketdash/internal/models"
	"marketdash/pkg/utils"
)

// Center is an append-only queue of user-visible notifications, each with a
// bounded lifetime. Expiry timers and explicit dismissals race by design;
// removal is an idempotent set-difference, so whichever runs second is a
// silent no-op.
type Center struct {
	ttl      time.Duration
	logger   zerolog.Logger
	channels []Channel
	retry    utils.RetryConfig

	mu     sync.Mutex
	nextID int64
	items  []models.Notification
	timers map[int64]*time.Timer
	closed bool
}

// NewCenter creates a notification center. Each posted notification is
// auto-dismissed after ttl.
func NewCenter(ttl time.Duration, logger zerolog.Logger) *Center {
	return &Center{
		ttl:    ttl,
		logger: logger.With().Str("component", "notify").Logger(),
		retry:  utils.DefaultRetryConfig(),
		nextID: 1,
		timers: make(map[int64]*time.Timer),
	}
}

// AddChannel registers an outbound channel mirroring alert notifications.
func (c *Center) AddChannel(ch Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels = append(c.channels, ch)
}

// Post appends a notification and arms its expiry timer.
func (c *Center) Post(message string, severity models.Severity) int64 {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0
	}

	n := models.Notification{
		ID:        c.nextID,
		Message:   message,
		Severity:  severity,
		CreatedAt: time.Now(),
	}
	c.nextID++
	c.items = append(c.items, n)

	id := n.ID
	c.timers[id] = time.AfterFunc(c.ttl, func() {
		c.Dismiss(id)
	})

	channels := make([]Channel, len(c.channels))
	copy(channels, c.channels)
	c.mu.Unlock()

	c.logger.Debug().Int64("id", n.ID).Str("severity", string(severity)).Msg("Notification posted")

	// Only alert-severity notifications mirror outward; delivery is
	// best-effort with a short retry and must not block the caller.
	if severity == models.SeverityAlert {
		for _, ch := range channels {
			if ch.IsEnabled() {
				go func(ch Channel) {
					err := utils.Retry(context.Background(), c.retry, func() error {
						return ch.Send(n)
					})
					if err != nil {
						c.logger.Warn().Err(err).Str("channel", ch.Name()).Msg("Channel send failed")
					}
				}(ch)
			}
		}
	}

	return n.ID
}

// Dismiss removes a notification by ID and disarms its timer. Dismissing an
// already-removed or unknown ID does nothing.
func (c *Center) Dismiss(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}

	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// List returns visible notifications, oldest first.
func (c *Center) List() []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Close disarms all pending expiry timers. Subsequent posts are dropped.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}
