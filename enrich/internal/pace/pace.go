// Package pace enforces a fixed pause between outbound navigation steps so
// the request rate against the source sites stays bounded.
package pace

import (
	"context"
	"log/slog"
	"time"
)

// Pacer pauses for a fixed delay on every call to Pause.
type Pacer struct {
	delay  time.Duration
	logger *slog.Logger
}

// New creates a Pacer. A non-positive delay makes Pause return immediately.
func New(delay time.Duration, logger *slog.Logger) *Pacer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pacer{delay: delay, logger: logger}
}

// Delay returns the configured pause.
func (p *Pacer) Delay() time.Duration { return p.delay }

// Pause blocks for the configured delay. It returns early only when ctx is
// done, with ctx's error.
func (p *Pacer) Pause(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	p.logger.DebugContext(ctx, "pace: pausing", "delay_ms", p.delay.Milliseconds())
	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
