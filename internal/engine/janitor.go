package engine

import (
	"context"
	"log"
	"time"
)

// ExpireOverdue marks every ACTIVE reservation whose expiry has passed as
// EXPIRED.  The locks backing those rows have already vanished on their
// own, so no lock-store work is needed; the sweep only reconciles the
// audit view.  The core flows stay correct without it because they check
// expiry on read.
func (e *Engine) ExpireOverdue(ctx context.Context) (int64, error) {
	n, err := e.Reservations.ExpireDue(ctx, e.now())
	if err != nil {
		log.Printf("engine: janitor: expire sweep: %v", err)
		return 0, unavailableErr("expiry sweep")
	}
	return n, nil
}

// RunJanitor sweeps on the given interval until the context is cancelled.
// Intended to run in its own goroutine from main.
func (e *Engine) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := e.ExpireOverdue(ctx); err == nil && n > 0 {
				log.Printf("janitor: expired %d stale reservations", n)
			}
		}
	}
}
