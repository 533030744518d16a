// Package refresh provides the single idempotent refresh routine shared by
// the polling timer and manual triggers. A re-entrancy guard ensures only one
// refresh executes at a time; a superseded trigger is simply dropped, since
// the routine it would have run is the same one already running.
package refresh

import (
	"context"
	"sync/atomic"
	"time"
)

type Refresher struct {
	interval time.Duration
	fn       func(context.Context)
	busy     atomic.Bool
}

func New(interval time.Duration, fn func(context.Context)) *Refresher {
	return &Refresher{interval: interval, fn: fn}
}

// Trigger runs one refresh unless one is already in flight. Reports whether
// the refresh ran.
func (r *Refresher) Trigger(ctx context.Context) bool {
	if !r.busy.CompareAndSwap(false, true) {
		return false
	}
	defer r.busy.Store(false)
	r.fn(ctx)
	return true
}

// Run refreshes immediately and then on every tick until the context ends.
func (r *Refresher) Run(ctx context.Context) {
	r.Trigger(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Trigger(ctx)
		}
	}
}
