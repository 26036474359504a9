package orders

import (
	"context"
	"log/slog"
	"time"
)

// StaleCanceller is the slice of the ledger the reaper needs.
type StaleCanceller interface {
	CancelStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Reaper periodically cancels orders whose payment never completed. It is
// the backstop for webhooks that never arrive: the payer walked away, the
// delivery was lost, or the gateway was down.
type Reaper struct {
	Ledger   StaleCanceller
	Interval time.Duration
	Grace    time.Duration
	Logger   *slog.Logger
}

// Run sweeps on every tick until ctx is cancelled. A failed sweep is logged
// and retried on the next tick; the same stale orders are still there.
func (r *Reaper) Run(ctx context.Context) {
	t := time.NewTicker(r.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := r.Ledger.CancelStale(ctx, r.Grace)
			if err != nil {
				r.Logger.Error("unpaid order sweep failed", "error", err)
				continue
			}
			if n > 0 {
				r.Logger.Info("cancelled unpaid orders", "count", n, "grace", r.Grace.String())
			}
		}
	}
}
