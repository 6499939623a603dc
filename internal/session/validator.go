package session

import (
	"context"
	"time"

	slogctx "github.com/veqryn/slog-context"

	"github.com/contexmem/console/internal/serviceerr"
)

// RunValidator re-checks the stored session on a fixed interval for as
// long as ctx lives: one immediate round, then one per tick. An auth
// rejection has already destroyed the session inside Validate; every
// other failure is logged and ignored on the optimistic assumption that
// the outage is transient. The ticker stops with ctx, so no timer
// outlives its owner.
func (m *Manager) RunValidator(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := m.Validate(ctx); err != nil {
			if serviceerr.IsAuthError(err) {
				slogctx.Info(ctx, "Session rejected by the auth service, cleared local session")
			} else {
				slogctx.Debug(ctx, "Session validation failed, keeping session", "error", err)
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
