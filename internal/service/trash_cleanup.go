package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TrashCleanup permanently deletes entities that stayed in the trash longer
// than retention. It checks every tick until ctx is cancelled.
func TrashCleanup(ctx context.Context, tick, retention time.Duration, t *Tree) {
	ticker := time.NewTicker(tick)

	zap.L().Debug("Trash cleanup attached", zap.Duration("tick_every", tick), zap.Duration("retention", retention))

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := t.PurgeTrashedBefore(ctx, t.now().Add(-retention))
				if err != nil {
					zap.L().Error("Failed to purge trash", zap.Error(err))
					continue
				}

				if n > 0 {
					zap.L().Debug("Trash cleanup finished", zap.Int("purged", n))
				}
			}
		}
	}()
}
