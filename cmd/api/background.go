package main

import (
	"context"
	"errors"
	"time"

	"rentora/internal/flow"
)

// sweepSpoolEvery deletes spooled media whose draft expired out of the
// session store, so abandoned wizards do not leak disk.
func (app *application) sweepSpoolEvery(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			released, err := app.spool.Sweep(func(draftID string) bool {
				ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()

				_, err := app.flows.GetDraft(ctx, draftID)
				if err == nil {
					return true
				}
				if errors.Is(err, flow.ErrNotFound) {
					return false
				}
				// Store unreachable: keep the files, retry next tick.
				app.logger.Warnw("spool sweep liveness check failed", "draft", draftID, "error", err)
				return true
			})
			if err != nil {
				app.logger.Errorf("Error sweeping media spool: %v", err)
			} else if released > 0 {
				app.logger.Infof("Released %d expired draft media directories", released)
			}
		}
	}()
}
