package jobs

import (
	"context"

	"azoom-rental-backend/internal/logger"
)

// CheckLowStock alerts operations when any model is down to its last units
func (jr *JobRunner) CheckLowStock() {
	jr.runWithRecovery("CheckLowStock", func() {
		ctx := context.Background()

		snap, err := jr.services.Dashboard.Snapshot(ctx)
		if err != nil {
			logger.Error("Failed to load dashboard snapshot", "error", err)
			return
		}
		if len(snap.LowStock) == 0 {
			logger.Info("No low stock models")
			return
		}

		if err := jr.services.Email.SendLowStockAlert(ctx, snap.LowStock); err != nil {
			logger.Error("Failed to send low stock alert", "models", len(snap.LowStock), "error", err)
			return
		}
		logger.Info("Sent low stock alert", "models", len(snap.LowStock))
	})
}
