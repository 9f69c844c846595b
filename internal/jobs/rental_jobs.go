package jobs

import (
	"context"

	"azoom-rental-backend/internal/logger"
)

// SendOverdueReminders emails every customer whose rental is past its expected return
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()

		snap, err := jr.services.Dashboard.Snapshot(ctx)
		if err != nil {
			logger.Error("Failed to load dashboard snapshot", "error", err)
			return
		}

		sent := 0
		for _, rental := range snap.Overdue {
			if rental.CustomerEmail == "" {
				logger.Warn("Overdue rental has no customer email", "booking_id", rental.BookingID)
				continue
			}
			if err := jr.services.Email.SendOverdueReminder(ctx, rental); err != nil {
				logger.Error("Failed to send overdue reminder",
					"booking_id", rental.BookingID,
					"email", rental.CustomerEmail,
					"error", err)
				continue
			}
			sent++
		}

		logger.Info("Sent overdue reminders", "count", sent, "overdue", len(snap.Overdue))
	})
}
