package jobs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"azoom-rental-backend/internal/logger"
)

// GenerateMonthlyReport renders the monthly report into the reports directory
// and mails a copy to operations.
func (jr *JobRunner) GenerateMonthlyReport() {
	jr.runWithRecovery("GenerateMonthlyReport", func() {
		ctx := context.Background()
		now := jr.now().UTC()

		var buf bytes.Buffer
		if err := jr.services.Admin.MonthlyReport(ctx, systemSession, &buf); err != nil {
			logger.Error("Failed to render monthly report", "error", err)
			return
		}

		path, err := jr.writeReport(fmt.Sprintf("monthly-report-%s.html", now.Format("2006-01-02")), buf.Bytes())
		if err != nil {
			logger.Error("Failed to write monthly report", "error", err)
		} else {
			logger.Info("Wrote monthly report", "path", path)
		}

		subject := fmt.Sprintf("AZoom monthly report - %s", now.Format("January 2006"))
		if err := jr.services.Email.SendReport(ctx, subject, buf.String()); err != nil {
			logger.Error("Failed to email monthly report", "error", err)
		}
	})
}

func (jr *JobRunner) writeReport(name string, data []byte) (string, error) {
	dir := jr.config.Reports.OutputDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
