package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"azoom-rental-backend/internal/app"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render operational reports",
	}
	cmd.AddCommand(newMonthlyReportCommand(opts))
	return cmd
}

func newMonthlyReportCommand(opts *rootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "monthly",
		Short: "Render the monthly HTML report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				var buf bytes.Buffer
				if err := a.Admin.MonthlyReport(cmd.Context(), operatorSession, &buf); err != nil {
					return err
				}
				return writeOutput(cmd, out, &buf)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the report to a file instead of stdout")
	return cmd
}

// writeOutput copies buf to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, buf *bytes.Buffer) error {
	if path == "" {
		_, err := io.Copy(cmd.OutOrStdout(), buf)
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}
