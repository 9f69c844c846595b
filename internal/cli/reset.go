package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"azoom-rental-backend/internal/app"
	"azoom-rental-backend/internal/domain"
)

func newResetCommand(opts *rootOptions) *cobra.Command {
	var (
		mode          string
		preserveUsers bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset rental data",
		Long: `Reset clears bookings, stock overrides, the inspection queue and damage requests.

auto     runs a full reset when no rental is active and a partial one otherwise
full     clears everything and refuses while rentals are active
partial  keeps confirmed bookings and the customers who hold them`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				result, err := a.Admin.Reset(cmd.Context(), operatorSession, domain.ResetMode(mode), preserveUsers)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Reset complete (%s)\n", result.Mode)
				fmt.Fprintf(out, "  bookings: %d kept, %d removed\n", result.BookingsKept, result.BookingsRemoved)
				fmt.Fprintf(out, "  users:    %d kept, %d removed\n", result.UsersKept, result.UsersRemoved)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(domain.ResetAuto), "Reset mode: auto, full or partial")
	cmd.Flags().BoolVar(&preserveUsers, "preserve-users", false, "Keep customer accounts on a full reset")
	return cmd
}
