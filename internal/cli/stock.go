package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"azoom-rental-backend/internal/app"
)

func newStockCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stock",
		Short: "Print the fleet stock overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				snap, err := a.Dashboard.Snapshot(cmd.Context())
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CAR\tAVAILABLE\tRENTED\tSTATUS")
				for _, e := range snap.Fleet {
					fmt.Fprintf(tw, "%s\t%d/%d\t%d\t%s\n", e.CarName, e.CurrentStock, e.OriginalStock, e.Rented, e.StatusText)
				}
				if err := tw.Flush(); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "\nActive fleet: %s\n", snap.ActiveFleet)
				for _, alert := range snap.LowStock {
					fmt.Fprintf(cmd.OutOrStdout(), "Low stock: %s (%s)\n", alert.CarName, alert.Label)
				}
				return nil
			})
		},
	}
}
