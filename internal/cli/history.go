package cli

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"azoom-rental-backend/internal/app"
	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/repository"
)

func newExportHistoryCommand(opts *rootOptions) *cobra.Command {
	var email, out string

	cmd := &cobra.Command{
		Use:   "export-history",
		Short: "Export a customer's booking history as HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				user, err := a.Store.GetUserByEmail(cmd.Context(), email)
				if errors.Is(err, repository.ErrNotFound) {
					return fmt.Errorf("no customer with email %s", email)
				}
				if err != nil {
					return err
				}

				session := domain.Session{
					Kind:   domain.SessionCustomer,
					UserID: user.ID,
					Email:  user.Email,
					Name:   user.FullName(),
				}
				var buf bytes.Buffer
				if err := a.Customer.ExportHistory(cmd.Context(), session, &buf); err != nil {
					return err
				}
				return writeOutput(cmd, out, &buf)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Customer email address")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the history to a file instead of stdout")
	cmd.MarkFlagRequired("email")
	return cmd
}
