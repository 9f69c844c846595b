package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"azoom-rental-backend/internal/app"
	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/logger"
	"azoom-rental-backend/internal/service"
)

type SeedAccount struct {
	FirstName  string `yaml:"first_name"`
	LastName   string `yaml:"last_name"`
	Email      string `yaml:"email"`
	Password   string `yaml:"password"`
	StaffID    string `yaml:"staff_id"`
	Department string `yaml:"department"`
}

func (a SeedAccount) signupRequest() domain.SignupRequest {
	return domain.SignupRequest{
		FirstName:       a.FirstName,
		LastName:        a.LastName,
		Email:           a.Email,
		Password:        a.Password,
		ConfirmPassword: a.Password,
		AgreeTerms:      true,
		StaffID:         a.StaffID,
		Department:      a.Department,
	}
}

// SeedData lists the accounts created by the seed command.
type SeedData struct {
	Staff     []SeedAccount `yaml:"staff"`
	Customers []SeedAccount `yaml:"customers"`
}

func readSeedFile(path string) (*SeedData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed SeedData
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create staff and customer accounts from a YAML file",
		Long: `Seed signs up every account listed in the file through the normal signup
checks. Accounts whose email is already registered are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := readSeedFile(file)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app.App) error {
				var created, skipped int
				signup := func(kind domain.SessionKind, acct SeedAccount) error {
					var err error
					if kind == domain.SessionStaff {
						_, _, err = a.Auth.SignupStaff(cmd.Context(), acct.signupRequest())
					} else {
						_, _, err = a.Auth.SignupCustomer(cmd.Context(), acct.signupRequest())
					}
					switch {
					case errors.Is(err, service.ErrEmailTaken):
						logger.Info("Account already exists", "email", acct.Email)
						skipped++
						return nil
					case err != nil:
						return fmt.Errorf("%s %s: %w", kind, acct.Email, err)
					}
					created++
					return nil
				}

				for _, acct := range seed.Staff {
					if err := signup(domain.SessionStaff, acct); err != nil {
						return err
					}
				}
				for _, acct := range seed.Customers {
					if err := signup(domain.SessionCustomer, acct); err != nil {
						return err
					}
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d accounts (%d already present)\n", created, skipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "config/seed.dev.yaml", "Seed data file")
	return cmd
}
