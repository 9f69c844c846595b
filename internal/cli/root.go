package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"azoom-rental-backend/internal/app"
	"azoom-rental-backend/internal/config"
	"azoom-rental-backend/internal/domain"
	"azoom-rental-backend/internal/logger"
)

// operatorSession is the staff identity the CLI acts under.
var operatorSession = domain.Session{
	Kind:   domain.SessionStaff,
	UserID: "azoomctl",
	Email:  "ops@azoom.mymail.sg",
	Name:   "AZoom Operator",
}

// Loader builds the service graph for a config file path.
type Loader func(ctx context.Context, configPath string) (*app.App, error)

// LoadApp loads configuration and opens the configured storage.
func LoadApp(ctx context.Context, configPath string) (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return app.New(ctx, cfg)
}

type rootOptions struct {
	configPath string
	logLevel   string
	load       Loader
}

// withApp opens the application for the duration of fn.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := o.load(cmd.Context(), o.configPath)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// NewRootCommand returns the azoomctl command tree.
func NewRootCommand(load Loader) *cobra.Command {
	opts := &rootOptions{load: load}

	root := &cobra.Command{
		Use:   "azoomctl",
		Short: "AZoom operator tool",
		Long: `azoomctl runs maintenance tasks against the AZoom rental store:
resetting rental data, rendering reports and inspecting fleet stock.

It reads the same configuration file as the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logs go to stderr so report output on stdout stays clean.
			logger.InitializeWithWriter(opts.logLevel, "text", cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config/config.dev.yaml", "Path to configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newResetCommand(opts),
		newReportCommand(opts),
		newStockCommand(opts),
		newExportHistoryCommand(opts),
		newSeedCommand(opts),
	)
	return root
}
