package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/app"
	"github.com/mmynk/splitledger/pkg/logging"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "splitledger",
	Short: "splitledger - shared expense ledger",
	Long: `splitledger tracks expenses shared by a group, computes every member's
balance and records settlements that pay debt down.

Configuration is read from the environment (and an optional .env file).
Run "splitledger serve" to start the Connect API.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
// This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

// setup loads the configuration, installs the logger and opens the shared
// dependencies. The caller closes the returned Deps.
func setup(ctx context.Context) (*app.Config, *slog.Logger, *app.Deps, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	deps, err := app.OpenDeps(ctx, cfg, logger)
	if err != nil {
		logger.Error("open dependencies", slog.Any("error", err))
		return nil, nil, nil, err
	}
	return cfg, logger, deps, nil
}
