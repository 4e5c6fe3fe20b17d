// Package cli provides the command-line interface for chartsmith.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/chartsmith/internal/cli/commands"
	"github.com/leapstack-labs/chartsmith/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chartsmith",
		Short: "chartsmith - chart builder for tabular files",
		Long: `chartsmith turns CSV and Excel files into Plotly charts.

Load a dataset, describe a chart (type, axes, filters, aggregation),
preview it live in the web UI, and save the configuration so it can be
regenerated against fresh data later.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: config.ParseLogLevel(cfg.LogLevel),
			}))

			ctx := commands.WithConfig(cmd.Context(), cfg)
			ctx = commands.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Chart builder for tabular files
`)

	// Global persistent flags, all of which override the config file
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./chartsmith.yaml)")
	rootCmd.PersistentFlags().String("datasets_dir", "", "Directory scanned for datasets")
	rootCmd.PersistentFlags().String("loader", "", "Dataset loader (csv|duckdb)")
	rootCmd.PersistentFlags().String("store.type", "", "Config store backend (sqlite|postgres)")
	rootCmd.PersistentFlags().String("store.path", "", "Path to the SQLite config store")
	rootCmd.PersistentFlags().Int("ui.port", 0, "Port for the web UI")
	rootCmd.PersistentFlags().String("log_level", "", "Log level (debug|info|warn|error)")

	_ = rootCmd.RegisterFlagCompletionFunc("loader", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"csv", "duckdb"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("log_level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewUICommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewConfigsCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewImportCommand())
	rootCmd.AddCommand(commands.NewBuilderCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	rootCmd.SetContext(context.Background())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
