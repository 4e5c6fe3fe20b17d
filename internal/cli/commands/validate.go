package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/chartsmith/internal/chart"
	"github.com/leapstack-labs/chartsmith/internal/export"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	var datasetPath string

	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Check a chart configuration against a dataset's schema",
		Long: `Validate a chart configuration file (JSON or YAML) against the schema
of a dataset. Every violation is reported, not just the first.`,
		Example: `  # Validate a config against a CSV file
  chartsmith validate chart.json --dataset sales.csv

  # YAML configs work too
  chartsmith validate chart.yaml --dataset sales.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0], datasetPath)
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Dataset file to validate against (required)")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func runValidate(cmd *cobra.Command, configPath, datasetPath string) error {
	cfg := getConfig(cmd.Context())

	format, data, err := readConfigFile(configPath)
	if err != nil {
		return err
	}
	chartCfg, err := export.UnmarshalConfig(data, *format)
	if err != nil {
		return fmt.Errorf("invalid config file: %w", err)
	}

	ds, err := loadDataset(cmd.Context(), cfg, datasetPath)
	if err != nil {
		return err
	}

	if _, err := chart.Validate(chartCfg, ds.Schema()); err != nil {
		var mismatch *chart.SchemaMismatchError
		if errors.As(err, &mismatch) {
			fmt.Fprintf(cmd.OutOrStdout(), "invalid: %d violation(s)\n", len(mismatch.Violations))
			for _, v := range mismatch.Violations {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", v)
			}
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ok: %q fits %s (%d columns, %d rows)\n",
		chartCfg.DefaultName(), datasetPath, len(ds.Columns), ds.RowCount())
	return nil
}
