package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/chartsmith/internal/export"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <config-file>",
		Short: "Save a chart configuration file into the store",
		Long: `Read a chart configuration document (JSON or YAML, picked from the file
extension) and save it under a fresh id.`,
		Example: `  chartsmith import chart.yaml`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, data, err := readConfigFile(args[0])
			if err != nil {
				return err
			}
			chartCfg, err := export.UnmarshalConfig(data, *format)
			if err != nil {
				return fmt.Errorf("invalid config file: %w", err)
			}

			st, err := openStore(getConfig(cmd.Context()), getLogger(cmd.Context()))
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			id, err := st.SaveConfig(cmd.Context(), chartCfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported as %s\n", id)
			return nil
		},
	}
}
