package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/chartsmith/internal/export"
	"github.com/leapstack-labs/chartsmith/internal/store"
)

// NewConfigsCommand creates the configs command group.
func NewConfigsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "Manage saved chart configurations",
		Long:  `List, inspect and delete chart configurations in the store.`,
	}

	cmd.AddCommand(newConfigsListCommand())
	cmd.AddCommand(newConfigsShowCommand())
	cmd.AddCommand(newConfigsDeleteCommand())

	return cmd
}

func newConfigsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved chart configurations",
		Example: `  # List everything, newest first
  chartsmith configs list`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openStore(getConfig(cmd.Context()), getLogger(cmd.Context()))
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			configs, err := st.ListConfigs(cmd.Context())
			if err != nil {
				return err
			}
			renderConfigsTable(cmd, configs)
			return nil
		},
	}
}

func newConfigsShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one saved configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			st, err := openStore(getConfig(cmd.Context()), getLogger(cmd.Context()))
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			sc, err := st.GetConfig(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			doc, err := export.MarshalConfig(&sc.Config, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(doc), "\n"))
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json|yaml)")
	return cmd
}

func newConfigsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(getConfig(cmd.Context()), getLogger(cmd.Context()))
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			if err := st.DeleteConfig(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

func renderConfigsTable(cmd *cobra.Command, configs []*store.SavedConfig) {
	w := cmd.OutOrStdout()
	if len(configs) == 0 {
		_, _ = fmt.Fprintln(w, "(no saved configurations)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		t.SetAllowedRowLength(width)
	}

	t.AppendHeader(table.Row{"ID", "Name", "Type", "X", "Y", "Agg", "Saved"})
	for _, sc := range configs {
		t.AppendRow(table.Row{
			sc.ID,
			sc.Config.Name,
			string(sc.Config.Type),
			sc.Config.XAxis,
			strings.Join(sc.Config.YAxes, ", "),
			string(sc.Config.Aggregation),
			sc.SavedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d saved)\n", len(configs))
}
