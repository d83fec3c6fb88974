// Package cli wires the folio command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Root builds the top-level folio command.
func Root() *cobra.Command {
	root := &cobra.Command{
		Use:           "folio",
		Short:         "Portfolio backtesting over historical price data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newBacktestCmd(),
		newReportCmd(),
		newConfigCmd(),
	)

	return root
}
