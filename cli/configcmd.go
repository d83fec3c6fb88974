package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quantlab/folio/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage run configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "folio.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			if err := config.Default().SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
