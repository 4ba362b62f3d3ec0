package cmd

import (
	"fmt"

	"github.com/rkirkendall/nano-canvas/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Version)
			if check {
				maybeSelfUpdate(cmd)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")
	return cmd
}

func init() { rootCmd.AddCommand(newVersionCmd()) }
