package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph [chain]",
	Short: "Print a chain as a Mermaid flowchart",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		name := env.Config.EntryChain
		if len(args) > 0 {
			name = args[0]
		}
		return cli.Graph(cmd.Context(), env.Loader, name, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
