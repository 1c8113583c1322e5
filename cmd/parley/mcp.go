package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/cli"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the engine as Model Context Protocol tools",
	Long:  `Exposes list_chains, start_run, continue, choose and get_state tools on stdio, or over SSE with --sse.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		addr, _ := cmd.Flags().GetString("sse")
		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.ServeMCP(ctx, env, addr)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("sse", "", "Serve over SSE on this address instead of stdio")
}
