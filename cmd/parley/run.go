package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run [chain]",
	Short: "Play a chain in the terminal",
	Long:  `Plays the named chain, or entry_chain from the config. Enter skips a line being revealed and continues after it; choices are answered by number; q quits. The process exits with the chain's exit code.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		opts := cli.RunOptions{Input: cmd.InOrStdin(), Output: cmd.OutOrStdout()}
		if len(args) > 0 {
			opts.Chain = args[0]
		}
		opts.Plain, _ = cmd.Flags().GetBool("plain")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		code, err := cli.Run(ctx, env, opts)
		if err != nil {
			return err
		}
		if code != 0 {
			return exitCodeError(code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Bool("plain", false, "Print whole lines without colors even on a terminal")
}
