package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate [chain...]",
	Short: "Check chains for authoring mistakes",
	Long:  `Loads the named chains, or every chain, and reports jumps and choices naming unknown labels, duplicate labels, empty lines, choices and calls.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		problems, err := cli.Validate(cmd.Context(), env.Loader, args, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if problems > 0 {
			return fmt.Errorf("%d problem(s) found", problems)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "all chains are valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
