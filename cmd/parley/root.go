package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/parley/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:           "parley",
	Short:         "Parley runs branching dialogue chains",
	Long:          `Parley plays compiled dialogue chains in the terminal, serves them over HTTP and checks them for authoring mistakes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default parley.yaml when present)")
	rootCmd.PersistentFlags().String("dir", "", "Directory containing chain documents (overrides chains_dir)")
	rootCmd.PersistentFlags().String("redis", "", "Redis address to load chains from (overrides redis.addr)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")
}

// setup resolves the persistent flags into a command environment.
func setup(cmd *cobra.Command) (*cli.Env, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	dir, _ := flags.GetString("dir")
	redisAddr, _ := flags.GetString("redis")
	debug, _ := flags.GetBool("debug")

	return cli.Setup(cli.Options{
		ConfigPath: configPath,
		Dir:        dir,
		RedisAddr:  redisAddr,
		Debug:      debug,
	})
}
