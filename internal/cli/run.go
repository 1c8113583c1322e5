package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/presentation/tui"
	"github.com/aretw0/parley/pkg/runner"
)

// RunOptions configures a terminal run.
type RunOptions struct {
	Chain  string
	Input  io.Reader
	Output io.Writer
	// Plain disables the typewriter, markdown rendering and colors even on a terminal.
	Plain bool
}

// Run plays one chain in the terminal and returns its exit code. Quitting or
// an interrupt is not an error.
func Run(ctx context.Context, env *Env, opts RunOptions) (int, error) {
	if opts.Chain == "" {
		opts.Chain = env.Config.EntryChain
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	chain, err := env.Loader.Load(ctx, opts.Chain)
	if err != nil {
		return 0, fmt.Errorf("load chain %q: %w", opts.Chain, err)
	}

	runnerOpts := []runner.Option{
		runner.WithInput(opts.Input),
		runner.WithOutput(opts.Output),
		runner.WithLogger(env.Logger),
	}
	if !opts.Plain && runner.IsTerminal(opts.Output) {
		tui.PrintBanner(opts.Output, parley.Version)
		runnerOpts = append(runnerOpts,
			runner.WithSpeed(float64(env.Config.Reveal.CharsPerSecond)),
			runner.WithRenderer(tui.NewRenderer(80)),
			runner.WithSpeakerStyle(tui.SpeakerStyle()),
		)
	}

	engine := env.NewEngine()
	code, err := runner.New(runnerOpts...).Run(ctx, engine, chain)
	return code, handleExecutionError(err)
}

// handleExecutionError drops the errors that only mean the player left.
func handleExecutionError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
