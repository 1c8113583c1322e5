// Package process exposes allow-listed external commands to chains as
// dialogue functions. The command's trimmed stdout is the function result.
package process

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/registry"
)

// DefaultTimeout bounds a tool run when the tool sets none.
const DefaultTimeout = 5 * time.Second

// Runner executes registered tools. Only registered names can run.
type Runner struct {
	tools   map[string]Tool
	baseDir string
	timeout time.Duration
	logger  *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithTools registers tools.
func WithTools(tools ...Tool) RunnerOption {
	return func(r *Runner) {
		for _, t := range tools {
			r.Register(t)
		}
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithTimeout sets the default per-call timeout.
func WithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithLogger configures the logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logging.OrNop(logger)
	}
}

// NewRunner creates a runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		tools:   make(map[string]Tool),
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a tool to the allow-list, replacing one of the same name.
func (r *Runner) Register(t Tool) {
	r.tools[strings.ToLower(t.Name)] = t
}

// Execute runs the named tool. Chain arguments are never appended to the
// command line; they reach the process as PARLEY_ARGC, PARLEY_ARG_<i> and
// PARLEY_ARGS environment variables.
func (r *Runner) Execute(ctx context.Context, name string, args []string) (string, error) {
	t, ok := r.tools[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("process tool not registered: %s", name)
	}

	timeout := r.timeout
	if t.Timeout != "" {
		if d, err := time.ParseDuration(t.Timeout); err == nil {
			timeout = d
		}
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.Command, t.Args...)
	cmd.Dir = r.baseDir

	env := cmd.Environ()
	keys := make([]string, 0, len(t.Environment))
	for k := range t.Environment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+t.Environment[k])
	}
	env = append(env, "PARLEY_ARGC="+strconv.Itoa(len(args)), "PARLEY_ARGS="+strings.Join(args, " "))
	for i, a := range args {
		env = append(env, fmt.Sprintf("PARLEY_ARG_%d=%s", i, a))
	}
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("tool %s timed out after %s", t.Name, timeout)
		}
		return "", fmt.Errorf("tool %s failed: %w: %s", t.Name, err, strings.TrimSpace(stderr.String()))
	}
	r.logger.Debug("tool finished", "tool", t.Name, "elapsed", time.Since(start))
	return strings.TrimSpace(stdout.String()), nil
}

// DialogueFunctions implements registry.Provider: every tool becomes a raw
// function returning its output. A failing tool logs and yields "".
func (r *Runner) DialogueFunctions() []registry.Entry {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]registry.Entry, 0, len(names))
	for _, name := range names {
		entries = append(entries, registry.Static(name, registry.RawFunc(func(args []string) string {
			out, err := r.Execute(context.Background(), name, args)
			if err != nil {
				r.logger.Warn("tool call failed", "method", name, "err", err)
				return ""
			}
			return out
		})))
	}
	return entries
}
