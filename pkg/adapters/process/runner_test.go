package process_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/adapters/process"
	"github.com/aretw0/parley/pkg/registry"
)

func load(t *testing.T) *process.Runner {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tool fixtures use sh")
	}
	tools, err := process.LoadTools(filepath.Join("testdata", "tools.yaml"))
	require.NoError(t, err)
	require.Len(t, tools, 3)
	return process.NewRunner(process.WithTools(tools...))
}

func TestRunner_Execute(t *testing.T) {
	r := load(t)
	ctx := context.Background()

	out, err := r.Execute(ctx, "roll", nil)
	require.NoError(t, err)
	assert.Equal(t, "4", out)

	out, err = r.Execute(ctx, "GREET", []string{"Ann; rm -rf /", "x"})
	require.NoError(t, err)
	assert.Equal(t, "hello Ann; rm -rf / (2)", out)

	_, err = r.Execute(ctx, "slow", nil)
	assert.ErrorContains(t, err, "timed out")

	_, err = r.Execute(ctx, "hacker_script", nil)
	assert.ErrorContains(t, err, "not registered")
}

func TestRunner_Provider(t *testing.T) {
	reg := registry.NewRegistry(registry.WithProviders(load(t)))

	assert.Equal(t, []string{"greet", "roll", "slow"}, reg.Names())
	assert.Equal(t, "4", reg.Invoke("roll", nil))
	assert.Equal(t, "hello Bo (1)", reg.Invoke("greet", []string{"Bo"}))
	assert.Equal(t, "", reg.Invoke("slow", nil))
}

func TestLoadTools(t *testing.T) {
	tools, err := process.LoadTools(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Empty(t, tools)

	write := func(name, body string) string {
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	tools, err = process.LoadTools(write("tools.json", `{"tools":[{"name":"a","command":"true"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []process.Tool{{Name: "a", Command: "true"}}, tools)

	tests := []struct {
		name string
		body string
	}{
		{"missing command", "tools:\n  - name: a\n"},
		{"duplicate", "tools:\n  - {name: a, command: x}\n  - {name: a, command: y}\n"},
		{"bad timeout", "tools:\n  - {name: a, command: x, timeout: soon}\n"},
		{"malformed", "tools: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := process.LoadTools(write("tools.yaml", tt.body))
			assert.Error(t, err)
		})
	}
}
