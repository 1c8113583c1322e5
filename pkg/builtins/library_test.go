package builtins_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/builtins"
	"github.com/aretw0/parley/pkg/registry"
	"github.com/aretw0/parley/pkg/variables"
)

type delays []time.Duration

func (d *delays) QueueDelay(v time.Duration) { *d = append(*d, v) }

func setup(t *testing.T) (*registry.Registry, *variables.Store, *delays) {
	t.Helper()
	vars := variables.New()
	queued := &delays{}
	r := registry.NewRegistry(registry.WithProviders(builtins.New(vars, queued, nil)))
	return r, vars, queued
}

func TestBuiltins_Variables(t *testing.T) {
	r, vars, _ := setup(t)

	r.Invoke("set", []string{"mood", "happy"})
	assert.Equal(t, "happy", r.Invoke("get", []string{"mood"}))
	assert.Equal(t, "happy", variables.Get(vars, "MOOD", ""))

	r.Invoke("unset", []string{"mood"})
	assert.Equal(t, "", r.Invoke("get", []string{"mood"}))
}

func TestBuiltins_Add(t *testing.T) {
	r, vars, _ := setup(t)

	r.Invoke("add", []string{"gold", "5"})
	r.Invoke("add", []string{"gold", "3"})
	assert.Equal(t, 8, variables.Get(vars, "gold", 0))
	assert.Equal(t, "8", r.Invoke("get", []string{"gold"}))

	r.Invoke("set", []string{"name", "bob"})
	r.Invoke("add", []string{"name", "1"})
	assert.Equal(t, 1, variables.Get(vars, "name", 0))
}

func TestBuiltins_Scopes(t *testing.T) {
	r, vars, _ := setup(t)

	r.Invoke("push", nil)
	assert.Equal(t, "2", r.Invoke("depth", nil))
	r.Invoke("set", []string{"hp", "10"})
	r.Invoke("pop", nil)
	assert.Equal(t, "", r.Invoke("get", []string{"hp"}))

	r.Invoke("pop", nil)
	assert.Equal(t, 1, vars.Depth(), "the root scope is never popped")

	r.Invoke("push", nil)
	r.Invoke("push", nil)
	r.Invoke("clear_vars", nil)
	assert.Equal(t, "1", r.Invoke("depth", nil))
}

func TestBuiltins_Wait(t *testing.T) {
	r, _, queued := setup(t)

	r.Invoke("wait", []string{"1.5"})
	r.Invoke("wait", []string{"0"})
	r.Invoke("wait", []string{"soon"})
	require.Len(t, *queued, 1)
	assert.Equal(t, 1500*time.Millisecond, (*queued)[0])
}

func TestBuiltins_Branching(t *testing.T) {
	r, _, _ := setup(t)

	r.Invoke("set", []string{"door", "open"})
	assert.Equal(t, "inside", r.Invoke("if_equals", []string{"door", "open", "inside"}))
	assert.Equal(t, "", r.Invoke("if_equals", []string{"door", "shut", "inside"}))

	assert.Equal(t, "b", r.Invoke("pick", []string{"", "b", "c"}))
	assert.Equal(t, "", r.Invoke("pick", nil))
	assert.Equal(t, "", r.Invoke("log", []string{"hello", "world"}))
}

func TestBuiltins_Names(t *testing.T) {
	r, _, _ := setup(t)
	assert.Equal(t, []string{
		"add", "clear_vars", "depth", "get", "if_equals", "log",
		"pick", "pop", "push", "set", "unset", "wait",
	}, r.Names())
}
