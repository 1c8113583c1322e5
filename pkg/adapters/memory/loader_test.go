package memory_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/dsl"
	"github.com/aretw0/parley/pkg/ports/tests"
)

func TestLoader_Contract(t *testing.T) {
	loader := memory.NewLoader(
		dsl.New("intro").Say("npc", "Hi").Exit(0).Build(),
		dsl.New("outro").Exit(1).Build(),
	)
	tests.ChainLoaderContractTest(t, loader, map[string]int{"intro": 2, "outro": 1})
}

func TestLoader_PutReplaces(t *testing.T) {
	loader := memory.NewLoader(dsl.New("c").Exit(0).Build())
	loader.Put(dsl.New("c").Exit(0).Exit(1).Build())

	chain, err := loader.Load(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, 2, chain.Len())
}

func TestDirectory(t *testing.T) {
	dir := memory.NewDirectory(domain.Speaker{Key: "Guard", Name: "Gate Guard", Voice: "gruff"})

	s, ok := dir.Lookup("guard")
	require.True(t, ok)
	assert.Equal(t, "Gate Guard", s.Name)

	_, ok = dir.Lookup("nobody")
	assert.False(t, ok)
}

type shop struct{ name string }

func TestSingletons(t *testing.T) {
	a, b := &shop{"a"}, &shop{"b"}
	s := memory.NewSingletons(a, nil)
	typ := reflect.TypeFor[*shop]()

	assert.Equal(t, []any{a}, s.Instances(typ))

	s.Track(b)
	assert.Len(t, s.Instances(typ), 2)

	s.Forget(a)
	assert.Equal(t, []any{b}, s.Instances(typ))
	assert.Empty(t, s.Instances(reflect.TypeFor[string]()))
}
