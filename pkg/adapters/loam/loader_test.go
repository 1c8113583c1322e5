package loam_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/internal/testutils"
	"github.com/aretw0/parley/pkg/adapters/loam"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports/tests"
)

var seed = map[string]string{
	"intro.md": `---
name: intro
nodes:
  - say: npc
    lines: [Hi]
  - exit: 5
---
The old man greets the player.
`,
	"shop.json": `{
  "nodes": [
    {"say": "merchant", "text": "Buying or selling?"},
    {"choice": [{"text": "Buying.", "to": "buy"}, {"text": "Neither.", "to": "out"}]},
    {"label": "buy"},
    {"call": "set bought yes"},
    {"label": "out"},
    {"exit": 0}
  ]
}`,
	"notes.md": `---
title: Writing guide
---
Not a chain.
`,
}

func open(t *testing.T, files map[string]string) *loam.Loader {
	t.Helper()
	l, err := loam.Open(testutils.ChainDir(t, files))
	require.NoError(t, err)
	return l
}

func TestLoader_Contract(t *testing.T) {
	tests.ChainLoaderContractTest(t, open(t, seed), map[string]int{"intro": 2, "shop": 6})
}

func TestLoader_DecodesFrontmatter(t *testing.T) {
	chain, err := open(t, seed).Load(context.Background(), "intro")
	require.NoError(t, err)

	require.Equal(t, 2, chain.Len())
	line, ok := chain.At(0).(*domain.SpokenLine)
	require.True(t, ok)
	assert.Equal(t, "npc", line.Speaker)
	assert.Equal(t, []string{"Hi"}, line.Lines)

	exit, ok := chain.At(1).(*domain.Exit)
	require.True(t, ok)
	assert.Equal(t, 5, exit.Code)
}

func TestLoader_SkipsDocumentsWithoutNodes(t *testing.T) {
	names, err := open(t, seed).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"intro", "shop"}, names)
}

func TestLoader_DetectsCollisions(t *testing.T) {
	l := open(t, map[string]string{
		"foo.md":   "---\nnodes:\n  - exit: 1\n---\n",
		"foo.json": `{"nodes": [{"exit": 2}]}`,
	})

	_, err := l.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision detected")
}

func TestLoader_BadNode(t *testing.T) {
	l := open(t, map[string]string{"bad.md": "---\nnodes:\n  - dance: now\n---\n"})

	_, err := l.Load(context.Background(), "bad")
	assert.ErrorContains(t, err, "no node kind")
}
