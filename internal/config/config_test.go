package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/parley/internal/config"
	"github.com/aretw0/parley/pkg/domain"
)

func TestLoad_File(t *testing.T) {
	cfg, err := config.Load(filepath.Join("testdata", "parley.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "scripts", cfg.ChainsDir)
	assert.Equal(t, "main", cfg.EntryChain, "unset keys keep defaults")
	assert.Equal(t, 25, cfg.Reveal.CharsPerSecond)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "parley:", cfg.Redis.Prefix)
	assert.Equal(t, "tools.yaml", cfg.Tools)
	assert.Equal(t, config.SourceRedis, cfg.ChainSource())

	assert.Equal(t, []domain.Speaker{
		{Key: "cat", Name: "cat"},
		{Key: "guard", Name: "Town Guard", Voice: "low"},
	}, cfg.SpeakerList())
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"explicit missing file", filepath.Join("testdata", "absent.yaml")},
		{"negative speed", filepath.Join("testdata", "bad.yaml")},
		{"unknown source", filepath.Join("testdata", "source.yaml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parley.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reveal: [1, 2"), 0o644))

	_, err := config.Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestChainSource(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, config.SourceDir, cfg.ChainSource())

	cfg.Source = config.SourceLoam
	cfg.Redis.Addr = "localhost:6379"
	assert.Equal(t, config.SourceLoam, cfg.ChainSource())
}
