// Package config reads the parley.yaml project file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/parley/pkg/domain"
)

// DefaultFile is the config file looked up when no path is given.
const DefaultFile = "parley.yaml"

// Config is the project configuration. Zero fields take the defaults.
type Config struct {
	LogLevel   string             `yaml:"log_level"`
	ChainsDir  string             `yaml:"chains_dir"`
	EntryChain string             `yaml:"entry_chain"`
	Source     string             `yaml:"source"`
	Tools      string             `yaml:"tools"`
	Reveal     Reveal             `yaml:"reveal"`
	HTTP       HTTP               `yaml:"http"`
	Redis      Redis              `yaml:"redis"`
	Speakers   map[string]Speaker `yaml:"speakers"`
}

// Chain sources.
const (
	SourceDir   = "dir"
	SourceLoam  = "loam"
	SourceRedis = "redis"
)

// Reveal configures the terminal typewriter.
type Reveal struct {
	CharsPerSecond int `yaml:"chars_per_second"`
}

// HTTP configures `parley serve`.
type HTTP struct {
	Addr string `yaml:"addr"`
}

// Redis configures the chain repository. An empty Addr disables it.
type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// Speaker is one entry of the speaker table.
type Speaker struct {
	Name  string `yaml:"name"`
	Voice string `yaml:"voice"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		ChainsDir:  "chains",
		EntryChain: "main",
		Tools:      "tools.yaml",
		Reveal:     Reveal{CharsPerSecond: 40},
		HTTP:       HTTP{Addr: ":8080"},
		Redis:      Redis{Prefix: "parley:"},
	}
}

// Load reads path over the defaults. A missing file at the default location
// is not an error; a missing file that was asked for explicitly is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	cfg := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.fill()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// fill restores defaults for keys present but left empty in the file.
func (c *Config) fill() {
	d := Default()
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.ChainsDir == "" {
		c.ChainsDir = d.ChainsDir
	}
	if c.EntryChain == "" {
		c.EntryChain = d.EntryChain
	}
	if c.Tools == "" {
		c.Tools = d.Tools
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = d.HTTP.Addr
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = d.Redis.Prefix
	}
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	if c.Reveal.CharsPerSecond < 0 {
		return fmt.Errorf("reveal.chars_per_second must not be negative, got %d", c.Reveal.CharsPerSecond)
	}
	switch c.Source {
	case "", SourceDir, SourceLoam, SourceRedis:
	default:
		return fmt.Errorf("source must be one of dir, loam or redis, got %q", c.Source)
	}
	if c.Source == SourceRedis && c.Redis.Addr == "" {
		return fmt.Errorf("source redis needs redis.addr")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must not be negative, got %d", c.Redis.DB)
	}
	return nil
}

// ChainSource resolves Source: an empty value means redis when an address
// is configured and the chains directory otherwise.
func (c *Config) ChainSource() string {
	if c.Source != "" {
		return c.Source
	}
	if c.Redis.Addr != "" {
		return SourceRedis
	}
	return SourceDir
}

// SpeakerList returns the speaker table sorted by key.
func (c *Config) SpeakerList() []domain.Speaker {
	keys := make([]string, 0, len(c.Speakers))
	for k := range c.Speakers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.Speaker, 0, len(keys))
	for _, k := range keys {
		s := c.Speakers[k]
		name := s.Name
		if name == "" {
			name = k
		}
		out = append(out, domain.Speaker{Key: k, Name: name, Voice: s.Voice})
	}
	return out
}
