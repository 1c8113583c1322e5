package process

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Tool is one external command exposed to chains as a dialogue function.
type Tool struct {
	Name        string            `yaml:"name" json:"name"`
	Command     string            `yaml:"command" json:"command"`
	Args        []string          `yaml:"args" json:"args"`
	Environment map[string]string `yaml:"env" json:"env"`
	Description string            `yaml:"description" json:"description"`
	// Timeout is a duration string such as "2s"; empty uses the runner default.
	Timeout string `yaml:"timeout" json:"timeout"`
}

// ConfigFile is the layout of tools.yaml.
type ConfigFile struct {
	Tools []Tool `yaml:"tools" json:"tools"`
}

// LoadTools reads a YAML or JSON tool file. A missing file means no tools.
func LoadTools(path string) ([]Tool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tools config: %w", err)
	}

	var cfg ConfigFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse tools config %s: %w", path, err)
	}

	tools := make([]Tool, 0, len(cfg.Tools))
	seen := make(map[string]bool, len(cfg.Tools))
	for i, t := range cfg.Tools {
		if t.Name == "" || t.Command == "" {
			return nil, fmt.Errorf("tool %d: name and command are required", i)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("tool %q declared twice", t.Name)
		}
		if t.Timeout != "" {
			if _, err := time.ParseDuration(t.Timeout); err != nil {
				return nil, fmt.Errorf("tool %q: invalid timeout: %w", t.Name, err)
			}
		}
		seen[t.Name] = true
		tools = append(tools, t)
	}
	return tools, nil
}
