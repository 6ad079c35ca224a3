package config

import (
	"encoding/json/v2"
	"fmt"
	"os"

	"github.com/albumatlas/albumatlas-server/internal/vocab"
)

// LoadRules reads normalization rules from a JSON file. An empty path
// returns the built-in defaults. Malformed rule files fail here, at
// startup, never mid-pipeline.
func LoadRules(path string) (*vocab.Rules, error) {
	if path == "" {
		return vocab.DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var rules vocab.Rules
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}

	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}

	return &rules, nil
}
