package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WriteViewerConfig writes a viewer config to a YAML file
func WriteViewerConfig(cfg *ViewerConfig, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadViewerConfig reads a viewer config from a YAML file and applies defaults
func ReadViewerConfig(path string) (*ViewerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg ViewerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	withDefaults := cfg.WithDefaults()
	return &withDefaults, nil
}
