package main

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
)

// fileConfig mirrors the optional YAML config file. Flags take precedence
// over file values.
type fileConfig struct {
	Project string `json:"project"`
	Region  string `json:"region"`
	TagKey  string `json:"tagKey"`
	KeysDir string `json:"keysDir"`
	InfoDir string `json:"infoDir"`
	LogsDir string `json:"logsDir"`
}

func readConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := &fileConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// merge fills empty settings fields from the file.
func (c *fileConfig) merge(s *settings) {
	if s.project == "" {
		s.project = c.Project
	}
	if s.region == "" {
		s.region = c.Region
	}
	if s.tagKey == "" {
		s.tagKey = c.TagKey
	}
	if s.keysDir == "" {
		s.keysDir = c.KeysDir
	}
	if s.infoDir == "" {
		s.infoDir = c.InfoDir
	}
	if s.logsDir == "" {
		s.logsDir = c.LogsDir
	}
}
