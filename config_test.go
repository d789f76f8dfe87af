package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "labsweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadConfigFile(t *testing.T) {
	path := writeConfig(t, `
project: demo
region: eu-west-1
tagKey: Team
keysDir: /tmp/keys
`)
	cfg, err := readConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Project)
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "Team", cfg.TagKey)
	assert.Equal(t, "/tmp/keys", cfg.KeysDir)
	assert.Empty(t, cfg.InfoDir)
}

func TestReadConfigFileErrors(t *testing.T) {
	_, err := readConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := writeConfig(t, "project: [not a string")
	_, err = readConfigFile(path)
	require.Error(t, err)
}

func TestConfigMergeFlagsWin(t *testing.T) {
	fileCfg := &fileConfig{
		Project: "from-file",
		Region:  "eu-west-1",
		LogsDir: "file-logs",
	}
	s := &settings{
		project: "from-flag",
	}

	fileCfg.merge(s)

	assert.Equal(t, "from-flag", s.project)
	assert.Equal(t, "eu-west-1", s.region)
	assert.Equal(t, "file-logs", s.logsDir)
}
