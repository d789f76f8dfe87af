package reaper

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600))
	}
}

func TestSweepLocalArtifacts(t *testing.T) {
	cfg := testConfig(t)
	writeFiles(t, cfg.KeysDir, "demo-key.pem", "other-key.pem", "demo-notes.txt")
	writeFiles(t, cfg.InfoDir, "demo-info.txt", "other-info.txt")

	engine := New(&fakeProvider{}, nil, cfg)
	outcomes := engine.Reap(context.Background())

	removed := make([]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		require.Equal(t, KindLocalFile, outcome.Ref.Kind)
		require.Equal(t, StatusDeleted, outcome.Status)
		removed = append(removed, outcome.Ref.Name)
	}
	assert.Equal(t, []string{"demo-key.pem", "demo-info.txt"}, removed)

	// Key sweep only touches pem files, foreign files stay.
	assert.FileExists(t, filepath.Join(cfg.KeysDir, "other-key.pem"))
	assert.FileExists(t, filepath.Join(cfg.KeysDir, "demo-notes.txt"))
	assert.FileExists(t, filepath.Join(cfg.InfoDir, "other-info.txt"))
	assert.NoFileExists(t, filepath.Join(cfg.KeysDir, "demo-key.pem"))
	assert.NoFileExists(t, filepath.Join(cfg.InfoDir, "demo-info.txt"))
}

func TestSweepMissingDirectories(t *testing.T) {
	cfg := Config{
		Project: "demo",
		KeysDir: filepath.Join(t.TempDir(), "does-not-exist"),
		InfoDir: filepath.Join(t.TempDir(), "neither"),
	}
	engine := New(&fakeProvider{}, nil, cfg)

	outcomes := engine.Reap(context.Background())

	assert.Empty(t, outcomes)
	assert.Zero(t, engine.Problems().Count())
}

func TestSweepDryRunKeepsFiles(t *testing.T) {
	cfg := testConfig(t)
	cfg.DryRun = true
	writeFiles(t, cfg.KeysDir, "demo-key.pem")

	engine := New(&fakeProvider{}, nil, cfg)
	outcomes := engine.Reap(context.Background())

	require.Len(t, outcomes, 1)
	assert.Equal(t, StatusPlanned, outcomes[0].Status)
	assert.FileExists(t, filepath.Join(cfg.KeysDir, "demo-key.pem"))
}
