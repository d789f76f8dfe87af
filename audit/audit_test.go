package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labsweep/labsweep/reaper"
)

func TestLoggerWritesOutcomes(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(dir, "demo")
	require.NoError(t, err)
	require.Len(t, logger.RunID(), 8)

	logger.Record(reaper.Outcome{
		Ref:    reaper.ResourceRef{Kind: reaper.KindInstance, ID: "i-1", Name: "demo-node"},
		Status: reaper.StatusDeleted,
	})
	logger.Record(reaper.Outcome{
		Ref:    reaper.ResourceRef{Kind: reaper.KindBucket, ID: "demo-lab-1", Name: "demo-lab-1"},
		Status: reaper.StatusFailed,
		Reason: "bucket is not empty: demo-lab-1",
	})
	require.NoError(t, logger.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	name := entries[0].Name()
	assert.True(t, strings.HasPrefix(name, "demo-"), name)
	assert.Contains(t, name, logger.RunID())

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "OK instance i-1 (demo-node)")
	assert.Contains(t, lines[1], "FAIL bucket demo-lab-1 bucket is not empty: demo-lab-1")
}

func TestLoggerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")
	logger, err := New(dir, "demo")
	require.NoError(t, err)
	defer logger.Close()

	assert.DirExists(t, dir)
}
