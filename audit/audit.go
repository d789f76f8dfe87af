// Package audit writes an append-only log of every teardown outcome so that
// a run can be reconstructed after the fact.
package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/labsweep/labsweep/reaper"
)

// Logger records outcomes to a per-run file. Write failures are logged and
// swallowed, the audit trail must never abort a teardown.
type Logger struct {
	runID string
	file  *os.File
}

// New creates the log directory if needed and opens a new audit file named
// after the project, the start time and a short run ID.
func New(dir, project string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	runID := uuid.NewString()[:8]
	name := fmt.Sprintf("%s-%s-%s.log", project, time.Now().UTC().Format("20060102T150405Z"), runID)
	file, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &Logger{runID: runID, file: file}, nil
}

// RunID returns the short identifier embedded in the log file name.
func (l *Logger) RunID() string {
	return l.runID
}

// Record appends one outcome line. Implements reaper.Reporter.
func (l *Logger) Record(outcome reaper.Outcome) {
	line := fmt.Sprintf("%s %s %s", time.Now().UTC().Format(time.RFC3339), marker(outcome.Status), outcome.Ref)
	if outcome.Reason != "" {
		line += " " + outcome.Reason
	}
	if _, err := fmt.Fprintln(l.file, line); err != nil {
		log.Errorf("failed to write audit log entry: %v", err)
	}
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	return l.file.Close()
}

func marker(status reaper.Status) string {
	switch status {
	case reaper.StatusPlanned:
		return "PLAN"
	case reaper.StatusDeleted:
		return "OK"
	case reaper.StatusSkipped:
		return "SKIP"
	case reaper.StatusFailed:
		return "FAIL"
	}
	return "????"
}
