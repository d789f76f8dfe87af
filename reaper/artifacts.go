package reaper

import (
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// removeKeyFile deletes the private key saved next to a key pair. The file
// may legitimately be absent, for example when the key pair was created on
// another machine.
func (e *Engine) removeKeyFile(keyName string) {
	path := filepath.Join(e.cfg.KeysDir, keyName+".pem")
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		log.Errorf("failed to remove key file %s: %v", path, err)
	}
}

// sweepLocalArtifacts removes leftover private keys and info files for the
// project. Filesystem errors never fail the run.
func (e *Engine) sweepLocalArtifacts() []Outcome {
	var outcomes []Outcome
	outcomes = append(outcomes, e.sweepDir(e.cfg.KeysDir, ".pem")...)
	outcomes = append(outcomes, e.sweepDir(e.cfg.InfoDir, "")...)
	return outcomes
}

func (e *Engine) sweepDir(dir, suffix string) []Outcome {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			e.problems.Add("reading %s failed: %v", dir, err)
			log.Errorf("reading %s failed: %v", dir, err)
		}
		return nil
	}

	prefix := e.cfg.namePrefix()
	var outcomes []Outcome
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if suffix != "" && !strings.HasSuffix(name, suffix) {
			continue
		}
		path := filepath.Join(dir, name)
		ref := ResourceRef{Kind: KindLocalFile, ID: path, Name: name}
		if e.cfg.DryRun {
			outcomes = e.record(outcomes, planned(ref))
			continue
		}
		if err := os.Remove(path); err != nil {
			outcomes = e.record(outcomes, failed(ref, err))
			continue
		}
		outcomes = e.record(outcomes, deleted(ref))
	}
	return outcomes
}
