// Package persistence implements the deterministic naming and atomic
// write-then-rename semantics the specification requires for per-run log
// and state files: "{log_dir}/{YYYYMMDDhhmmss}-{run_id}.log" and
// "{state_dir}/{YYYYMMDDhhmmss}-{run_id}.json", sharing the stem
// "{T}-{run_id}" so operators can pair them by globbing.
package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/antkeeper/antkeeper/internal/state"
)

// Stamp formats t as the shared timestamp component of a run's log and
// state file names.
func Stamp(t time.Time) string {
	return t.Format("20060102150405")
}

// LogPath returns the path of the log file for a run with the given stamp
// and run id under logDir.
func LogPath(logDir, stamp, runID string) string {
	return filepath.Join(logDir, fmt.Sprintf("%s-%s.log", stamp, runID))
}

// StatePath returns the path of the state snapshot file for a run with the
// given stamp and run id under stateDir.
func StatePath(stateDir, stamp, runID string) string {
	return filepath.Join(stateDir, fmt.Sprintf("%s-%s.json", stamp, runID))
}

// EnsureDirs creates logDir and stateDir if they do not already exist.
func EnsureDirs(logDir, stateDir string) error {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create log dir %s: %w", logDir, err)
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("create state dir %s: %w", stateDir, err)
	}
	return nil
}

// WriteSnapshot serializes s as two-space-indented UTF-8 JSON and writes it
// to path atomically: the full content is written to a temporary sibling
// file first, then renamed into place, so a reader mid-write always sees
// either the previous complete snapshot or the new one, never a partial
// write.
//
// If s contains a value encoding/json cannot marshal, the write fails; per
// the specification this is a handler bug, not a framework bug, so the
// error is returned unwrapped-of-blame but not otherwise special-cased.
func WriteSnapshot(path string, s state.State) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	return nil
}

// ReadSnapshot loads and decodes the state previously written by
// WriteSnapshot. Used by tests and by any operator tooling that wants to
// inspect a run's final state.
func ReadSnapshot(path string) (state.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var s state.State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}
