package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antkeeper/antkeeper/internal/state"
)

func TestStampFormat(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 3, 5, 9, 4, 7, 0, time.UTC)
	assert.Equal(t, "20260305090407", Stamp(ts))
}

func TestLogAndStatePathsShareStem(t *testing.T) {
	t.Parallel()

	logPath := LogPath("logs", "20260305090407", "deadbeef")
	statePath := StatePath("state", "20260305090407", "deadbeef")

	assert.Equal(t, filepath.Join("logs", "20260305090407-deadbeef.log"), logPath)
	assert.Equal(t, filepath.Join("state", "20260305090407-deadbeef.json"), statePath)
}

func TestWriteSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")
	s := state.State{"prompt": "hi", "run_id": "deadbeef", "count": 3.0}

	require.NoError(t, WriteSnapshot(path, s))

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, stat err = %v", err)
	}
}

func TestWriteSnapshotOverwritesWhole(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")

	require.NoError(t, WriteSnapshot(path, state.State{"step": "a"}))
	require.NoError(t, WriteSnapshot(path, state.State{"step": "b"}))

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	assert.Equal(t, state.State{"step": "b"}, got)
}

func TestEnsureDirsCreatesBoth(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	logDir := filepath.Join(base, "logs")
	stateDir := filepath.Join(base, "state")

	require.NoError(t, EnsureDirs(logDir, stateDir))

	for _, d := range []string{logDir, stateDir} {
		info, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
