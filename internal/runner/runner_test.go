package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antkeeper/antkeeper/internal/channel"
	"github.com/antkeeper/antkeeper/internal/persistence"
	"github.com/antkeeper/antkeeper/internal/registry"
	"github.com/antkeeper/antkeeper/internal/state"
)

func echoHandler(r registry.Runner, s state.State) (state.State, error) {
	out := state.Clone(s)
	out["echoed"] = s["prompt"]
	return out, nil
}

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	dir := t.TempDir()
	reg := registry.New()
	reg.LogDir = filepath.Join(dir, "logs")
	reg.StateDir = filepath.Join(dir, "state")
	reg.Register("echo", echoHandler)
	return reg
}

// TestSingleStepEcho covers scenario S1: a line-cli invocation of a single
// echo handler produces the expected state, snapshot file, and log file
// sharing one stem.
func TestSingleStepEcho(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	ch := channel.NewLine("echo", state.State{"prompt": "hi"})

	r, err := New(context.Background(), reg, ch)
	require.NoError(t, err)
	defer r.Close()

	final, err := r.Run(reg)
	require.NoError(t, err)

	assert.Equal(t, "hi", final["prompt"])
	assert.Equal(t, "hi", final["echoed"])
	assert.Equal(t, r.ID(), final[state.ReservedRunID])
	assert.Equal(t, "echo", final[state.ReservedWorkflowName])
	assert.Len(t, r.ID(), 8)

	entries, err := os.ReadDir(reg.LogDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	logStem := stemOf(entries[0].Name())

	entries, err = os.ReadDir(reg.StateDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	stateStem := stemOf(entries[0].Name())

	assert.Equal(t, logStem, stateStem)

	got, err := persistence.ReadSnapshot(filepath.Join(reg.StateDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, final, got)
}

func TestRunInjectsFrameworkKeysOverInitialState(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	ch := channel.NewLine("echo", state.State{state.ReservedRunID: "stale", "prompt": "hi"})

	r, err := New(context.Background(), reg, ch)
	require.NoError(t, err)
	defer r.Close()

	final, err := r.Run(reg)
	require.NoError(t, err)
	assert.Equal(t, r.ID(), final[state.ReservedRunID])
}

func TestRunUnknownWorkflowFails(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	ch := channel.NewLine("nope", state.State{})

	r, err := New(context.Background(), reg, ch)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Run(reg)
	require.Error(t, err)
}

func TestFailReturnsWorkflowFailed(t *testing.T) {
	t.Parallel()

	reg := newTestRegistry(t)
	reg.Register("boom", func(r registry.Runner, s state.State) (state.State, error) {
		return nil, r.Fail("boom")
	})
	ch := channel.NewLine("boom", state.State{})

	r, err := New(context.Background(), reg, ch)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.Run(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func stemOf(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
