package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antkeeper/antkeeper/internal/state"
)

func echoHandler(r Runner, s state.State) (state.State, error) {
	return s, nil
}

func TestRegisterAndResolve(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.Register("echo", echoHandler)

	h, err := reg.Resolve("echo")
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.True(t, reg.Has("echo"))
}

func TestResolveUnknownFails(t *testing.T) {
	t.Parallel()

	reg := New()
	_, err := reg.Resolve("nope")
	require.Error(t, err)
	assert.False(t, reg.Has("nope"))
}

func TestRegisterOverrideIsLastWins(t *testing.T) {
	t.Parallel()

	reg := New()
	reg.Register("dup", func(r Runner, s state.State) (state.State, error) {
		return state.State{"which": "first"}, nil
	})
	reg.Register("dup", func(r Runner, s state.State) (state.State, error) {
		return state.State{"which": "second"}, nil
	})

	h, err := reg.Resolve("dup")
	require.NoError(t, err)
	got, err := h(nil, state.State{})
	require.NoError(t, err)
	assert.Equal(t, "second", got["which"])
}

func TestNewDefaultsDirectories(t *testing.T) {
	t.Parallel()

	reg := New()
	assert.Equal(t, "logs", reg.LogDir)
	assert.Equal(t, "state", reg.StateDir)
	assert.Equal(t, "worktrees", reg.WorktreeDir)
}
