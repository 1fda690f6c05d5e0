// Package antkeeper is the public surface a project embedding the workflow
// engine imports: the handler registry, the Runner capability interface,
// the State type, and workflow composition. Everything it re-exports lives
// under internal/ so the engine's own boundaries (httpapi, coalescer,
// server, cmd/antkeeper) can share implementation details that are not
// part of this contract; this file is the only thing an external
// handlers.go needs to import.
package antkeeper

import (
	"github.com/antkeeper/antkeeper/internal/registry"
	"github.com/antkeeper/antkeeper/internal/state"
	"github.com/antkeeper/antkeeper/internal/workflow"
)

type (
	// Registry is the process-scoped handler registry. Construct one with
	// NewRegistry.
	Registry = registry.Registry
	// Runner is the capability interface a Handler receives.
	Runner = registry.Runner
	// Handler is a registered workflow step.
	Handler = registry.Handler
	// State is the data that flows through handlers.
	State = state.State
)

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return registry.New()
}

// Run folds s through steps in order, the way a Handler composed of more
// than one step uses it to build its own body.
func Run(r Runner, s State, steps ...Handler) (State, error) {
	return workflow.Run(r, s, steps...)
}

// Clone returns a shallow copy of s.
func Clone(s State) State {
	return state.Clone(s)
}
