// Package state defines the data that flows through Antkeeper handlers.
//
// State is an opaque, dynamically-typed string-keyed mapping. Handlers treat
// it as immutable by convention: a handler returns a new State rather than
// mutating the one it was given. The framework injects a small number of
// reserved keys (run_id, workflow_name) on top of whatever a Channel supplied
// as initial state.
package state

// State is the unit of data flow through handlers. Values are whatever
// encoding/json can marshal: scalars, slices, and nested maps. Callers agree
// on keys out of band; there is no schema.
type State map[string]any

// ReservedRunID is the key the Runner injects for the generated run id.
const ReservedRunID = "run_id"

// ReservedWorkflowName is the key the Runner injects for the handler name.
const ReservedWorkflowName = "workflow_name"

// Clone returns a shallow copy of s. Handlers use this to build a new State
// from an existing one without mutating the caller's map.
func Clone(s State) State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// WithReserved returns a copy of s with run_id and workflow_name set to the
// given values, overriding any value already present under those keys.
// Framework-owned keys always win over whatever a Channel placed in the
// initial state.
func WithReserved(s State, runID, workflowName string) State {
	out := Clone(s)
	out[ReservedRunID] = runID
	out[ReservedWorkflowName] = workflowName
	return out
}

// Keys returns the keys of s, unordered. Used for DEBUG-level logging of a
// handler's return value without dumping the full (possibly large) state.
func Keys(s State) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}
