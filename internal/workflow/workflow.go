// Package workflow implements run_workflow: the left-fold composition of a
// Channel's initial state through a handler's registered steps, snapshotting
// state after every step and translating step failures into the boundary's
// error policy.
package workflow

import (
	"errors"
	"fmt"
	"sort"

	"github.com/antkeeper/antkeeper/internal/apperr"
	"github.com/antkeeper/antkeeper/internal/registry"
	"github.com/antkeeper/antkeeper/internal/state"
)

// Run folds s through steps in order, calling r.Snapshot after each one
// succeeds. It stops at the first step that returns an error. A
// *apperr.WorkflowFailed (expected, handler-signaled) is returned unchanged;
// any other error (an unexpected fault) is wrapped with the step index and
// workflow name using %w, so callers can still tell the two apart with
// errors.As.
//
// Each step is bracketed in the per-run log: an INFO line before it runs,
// naming its position in the fold, and a DEBUG line after it returns
// naming the keys of its result, so a run's log file reads as a trace of
// the fold without dumping state values into it.
//
// A single Handler registered under a workflow name may itself be composed
// of multiple steps; Run treats steps as an ordered pipeline regardless of
// how many there are, including the common case of exactly one.
func Run(r registry.Runner, s state.State, steps ...registry.Handler) (state.State, error) {
	cur := s
	for i, step := range steps {
		r.Logger().Info(fmt.Sprintf("running step %d/%d of workflow %q", i+1, len(steps), r.WorkflowName()))
		next, err := step(r, cur)
		if err != nil {
			var wf *apperr.WorkflowFailed
			if errors.As(err, &wf) {
				return cur, err
			}
			return cur, fmt.Errorf("step %d of workflow %q: %w", i, r.WorkflowName(), err)
		}
		cur = next
		r.Logger().Debug(fmt.Sprintf("step %d/%d returned keys %v", i+1, len(steps), sortedKeys(cur)))
		if err := r.Snapshot(cur); err != nil {
			return cur, fmt.Errorf("snapshot after step %d of workflow %q: %w", i, r.WorkflowName(), err)
		}
	}
	return cur, nil
}

func sortedKeys(s state.State) []string {
	keys := state.Keys(s)
	sort.Strings(keys)
	return keys
}
