// Package handlers registers the handler set antkeeper ships with.
// Loading a user-supplied registry module is explicitly out of scope (the
// reference implementation's dynamic import of a Python file has no
// static-language equivalent worth building); instead, handlers are
// compiled in and registered from an explicit call in main, per the
// specification's design note on replacing runtime introspection with
// build-time registration.
package handlers

import (
	"fmt"
	"time"

	"github.com/antkeeper/antkeeper/internal/registry"
	"github.com/antkeeper/antkeeper/internal/state"
)

// Register installs the default handler set into reg. Projects embedding
// antkeeper as a library call their own registration function instead (or
// in addition); this one exists so `antkeeper run healthcheck` works out
// of the box, the way the reference implementation's scaffolded
// handlers.py ships a healthcheck handler.
func Register(reg *registry.Registry) {
	reg.Register("healthcheck", healthcheck)
}

// healthcheck verifies the engine is wired correctly: it reports progress,
// logs, and returns the input state with a status field set.
func healthcheck(r registry.Runner, s state.State) (state.State, error) {
	r.ReportProgress("running healthcheck")
	r.Logger().Info(fmt.Sprintf("healthcheck ok at %s", time.Now().Format(time.RFC3339)))
	out := state.Clone(s)
	out["status"] = "ok"
	return out, nil
}
