package handlers

// StarterTemplate is the Go source `antkeeper init` writes into a new
// project as handlers.go.example, the equivalent of the reference
// implementation's HANDLERS_TEMPLATE — a commented healthcheck handler plus
// a composition example left as a comment for the reader to uncomment and
// adapt. It imports the top-level antkeeper package (the engine's public
// API), not anything under antkeeper's own internal/ tree, so it is a real
// starting point for an external project rather than a file that can only
// compile inside this module.
const StarterTemplate = `// Package handlers defines this project's workflow handlers.
//
// Register a handler with reg.Register(name, fn) and compose a chain with
// antkeeper.Run. Run a handler:  antkeeper run <name>
// Start the API:                 antkeeper server
package handlers

import "github.com/antkeeper/antkeeper"

// Register installs this project's handlers into reg.
func Register(reg *antkeeper.Registry) {
	reg.Register("healthcheck", healthcheck)
}

// healthcheck verifies the pipeline is working.
func healthcheck(r antkeeper.Runner, s antkeeper.State) (antkeeper.State, error) {
	r.ReportProgress("running healthcheck")
	r.Logger().Info("healthcheck ok")
	out := antkeeper.Clone(s)
	out["status"] = "ok"
	return out, nil
}

// --- Workflow composition example ---
//
// func stepOne(r antkeeper.Runner, s antkeeper.State) (antkeeper.State, error) {
// 	r.ReportProgress("step one")
// 	out := antkeeper.Clone(s)
// 	out["step"] = 1
// 	return out, nil
// }
//
// func stepTwo(r antkeeper.Runner, s antkeeper.State) (antkeeper.State, error) {
// 	r.ReportProgress("step two")
// 	out := antkeeper.Clone(s)
// 	out["step"] = 2
// 	return out, nil
// }
//
// func myWorkflow(r antkeeper.Runner, s antkeeper.State) (antkeeper.State, error) {
// 	return antkeeper.Run(r, s, stepOne, stepTwo)
// }
`
