// Package preflight provides readiness checks for the backend, the telemetry
// stream, and the local directories studio writes to.
//
// The CLI "studio doctor" command runs RunAll and renders one row per
// Result. Checks never retry: each makes a single bounded attempt so the
// report reflects the current state.
package preflight
