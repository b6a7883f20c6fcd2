// Package wizard sequences the video workflow upload -> analyze -> edit ->
// export.
//
// Each remote step advances only when the backend reports success; failures
// leave the step unchanged and surface the server message verbatim so the
// action can be retried. Only one remote call may be in flight at a time.
// Backward navigation is limited to completed steps before the current one.
// Sessions live in memory and are never persisted.
package wizard
