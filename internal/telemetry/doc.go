// Package telemetry maintains the live event stream for the admin view.
//
// A Channel dials /ws/telemetry, keeps the newest events in a bounded
// buffer (newest first), and reconnects after a fixed delay whenever the
// connection drops. It never gives up; Close is the only way to stop it.
// Time is injected through clock.Clock so reconnects can be simulated.
package telemetry
