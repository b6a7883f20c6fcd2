// Package journal persists received telemetry events and voice conversation
// turns in a local SQLite database so they survive across CLI sessions.
//
// The store runs in WAL mode with a busy timeout, and every write retries on
// SQLITE_BUSY with a short exponential backoff. A Recorder holds an advisory
// file lock so only one process appends telemetry per data directory.
package journal
