// Package logging assembles structured slog loggers and formatting helpers used
// across studio packages.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so client code can automatically
// tag log lines with request correlation IDs and components. The package also
// provides a no-op logger for tests and wiring code that cannot fail, and a tee
// that mirrors console records into the JSON log file.
package logging
