// Package services defines shared utilities consumed by the API client and the
// view packages built on top of it.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation identifiers and wizard
//     steps for logging and tracing.
//   - Structured error markers plus the Wrap helper that sort failures into
//     the client's taxonomy (validation, client, transient, decode, canceled).
//
// Use these helpers when wiring new remote calls so error handling and
// observability stay uniform across views.
package services
