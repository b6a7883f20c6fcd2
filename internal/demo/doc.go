// Package demo is a self-contained stand-in for the media platform backend.
//
// It serves every HTTP endpoint the client consumes plus the /ws/telemetry
// stream, all from deterministic fixtures. The same fixtures back the admin
// view's explicit demo mode; nothing else in the tree substitutes demo data.
package demo
