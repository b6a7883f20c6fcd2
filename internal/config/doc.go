// Package config loads, normalizes, and validates studio configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// STUDIO_API_URL and the legacy NEXT_PUBLIC_API_URL. The Config type
// centralizes every knob the CLI needs: backend endpoints, retry budget,
// telemetry reconnect cadence, recording limits, and the demo-mode switch.
//
// Always obtain settings through this package so downstream code receives
// sanitized URLs, canonical log formats, and clear validation errors.
package config
