// Package apiclient is the single HTTP client for the media platform backend.
//
// Every request goes through one retry loop: up to three attempts, 4xx
// responses are terminal, 5xx responses and transport failures are retried
// with exponential backoff (1s, 2s). Every public method returns an
// Envelope; failures never escape as panics or bare errors. Health issues a
// single unretried probe with its own short timeout.
//
// Clients are constructed explicitly with New and passed to whatever needs
// them; there is no package-level instance.
package apiclient
