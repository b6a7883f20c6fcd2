// Command studio is the operator CLI for the AI media platform backend.
//
// It talks to the backend over HTTP with a retrying client, follows the live
// telemetry WebSocket, drives the four-step video workflow (upload, analyze,
// edit, export), and can serve a local demo backend with fixture data.
package main
