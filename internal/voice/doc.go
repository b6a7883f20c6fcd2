// Package voice implements the voice assistant session: typed and recorded
// input, the capture device lifecycle, and the conversation history.
package voice
