package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Event is one push notification received from /ws/telemetry.
type Event struct {
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// DecodeEvent parses a single inbound frame.
func DecodeEvent(frame []byte) (Event, error) {
	var event Event
	if err := json.Unmarshal(frame, &event); err != nil {
		return Event{}, fmt.Errorf("decode telemetry event: %w", err)
	}
	event.Type = strings.TrimSpace(event.Type)
	return event, nil
}

// Summary renders the event payload on a single line for terminal output.
func (e Event) Summary() string {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(e.Data, &fields); err != nil {
		return strings.TrimSpace(string(e.Data))
	}
	compact, err := json.Marshal(fields)
	if err != nil {
		return strings.TrimSpace(string(e.Data))
	}
	return string(compact)
}
