package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"mediastudio/internal/telemetry"
)

// EventRecord is a stored telemetry event.
type EventRecord struct {
	ID         int64
	Event      telemetry.Event
	ReceivedAt time.Time
}

// RecordEvent appends a telemetry event.
func (s *Store) RecordEvent(ctx context.Context, event telemetry.Event) error {
	var data sql.NullString
	if len(event.Data) > 0 {
		data = sql.NullString{String: string(event.Data), Valid: true}
	}
	if err := s.exec(ctx,
		`INSERT INTO telemetry_events (event_type, event_timestamp, data, received_at) VALUES (?, ?, ?, ?)`,
		event.Type, event.Timestamp, data, s.timestamp(),
	); err != nil {
		return fmt.Errorf("record event %s: %w", event.Type, err)
	}
	return nil
}

// RecentEvents returns up to limit events, newest first. An empty eventType
// matches every type.
func (s *Store) RecentEvents(ctx context.Context, eventType string, limit int) ([]EventRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, event_type, event_timestamp, data, received_at FROM telemetry_events`
	args := []any{}
	if eventType != "" {
		query += ` WHERE event_type = ?`
		args = append(args, eventType)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var records []EventRecord
	for rows.Next() {
		var (
			rec      EventRecord
			data     sql.NullString
			received string
		)
		if err := rows.Scan(&rec.ID, &rec.Event.Type, &rec.Event.Timestamp, &data, &received); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if data.Valid {
			rec.Event.Data = json.RawMessage(data.String)
		}
		rec.ReceivedAt, _ = time.Parse(time.RFC3339Nano, received)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountEvents returns the number of stored events.
func (s *Store) CountEvents(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM telemetry_events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events: %w", err)
	}
	return count, nil
}

// PruneEvents keeps the newest keep events and deletes the rest.
func (s *Store) PruneEvents(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	return s.exec(ctx,
		`DELETE FROM telemetry_events WHERE id NOT IN (SELECT id FROM telemetry_events ORDER BY id DESC LIMIT ?)`,
		keep,
	)
}
