package journal

import (
	"context"
	"fmt"
	"time"
)

// Turn is a stored conversation turn.
type Turn struct {
	ID             int64
	UserID         string
	Role           string
	Text           string
	Intent         string
	ProcessingTime float64
	CreatedAt      time.Time
}

// RecordTurn appends a conversation turn.
func (s *Store) RecordTurn(ctx context.Context, turn Turn) error {
	created := s.timestamp()
	if !turn.CreatedAt.IsZero() {
		created = turn.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if err := s.exec(ctx,
		`INSERT INTO conversation_turns (user_id, role, text, intent, processing_time, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		turn.UserID, turn.Role, turn.Text, turn.Intent, turn.ProcessingTime, created,
	); err != nil {
		return fmt.Errorf("record turn: %w", err)
	}
	return nil
}

// Conversation returns the last limit turns for a user in chronological order.
func (s *Store) Conversation(ctx context.Context, userID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, role, text, intent, processing_time, created_at FROM conversation_turns
		 WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var (
			turn    Turn
			created string
		)
		if err := rows.Scan(&turn.ID, &turn.UserID, &turn.Role, &turn.Text, &turn.Intent, &turn.ProcessingTime, &created); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turn.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
