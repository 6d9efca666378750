package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/smartwealth/advisor/internal/models"
)

// SessionRepository persists conversation turns keyed by session ID.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Append stores one message and fills in its ID and timestamp.
func (r *SessionRepository) Append(ctx context.Context, msg *models.ChatMessage) error {
	query := `
		INSERT INTO chat_messages (session_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, msg.SessionID, msg.Role, msg.Content).
		Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append chat message: %w", err)
	}
	return nil
}

// History returns the most recent limit messages for a session in
// chronological order.
func (r *SessionRepository) History(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	query := `
		SELECT id, session_id, role, content, created_at FROM (
			SELECT id, session_id, role, content, created_at
			FROM chat_messages
			WHERE session_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// SessionCount returns the number of distinct sessions with at least
// one stored message.
func (r *SessionRepository) SessionCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT session_id) FROM chat_messages").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
