package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Message represents a stored text with its tone analysis result.
type Message struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Text         string
	Context      *string
	Tone         string
	ImprovedText string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateMessageParams contains parameters for storing a message.
type CreateMessageParams struct {
	UserID       uuid.UUID
	Text         string
	Context      *string
	Tone         string
	ImprovedText string
}

const messageColumns = `id, user_id, text, context, tone, improved_text, created_at, updated_at`

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.UserID, &m.Text, &m.Context, &m.Tone, &m.ImprovedText, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMessages(rows pgx.Rows) ([]Message, error) {
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Text, &m.Context, &m.Tone, &m.ImprovedText, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CreateMessage stores a new analyzed message.
func (db *DB) CreateMessage(ctx context.Context, params CreateMessageParams) (*Message, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO messages (user_id, text, context, tone, improved_text)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+messageColumns,
		params.UserID, params.Text, params.Context, params.Tone, params.ImprovedText,
	)
	return scanMessage(row)
}

// GetMessageByID retrieves a message by ID.
func (db *DB) GetMessageByID(ctx context.Context, id uuid.UUID) (*Message, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`,
		id,
	)
	return scanMessage(row)
}

// ListUserMessages returns a user's messages, newest first.
func (db *DB) ListUserMessages(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// ListUserMessagesByTone returns a user's messages with the given tone,
// newest first.
func (db *DB) ListUserMessagesByTone(ctx context.Context, userID uuid.UUID, tone string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE user_id = $1 AND tone = $2
		 ORDER BY created_at DESC
		 LIMIT $3`,
		userID, tone, limit,
	)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// SearchUserMessages returns a user's messages whose text contains the query
// substring, case-insensitively, newest first.
func (db *DB) SearchUserMessages(ctx context.Context, userID uuid.UUID, query string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE user_id = $1 AND text ILIKE '%' || $2 || '%'
		 ORDER BY created_at DESC
		 LIMIT $3`,
		userID, query, limit,
	)
	if err != nil {
		return nil, err
	}
	return collectMessages(rows)
}

// DeleteMessage deletes a message owned by the given user. Returns false if
// no such message exists.
func (db *DB) DeleteMessage(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM messages WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// UserStats aggregates a user's message history.
type UserStats struct {
	TotalMessages    int
	MostCommonTone   *string
	ToneCounts       map[string]int
	MessagesThisWeek int
}

// GetUserStats computes message statistics for a user.
func (db *DB) GetUserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	stats := &UserStats{ToneCounts: make(map[string]int)}

	rows, err := db.pool.Query(ctx,
		`SELECT tone, COUNT(*) FROM messages
		 WHERE user_id = $1
		 GROUP BY tone
		 ORDER BY COUNT(*) DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	first := true
	for rows.Next() {
		var tone string
		var count int
		if err := rows.Scan(&tone, &count); err != nil {
			return nil, err
		}
		stats.ToneCounts[tone] = count
		stats.TotalMessages += count
		if first {
			t := tone
			stats.MostCommonTone = &t
			first = false
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages
		 WHERE user_id = $1 AND created_at >= now() - INTERVAL '7 days'`,
		userID,
	).Scan(&stats.MessagesThisWeek)
	if err != nil {
		return nil, err
	}

	return stats, nil
}
