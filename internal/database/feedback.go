package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Feedback represents a user's rating of a tone analysis result.
type Feedback struct {
	ID                    uuid.UUID
	MessageID             uuid.UUID
	UserID                uuid.UUID
	ToneAccuracy          int
	SuggestionHelpfulness int
	Comments              *string
	CreatedAt             time.Time
}

// CreateFeedbackParams contains parameters for creating feedback.
type CreateFeedbackParams struct {
	MessageID             uuid.UUID
	UserID                uuid.UUID
	ToneAccuracy          int
	SuggestionHelpfulness int
	Comments              *string
}

const feedbackColumns = `id, message_id, user_id, tone_accuracy, suggestion_helpfulness, comments, created_at`

func scanFeedback(row pgx.Row) (*Feedback, error) {
	var f Feedback
	err := row.Scan(&f.ID, &f.MessageID, &f.UserID, &f.ToneAccuracy, &f.SuggestionHelpfulness, &f.Comments, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func collectFeedback(rows pgx.Rows) ([]Feedback, error) {
	defer rows.Close()

	var items []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.MessageID, &f.UserID, &f.ToneAccuracy, &f.SuggestionHelpfulness, &f.Comments, &f.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

// CreateFeedback stores a new feedback entry.
func (db *DB) CreateFeedback(ctx context.Context, params CreateFeedbackParams) (*Feedback, error) {
	row := db.pool.QueryRow(ctx,
		`INSERT INTO feedback (message_id, user_id, tone_accuracy, suggestion_helpfulness, comments)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+feedbackColumns,
		params.MessageID, params.UserID, params.ToneAccuracy, params.SuggestionHelpfulness, params.Comments,
	)
	return scanFeedback(row)
}

// GetFeedbackByID retrieves a feedback entry by ID.
func (db *DB) GetFeedbackByID(ctx context.Context, id uuid.UUID) (*Feedback, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+feedbackColumns+` FROM feedback WHERE id = $1`,
		id,
	)
	return scanFeedback(row)
}

// ListMessageFeedback returns all feedback for a message, newest first.
func (db *DB) ListMessageFeedback(ctx context.Context, messageID uuid.UUID) ([]Feedback, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+feedbackColumns+` FROM feedback
		 WHERE message_id = $1
		 ORDER BY created_at DESC`,
		messageID,
	)
	if err != nil {
		return nil, err
	}
	return collectFeedback(rows)
}

// ListUserFeedback returns a user's feedback entries, newest first.
func (db *DB) ListUserFeedback(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+feedbackColumns+` FROM feedback
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	return collectFeedback(rows)
}

// UpdateFeedbackParams contains updatable feedback fields.
type UpdateFeedbackParams struct {
	ToneAccuracy          int
	SuggestionHelpfulness int
	Comments              *string
}

// UpdateFeedback updates a feedback entry owned by the given user. Returns
// nil, nil if no such entry exists.
func (db *DB) UpdateFeedback(ctx context.Context, id, userID uuid.UUID, params UpdateFeedbackParams) (*Feedback, error) {
	row := db.pool.QueryRow(ctx,
		`UPDATE feedback
		 SET tone_accuracy = $1, suggestion_helpfulness = $2, comments = $3
		 WHERE id = $4 AND user_id = $5
		 RETURNING `+feedbackColumns,
		params.ToneAccuracy, params.SuggestionHelpfulness, params.Comments, id, userID,
	)
	return scanFeedback(row)
}

// DeleteFeedback deletes a feedback entry owned by the given user. Returns
// false if no such entry exists.
func (db *DB) DeleteFeedback(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM feedback WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

// FeedbackStats aggregates feedback across all users.
type FeedbackStats struct {
	TotalFeedback            int
	AvgToneAccuracy          float64
	AvgSuggestionHelpfulness float64
}

// GetFeedbackStats computes overall feedback statistics.
func (db *DB) GetFeedbackStats(ctx context.Context) (*FeedbackStats, error) {
	var stats FeedbackStats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(tone_accuracy), 0),
		        COALESCE(AVG(suggestion_helpfulness), 0)
		 FROM feedback`,
	).Scan(&stats.TotalFeedback, &stats.AvgToneAccuracy, &stats.AvgSuggestionHelpfulness)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
