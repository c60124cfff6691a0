package suggestions

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/voyagent/voyagent/internal/models"
)

// DB is the pool surface the repository uses. Satisfied by *pgxpool.Pool and
// by pgxmock pools in tests.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SuggestionRepo stores generated travel suggestions per conversation.
type SuggestionRepo interface {
	ListByConversation(ctx context.Context, conversationID string) ([]models.Suggestion, error)
	ReplaceForConversation(ctx context.Context, conversationID string, suggestions []models.Suggestion) error
}

type PostgresSuggestionRepo struct {
	db     DB
	logger *zap.Logger
}

func NewPostgresSuggestionRepo(db DB, logger *zap.Logger) *PostgresSuggestionRepo {
	return &PostgresSuggestionRepo{db: db, logger: logger}
}

func (r *PostgresSuggestionRepo) ListByConversation(ctx context.Context, conversationID string) ([]models.Suggestion, error) {
	cid, err := uuid.Parse(conversationID)
	if err != nil {
		// A malformed id can never name an existing row.
		return nil, fmt.Errorf("conversation %s: %w", conversationID, models.ErrNotFound)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, conversation_id, category, title, description, price, rating, image_url, booking_url, location, created_at
		FROM travel_suggestions
		WHERE conversation_id = $1
		ORDER BY created_at ASC`,
		cid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []models.Suggestion
	for rows.Next() {
		var s models.Suggestion
		var location []byte
		if err := rows.Scan(
			&s.ID, &s.ConversationID, &s.Category, &s.Title, &s.Description,
			&s.Price, &s.Rating, &s.ImageURL, &s.BookingURL, &location, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		if len(location) > 0 {
			loc := &models.SuggestionLocation{}
			if err := json.Unmarshal(location, loc); err == nil {
				s.Location = loc
			}
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

// ReplaceForConversation swaps the stored suggestion set atomically, so a
// reader never observes a half-written refresh.
func (r *PostgresSuggestionRepo) ReplaceForConversation(ctx context.Context, conversationID string, suggestions []models.Suggestion) error {
	cid, err := uuid.Parse(conversationID)
	if err != nil {
		return fmt.Errorf("invalid conversation id %q: %w", conversationID, err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM travel_suggestions WHERE conversation_id = $1`,
		cid,
	); err != nil {
		return fmt.Errorf("failed to clear suggestions: %w", err)
	}

	for _, s := range suggestions {
		var location []byte
		if s.Location != nil {
			location, err = json.Marshal(s.Location)
			if err != nil {
				return fmt.Errorf("failed to encode suggestion location: %w", err)
			}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO travel_suggestions (id, conversation_id, category, title, description, price, rating, image_url, booking_url, location)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.New(), cid, s.Category, s.Title, s.Description,
			s.Price, s.Rating, s.ImageURL, s.BookingURL, location,
		); err != nil {
			return fmt.Errorf("failed to insert suggestion: %w", err)
		}
	}

	return tx.Commit(ctx)
}
