package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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

// ChatRepo persists conversations and their transcripts.
type ChatRepo interface {
	CreateConversation(ctx context.Context, userID string) (*models.Conversation, error)
	GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error)
	GetMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	SaveExchange(ctx context.Context, conversationID uuid.UUID, userContent, assistantContent string) error
	UpdatePreferences(ctx context.Context, conv *models.Conversation, prefs models.TripPreferences) error
}

type PostgresChatRepo struct {
	db     DB
	logger *zap.Logger
}

func NewPostgresChatRepo(db DB, logger *zap.Logger) *PostgresChatRepo {
	return &PostgresChatRepo{db: db, logger: logger}
}

func (r *PostgresChatRepo) CreateConversation(ctx context.Context, userID string) (*models.Conversation, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", userID, err)
	}

	conv := &models.Conversation{UserID: uid, Status: models.ConversationActive}
	err = r.db.QueryRow(ctx, `
		INSERT INTO conversations (user_id, status)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`,
		uid, models.ConversationActive,
	).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

func (r *PostgresChatRepo) GetConversation(ctx context.Context, conversationID string) (*models.Conversation, error) {
	cid, err := uuid.Parse(conversationID)
	if err != nil {
		// A malformed id can never name an existing row.
		return nil, fmt.Errorf("conversation %s: %w", conversationID, models.ErrNotFound)
	}

	conv := &models.Conversation{}
	err = r.db.QueryRow(ctx, `
		SELECT id, user_id, status, destination, budget, start_date, preferences, created_at, updated_at
		FROM conversations
		WHERE id = $1`,
		cid,
	).Scan(
		&conv.ID, &conv.UserID, &conv.Status, &conv.Destination, &conv.Budget,
		&conv.StartDate, &conv.Preferences, &conv.CreatedAt, &conv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	return conv, nil
}

func (r *PostgresChatRepo) GetMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	cid, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, models.ErrNotFound)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, conversation_id, role, content, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC`,
		cid,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// SaveExchange appends the user turn and the assistant reply in one
// transaction so a transcript never ends up with a dangling half.
func (r *PostgresChatRepo) SaveExchange(ctx context.Context, conversationID uuid.UUID, userContent, assistantContent string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const insert = `INSERT INTO messages (id, conversation_id, role, content) VALUES ($1, $2, $3, $4)`
	if _, err := tx.Exec(ctx, insert, uuid.New(), conversationID, models.RoleUser, userContent); err != nil {
		return fmt.Errorf("failed to save user message: %w", err)
	}
	if _, err := tx.Exec(ctx, insert, uuid.New(), conversationID, models.RoleAssistant, assistantContent); err != nil {
		return fmt.Errorf("failed to save assistant message: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE conversations SET updated_at = $1 WHERE id = $2`,
		time.Now(), conversationID,
	); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	return tx.Commit(ctx)
}

// UpdatePreferences writes the merged preference blob back along with the
// denormalized destination, budget and start_date columns.
func (r *PostgresChatRepo) UpdatePreferences(ctx context.Context, conv *models.Conversation, prefs models.TripPreferences) error {
	blob, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	var startDate *time.Time
	if prefs.ArrivalDate != nil {
		if d, perr := time.Parse("2006-01-02", *prefs.ArrivalDate); perr == nil {
			startDate = &d
		}
	}

	_, err = r.db.Exec(ctx, `
		UPDATE conversations
		SET preferences = $1,
		    destination = COALESCE($2, destination),
		    budget = COALESCE($3, budget),
		    start_date = COALESCE($4, start_date),
		    updated_at = $5
		WHERE id = $6`,
		blob, prefs.Destination, prefs.Budget, startDate, time.Now(), conv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update preferences: %w", err)
	}

	conv.Preferences = blob
	if prefs.Destination != nil {
		conv.Destination = prefs.Destination
	}
	if prefs.Budget != nil {
		conv.Budget = prefs.Budget
	}
	if startDate != nil {
		conv.StartDate = startDate
	}
	return nil
}
