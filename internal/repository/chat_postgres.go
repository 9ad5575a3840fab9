package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresChatRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresChatRepository stores chat data in the chat_sessions and
// chat_messages tables.
func NewPostgresChatRepository(pool *pgxpool.Pool) ChatRepository {
	return &postgresChatRepository{pool: pool}
}

const sessionColumns = `id, user_id, title, is_active, message_count, metadata, created_at, last_activity`

func scanSession(row pgx.Row) (*model.ChatSession, error) {
	var s model.ChatSession
	err := row.Scan(&s.ID, &s.UserID, &s.Title, &s.IsActive, &s.MessageCount, &s.Metadata, &s.CreatedAt, &s.LastActivity)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresChatRepository) CreateSession(ctx context.Context, s *model.ChatSession) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.UserID, s.Title, s.IsActive, s.MessageCount, s.Metadata, s.CreatedAt, s.LastActivity,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat session %s: %w", s.ID, err)
	}
	return nil
}

func (r *postgresChatRepository) GetSession(ctx context.Context, id string) (*model.ChatSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM chat_sessions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat session %s: %w", id, err)
	}
	return s, nil
}

func (r *postgresChatRepository) querySessions(ctx context.Context, query string, args ...any) ([]*model.ChatSession, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat sessions: %w", err)
	}
	defer rows.Close()

	out := make([]*model.ChatSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *postgresChatRepository) ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error) {
	return r.querySessions(ctx, `
		SELECT `+sessionColumns+` FROM chat_sessions
		WHERE user_id = $1
		ORDER BY last_activity DESC
		LIMIT $2`, userID, MaxListedSessions)
}

func (r *postgresChatRepository) AllSessions(ctx context.Context) ([]*model.ChatSession, error) {
	return r.querySessions(ctx, `SELECT `+sessionColumns+` FROM chat_sessions`)
}

func (r *postgresChatRepository) UpdateSession(ctx context.Context, s *model.ChatSession) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE chat_sessions
		SET title = $2, is_active = $3, message_count = $4, metadata = $5, last_activity = $6
		WHERE id = $1`,
		s.ID, s.Title, s.IsActive, s.MessageCount, s.Metadata, s.LastActivity,
	)
	if err != nil {
		return fmt.Errorf("failed to update chat session %s: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postgresChatRepository) RecordExchange(ctx context.Context, sessionID string, messages int, sheetsInteraction bool, at time.Time) error {
	bump := 0
	if sheetsInteraction {
		bump = 1
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE chat_sessions
		SET message_count = message_count + $2,
			last_activity = $3,
			metadata = jsonb_set(
				metadata,
				'{sheetsInteractions}',
				to_jsonb(COALESCE((metadata->>'sheetsInteractions')::int, 0) + $4::int)
			)
		WHERE id = $1`,
		sessionID, messages, at, bump,
	)
	if err != nil {
		return fmt.Errorf("failed to record exchange on chat session %s: %w", sessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const messageColumns = `id, user_id, session_id, type, content, suggestions, is_error, is_success, metadata, created_at`

func (r *postgresChatRepository) AddMessage(ctx context.Context, m *model.Message) error {
	suggestions := m.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.UserID, m.SessionID, string(m.Type), m.Content, suggestions, m.IsError, m.IsSuccess, m.Metadata, m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	return nil
}

func (r *postgresChatRepository) queryMessages(ctx context.Context, query string, args ...any) ([]*model.Message, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat messages: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Message, 0)
	for rows.Next() {
		var (
			m       model.Message
			msgType string
		)
		if err := rows.Scan(&m.ID, &m.UserID, &m.SessionID, &msgType, &m.Content, &m.Suggestions,
			&m.IsError, &m.IsSuccess, &m.Metadata, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		m.Type = model.MessageType(msgType)
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *postgresChatRepository) ListMessages(ctx context.Context, userID, sessionID string, limit int) ([]*model.Message, error) {
	return r.queryMessages(ctx, `
		SELECT `+messageColumns+` FROM chat_messages
		WHERE user_id = $1 AND session_id = $2
		ORDER BY created_at ASC
		LIMIT $3`, userID, sessionID, limit)
}

func (r *postgresChatRepository) RecentMessages(ctx context.Context, userID, sessionID string, n int) ([]*model.Message, error) {
	return r.queryMessages(ctx, `
		SELECT * FROM (
			SELECT `+messageColumns+` FROM chat_messages
			WHERE user_id = $1 AND session_id = $2
			ORDER BY created_at DESC
			LIMIT $3
		) recent ORDER BY created_at ASC`, userID, sessionID, n)
}

func (r *postgresChatRepository) AllMessages(ctx context.Context) ([]*model.Message, error) {
	return r.queryMessages(ctx, `SELECT `+messageColumns+` FROM chat_messages`)
}

func (r *postgresChatRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
