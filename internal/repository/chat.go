package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/blockitin/blockitin-ai/internal/model"
)

// MaxListedSessions caps ListSessions.
const MaxListedSessions = 20

// ChatRepository persists chat sessions and their messages.
type ChatRepository interface {
	CreateSession(ctx context.Context, session *model.ChatSession) error
	GetSession(ctx context.Context, id string) (*model.ChatSession, error)
	// ListSessions returns the user's sessions, most recently active first.
	ListSessions(ctx context.Context, userID string) ([]*model.ChatSession, error)
	AllSessions(ctx context.Context) ([]*model.ChatSession, error)
	UpdateSession(ctx context.Context, session *model.ChatSession) error
	// RecordExchange adds messages to the session's count, bumps its sheets
	// interaction counter when sheetsInteraction is set and moves its last
	// activity to at, all in one atomic step.
	RecordExchange(ctx context.Context, sessionID string, messages int, sheetsInteraction bool, at time.Time) error

	AddMessage(ctx context.Context, msg *model.Message) error
	// ListMessages returns the first limit messages of a user's session in
	// chronological order.
	ListMessages(ctx context.Context, userID, sessionID string, limit int) ([]*model.Message, error)
	// RecentMessages returns the last n messages, oldest first.
	RecentMessages(ctx context.Context, userID, sessionID string, n int) ([]*model.Message, error)
	AllMessages(ctx context.Context) ([]*model.Message, error)

	Ping(ctx context.Context) error
}

type memoryChatRepository struct {
	mu       sync.RWMutex
	sessions map[string]*model.ChatSession
	messages map[string][]*model.Message
}

func NewMemoryChatRepository() ChatRepository {
	return &memoryChatRepository{
		sessions: make(map[string]*model.ChatSession),
		messages: make(map[string][]*model.Message),
	}
}

func (r *memoryChatRepository) CreateSession(_ context.Context, session *model.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ID]; exists {
		return ErrDuplicate
	}
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memoryChatRepository) GetSession(_ context.Context, id string) (*model.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *memoryChatRepository) ListSessions(_ context.Context, userID string) ([]*model.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.ChatSession, 0)
	for _, session := range r.sessions {
		if session.UserID == userID {
			clone := *session
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	if len(out) > MaxListedSessions {
		out = out[:MaxListedSessions]
	}
	return out, nil
}

func (r *memoryChatRepository) AllSessions(_ context.Context) ([]*model.ChatSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.ChatSession, 0, len(r.sessions))
	for _, session := range r.sessions {
		clone := *session
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memoryChatRepository) UpdateSession(_ context.Context, session *model.ChatSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[session.ID]; !ok {
		return ErrNotFound
	}
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memoryChatRepository) RecordExchange(_ context.Context, sessionID string, messages int, sheetsInteraction bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	session.MessageCount += messages
	session.LastActivity = at
	if sheetsInteraction {
		session.Metadata.SheetsInteractions++
	}
	return nil
}

func (r *memoryChatRepository) AddMessage(_ context.Context, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *msg
	r.messages[msg.SessionID] = append(r.messages[msg.SessionID], &clone)
	return nil
}

func (r *memoryChatRepository) userMessages(userID, sessionID string) []*model.Message {
	out := make([]*model.Message, 0)
	for _, msg := range r.messages[sessionID] {
		if msg.UserID == userID {
			clone := *msg
			out = append(out, &clone)
		}
	}
	return out
}

func (r *memoryChatRepository) ListMessages(_ context.Context, userID, sessionID string, limit int) ([]*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.userMessages(userID, sessionID)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryChatRepository) RecentMessages(_ context.Context, userID, sessionID string, n int) ([]*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := r.userMessages(userID, sessionID)
	if n > 0 && len(out) > n {
		out = out[len(out)-n:]
	}
	return out, nil
}

func (r *memoryChatRepository) AllMessages(_ context.Context) ([]*model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Message, 0)
	for _, msgs := range r.messages {
		for _, msg := range msgs {
			clone := *msg
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memoryChatRepository) Ping(context.Context) error {
	return nil
}
