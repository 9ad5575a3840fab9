package repository

import (
	"strings"
	"sync"
	"time"

	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/google/uuid"
)

// UserStore indexes accounts by id and by lowercased email.
type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]string
}

func NewUserStore() *UserStore {
	return &UserStore{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

// Create stores u. The email must be unused, compared case-insensitively.
func (s *UserStore) Create(u model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(u.Email))
	if _, taken := s.byEmail[email]; taken {
		return nil, ErrDuplicate
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, taken := s.byID[u.ID]; taken {
		return nil, ErrDuplicate
	}

	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	u.Email = email

	stored := u
	s.byID[u.ID] = &stored
	s.byEmail[email] = u.ID
	return &u, nil
}

func (s *UserStore) GetByID(id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *s.byID[id]
	return &clone, nil
}
