package repository

import (
	"sync"
	"time"

	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/google/uuid"
)

// Store keeps records of one kind keyed by id, remembering insertion order
// so listings are stable. Records are copied in and out.
type Store[T any] struct {
	mu    sync.RWMutex
	rows  map[string]*T
	order []string

	id      func(*T) *string
	owner   func(*T) string
	created func(*T) *time.Time
}

func newStore[T any](id func(*T) *string, owner func(*T) string, created func(*T) *time.Time) *Store[T] {
	return &Store[T]{
		rows:    make(map[string]*T),
		id:      id,
		owner:   owner,
		created: created,
	}
}

// Create inserts row, assigning a fresh id when it has none.
func (s *Store[T]) Create(row T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.id(&row)
	if *id == "" {
		*id = uuid.NewString()
	}
	if _, exists := s.rows[*id]; exists {
		var zero T
		return zero, ErrDuplicate
	}
	if created := s.created(&row); created.IsZero() {
		*created = time.Now().UTC()
	}

	stored := row
	s.rows[*id] = &stored
	s.order = append(s.order, *id)
	return row, nil
}

func (s *Store[T]) Get(id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return *row, nil
}

// ListByUser returns the user's records in insertion order.
func (s *Store[T]) ListByUser(userID string) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]T, 0)
	for _, id := range s.order {
		row := s.rows[id]
		if s.owner(row) == userID {
			out = append(out, *row)
		}
	}
	return out
}

// Update applies fn to the stored record under the write lock and returns
// the result.
func (s *Store[T]) Update(id string, fn func(*T)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	fn(row)
	*s.id(row) = id
	return *row, nil
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

type (
	CredentialStore   = Store[model.Credential]
	HealthRecordStore = Store[model.HealthRecord]
	PublicationStore  = Store[model.Publication]
	AssignmentStore   = Store[model.Assignment]
	WellnessStore     = Store[model.WellnessCheckin]
	AttendanceStore   = Store[model.AttendanceRecord]
)

func NewCredentialStore() *CredentialStore {
	return newStore(
		func(r *model.Credential) *string { return &r.ID },
		func(r *model.Credential) string { return r.UserID },
		func(r *model.Credential) *time.Time { return &r.CreatedAt },
	)
}

func NewHealthRecordStore() *HealthRecordStore {
	return newStore(
		func(r *model.HealthRecord) *string { return &r.ID },
		func(r *model.HealthRecord) string { return r.UserID },
		func(r *model.HealthRecord) *time.Time { return &r.CreatedAt },
	)
}

func NewPublicationStore() *PublicationStore {
	return newStore(
		func(r *model.Publication) *string { return &r.ID },
		func(r *model.Publication) string { return r.UserID },
		func(r *model.Publication) *time.Time { return &r.CreatedAt },
	)
}

func NewAssignmentStore() *AssignmentStore {
	return newStore(
		func(r *model.Assignment) *string { return &r.ID },
		func(r *model.Assignment) string { return r.UserID },
		func(r *model.Assignment) *time.Time { return &r.CreatedAt },
	)
}

func NewWellnessStore() *WellnessStore {
	return newStore(
		func(r *model.WellnessCheckin) *string { return &r.ID },
		func(r *model.WellnessCheckin) string { return r.UserID },
		func(r *model.WellnessCheckin) *time.Time { return &r.CreatedAt },
	)
}

func NewAttendanceStore() *AttendanceStore {
	return newStore(
		func(r *model.AttendanceRecord) *string { return &r.ID },
		func(r *model.AttendanceRecord) string { return r.UserID },
		func(r *model.AttendanceRecord) *time.Time { return &r.CreatedAt },
	)
}
