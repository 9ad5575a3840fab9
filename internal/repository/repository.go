// Package repository holds the portal's data stores.
//
// Dashboard records, users and the search index live in process memory and
// are seeded at start-up for the demo student. Chat sessions and messages go
// to PostgreSQL when a database is configured and to memory otherwise.
// Every store is safe for concurrent use.
package repository

import (
	"errors"

	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when no record has the requested key.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("record already exists")
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Users         *UserStore
	Credentials   *CredentialStore
	HealthRecords *HealthRecordStore
	Publications  *PublicationStore
	Assignments   *AssignmentStore
	Wellness      *WellnessStore
	Attendance    *AttendanceStore
	Chat          ChatRepository
	Search        *SearchIndex
	SavedSearches *SavedSearchStore
}

// NewRepositories builds the seeded stores. The chat store uses the
// PostgreSQL pool on s.DB when there is one.
func NewRepositories(s *server.Server) *Repositories {
	repos := NewMemoryRepositories()

	if s.DB != nil {
		repos.Chat = NewPostgresChatRepository(s.DB.Pool)
		logChatStore(s.Logger, "postgres")
	} else {
		logChatStore(s.Logger, "memory")
	}

	return repos
}

// NewMemoryRepositories returns seeded in-memory stores only.
func NewMemoryRepositories() *Repositories {
	repos := &Repositories{
		Users:         NewUserStore(),
		Credentials:   NewCredentialStore(),
		HealthRecords: NewHealthRecordStore(),
		Publications:  NewPublicationStore(),
		Assignments:   NewAssignmentStore(),
		Wellness:      NewWellnessStore(),
		Attendance:    NewAttendanceStore(),
		Chat:          NewMemoryChatRepository(),
		Search:        NewSearchIndex(),
		SavedSearches: NewSavedSearchStore(),
	}
	seed(repos)
	return repos
}

func logChatStore(logger *zerolog.Logger, kind string) {
	if logger != nil {
		logger.Info().Str("store", kind).Msg("chat repository ready")
	}
}
