package repository

import (
	"sync"

	"github.com/blockitin/blockitin-ai/internal/model"
)

// SearchIndex holds the searchable items of each user.
type SearchIndex struct {
	mu    sync.RWMutex
	items map[string][]model.SearchItem
}

func NewSearchIndex() *SearchIndex {
	return &SearchIndex{items: make(map[string][]model.SearchItem)}
}

// Items returns a copy of the user's index. Unknown users have an empty one.
func (s *SearchIndex) Items(userID string) []model.SearchItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SearchItem, len(s.items[userID]))
	copy(out, s.items[userID])
	return out
}

// Replace swaps the user's whole index.
func (s *SearchIndex) Replace(userID string, items []model.SearchItem) {
	clone := make([]model.SearchItem, len(items))
	copy(clone, items)

	s.mu.Lock()
	s.items[userID] = clone
	s.mu.Unlock()
}

// SearchHistoryEntry is one past query of a user.
type SearchHistoryEntry struct {
	ID           string   `json:"id"`
	Query        string   `json:"query"`
	Timestamp    string   `json:"timestamp"`
	ResultsCount int      `json:"resultsCount"`
	Sections     []string `json:"sections"`
}

// SavedSearchStore keeps saved searches and the query history per user.
type SavedSearchStore struct {
	mu      sync.RWMutex
	saved   map[string][]model.SavedSearch
	history map[string][]SearchHistoryEntry
}

func NewSavedSearchStore() *SavedSearchStore {
	return &SavedSearchStore{
		saved:   make(map[string][]model.SavedSearch),
		history: make(map[string][]SearchHistoryEntry),
	}
}

func (s *SavedSearchStore) Save(search model.SavedSearch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved[search.UserID] = append(s.saved[search.UserID], search)
}

func (s *SavedSearchStore) List(userID string) []model.SavedSearch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.SavedSearch, len(s.saved[userID]))
	copy(out, s.saved[userID])
	return out
}

// Delete removes the saved search with id from whichever user owns it.
func (s *SavedSearchStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, searches := range s.saved {
		for i, search := range searches {
			if search.ID == id {
				s.saved[userID] = append(searches[:i:i], searches[i+1:]...)
				return nil
			}
		}
	}
	return ErrNotFound
}

// Record prepends entry to the user's history.
func (s *SavedSearchStore) Record(userID string, entry SearchHistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[userID] = append([]SearchHistoryEntry{entry}, s.history[userID]...)
}

// History returns up to limit entries, newest first.
func (s *SavedSearchStore) History(userID string, limit int) ([]SearchHistoryEntry, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.history[userID]
	n := len(all)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]SearchHistoryEntry, n)
	copy(out, all[:n])
	return out, len(all)
}

func (s *SavedSearchStore) ClearHistory(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, userID)
}
