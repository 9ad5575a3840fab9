package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearch(t *testing.T) (*SearchService, *repository.Repositories, *fakePublisher) {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	events := &fakePublisher{}
	return NewSearchService(repos, events, &nop), repos, events
}

func ids(items []model.SearchItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestRelevance(t *testing.T) {
	item := &model.SearchItem{
		Title:       "Machine Learning Final Project",
		Description: "Deep learning model",
		Content:     "neural networks",
		Metadata:    model.SearchMetadata{Tags: []string{"machine-learning", "python"}},
	}

	tests := []struct {
		name string
		q    string
		want float64
	}{
		{"title description and tag", "learning", 1},
		{"content only", "neural", 1.0 / 3},
		{"tag only", "python", 0.5},
		{"no match", "chemistry", 0},
		{"averaged over terms", "machine chemistry", (3 + 1.5) / 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Relevance(item, tt.q), 0.0001)
		})
	}
}

func TestAdvancedSearch(t *testing.T) {
	s, repos, events := newSearch(t)

	res := s.Advanced(context.Background(), &model.AdvancedSearchQuery{
		Q: "machine learning", UserID: model.DefaultUserID, SortBy: "relevance", SortOrder: "desc", Limit: 20,
	})

	require.NotZero(t, res.Total)
	for i := 1; i < len(res.Results); i++ {
		assert.GreaterOrEqual(t, res.Results[i-1].RelevanceScore, res.Results[i].RelevanceScore)
	}
	assert.Equal(t, res.Total, len(res.Results))
	assert.Equal(t, []string{"machine learning projects", "machine learning courses", "machine learning research"}, res.Suggestions)
	assert.Equal(t, []string{"advanced_search"}, events.actions())

	history, total := repos.SavedSearches.History(model.DefaultUserID, 1)
	assert.Equal(t, 4, total)
	require.Len(t, history, 1)
	assert.Equal(t, "machine learning", history[0].Query)
	assert.Equal(t, res.Total, history[0].ResultsCount)
}

func TestAdvancedSearchSectionsAndPaging(t *testing.T) {
	s, _, _ := newSearch(t)
	ctx := context.Background()

	res := s.Advanced(ctx, &model.AdvancedSearchQuery{
		Q: "computer", UserID: model.DefaultUserID, Sections: []string{"credentials"}, SortBy: "relevance", SortOrder: "desc", Limit: 20,
	})
	assert.Equal(t, []string{"cred-1"}, ids(res.Results))
	assert.Equal(t, map[string]int{"credentials": 1}, res.Facets.Sections)

	all := s.Advanced(ctx, &model.AdvancedSearchQuery{
		Q: "computer", UserID: model.DefaultUserID, SortBy: "date", SortOrder: "asc", Limit: 20,
	})
	paged := s.Advanced(ctx, &model.AdvancedSearchQuery{
		Q: "computer", UserID: model.DefaultUserID, SortBy: "date", SortOrder: "asc", Limit: 2, Offset: 1,
	})
	require.Greater(t, all.Total, 2)
	assert.Equal(t, all.Total, paged.Total)
	assert.Equal(t, ids(all.Results)[1:3], ids(paged.Results))

	beyond := s.Advanced(ctx, &model.AdvancedSearchQuery{
		Q: "computer", UserID: model.DefaultUserID, SortBy: "relevance", SortOrder: "desc", Limit: 5, Offset: 100,
	})
	assert.Empty(t, beyond.Results)
}

func TestAdvancedSearchPopularityUsesIndexedScore(t *testing.T) {
	s, _, _ := newSearch(t)

	res := s.Advanced(context.Background(), &model.AdvancedSearchQuery{
		Q: "machine", UserID: model.DefaultUserID, SortBy: "popularity", SortOrder: "desc", Limit: 20,
	})

	// indexed scores: cred-1 0.95, assign-1 0.92, result-1 0.89
	assert.Equal(t, []string{"cred-1", "assign-1", "result-1"}, ids(res.Results))
}

func TestSuggestions(t *testing.T) {
	s, _, _ := newSearch(t)
	ctx := context.Background()

	assert.Empty(t, s.Suggestions(ctx, &model.SuggestionsQuery{Q: "m", Limit: 10}).Suggestions)

	res := s.Suggestions(ctx, &model.SuggestionsQuery{Q: "ma", Limit: 10})
	texts := make([]string, 0, len(res.Suggestions))
	for _, sg := range res.Suggestions {
		texts = append(texts, sg.Text)
		assert.Equal(t, "suggestion", sg.Type)
		assert.Positive(t, sg.Count)
	}
	assert.Equal(t, []string{"machine learning", "campus map"}, texts)

	assert.Len(t, s.Suggestions(ctx, &model.SuggestionsQuery{Q: "re", Limit: 2}).Suggestions, 2)
}

func TestFilteredSearch(t *testing.T) {
	s, _, _ := newSearch(t)
	ctx := context.Background()

	tests := []struct {
		name string
		p    model.FilterSearchPayload
		want []string
	}{
		{
			name: "sections",
			p:    model.FilterSearchPayload{Sections: []string{"credentials"}},
			want: []string{"cred-1", "cred-2"},
		},
		{
			name: "types and status",
			p:    model.FilterSearchPayload{Types: []string{"credential", "vaccination"}, Status: []string{"verified"}},
			want: []string{"cred-1", "health-1"},
		},
		{
			name: "tags",
			p:    model.FilterSearchPayload{Tags: []string{"aws", "python"}},
			want: []string{"cred-2", "assign-1"},
		},
		{
			name: "date range keeps undated items",
			p:    model.FilterSearchPayload{DateRange: &model.DateRange{From: "2024-01-01", To: "2024-01-31"}},
			want: []string{"assign-1", "health-1", "pub-1", "resume-1", "loc-1"},
		},
		{
			name: "query",
			p:    model.FilterSearchPayload{Query: "vaccination"},
			want: []string{"health-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.p
			p.UserID = model.DefaultUserID
			p.Limit = 50
			res := s.Filtered(ctx, &p)
			assert.Equal(t, tt.want, ids(res.Results))
			assert.Equal(t, len(tt.want), res.Total)
		})
	}
}

func TestFilteredSearchCapsLimit(t *testing.T) {
	s, repos, _ := newSearch(t)

	items := make([]model.SearchItem, 0, 60)
	for i := 0; i < 60; i++ {
		items = append(items, model.SearchItem{ID: string(rune('a'+i%26)) + string(rune('0'+i/26)), Section: "credentials", Type: "credential"})
	}
	repos.Search.Replace("bulk", items)

	res := s.Filtered(context.Background(), &model.FilterSearchPayload{UserID: "bulk", Limit: 100})

	assert.Equal(t, 60, res.Total)
	assert.Len(t, res.Results, maxFilteredResults)
}

func TestSavedSearches(t *testing.T) {
	s, _, events := newSearch(t)
	ctx := context.Background()

	saved := s.Save(ctx, &model.SaveSearchPayload{UserID: "u1", Query: "deep learning"})
	assert.Equal(t, "Search: deep learning", saved.Name)
	assert.NotEmpty(t, saved.ID)

	named := s.Save(ctx, &model.SaveSearchPayload{UserID: "u1", Query: "aws", Name: "Cloud"})
	assert.Equal(t, "Cloud", named.Name)

	list := s.SavedSearches(ctx, "u1")
	assert.Equal(t, 2, list.Total)

	deleted, err := s.DeleteSaved(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	assert.Equal(t, 1, s.SavedSearches(ctx, "u1").Total)

	_, err = s.DeleteSaved(ctx, saved.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))

	assert.Equal(t, []string{"save_search", "save_search", "delete_saved_search"}, events.actions())
	assert.Equal(t, "system", events.requests[2].UserID)
}

func TestHistoryAndClear(t *testing.T) {
	s, _, _ := newSearch(t)
	ctx := context.Background()

	h := s.History(ctx, &model.HistoryQuery{UserID: model.DefaultUserID, Limit: 2})
	assert.Equal(t, 3, h.Total)
	require.Len(t, h.History, 2)
	assert.Equal(t, "search-1", h.History[0].ID)

	cleared := s.ClearHistory(ctx, model.DefaultUserID)
	assert.True(t, cleared.Cleared)
	assert.Zero(t, s.History(ctx, &model.HistoryQuery{UserID: model.DefaultUserID, Limit: 50}).Total)
}

func TestRebuildIndex(t *testing.T) {
	s, repos, _ := newSearch(t)

	assert.Empty(t, repos.Search.Items("fresh"))

	res := s.RebuildIndex(context.Background(), &model.RebuildIndexPayload{UserID: "fresh"})
	assert.Equal(t, len(repository.DefaultSearchItems()), res.IndexedItems)
	assert.Equal(t, "all", res.Sections)
	assert.Len(t, repos.Search.Items("fresh"), res.IndexedItems)

	res = s.RebuildIndex(context.Background(), &model.RebuildIndexPayload{UserID: "fresh", Sections: []string{"health"}})
	assert.Equal(t, []string{"health"}, res.Sections)
}

func TestPopular(t *testing.T) {
	s, _, _ := newSearch(t)

	res := s.Popular(context.Background(), &model.LimitQuery{Limit: 3, Period: 7})

	assert.Equal(t, 10, res.Total)
	require.Len(t, res.Searches, 3)
	assert.Equal(t, "machine learning", res.Searches[0].Query)
}
