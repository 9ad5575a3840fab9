package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/blockitin/blockitin-ai/internal/lib/sheets"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	searchSource = "Search Backend"

	// maxFilteredResults caps one page of POST /filter.
	maxFilteredResults = 50
)

var suggestionTerms = []string{
	"machine learning",
	"computer science",
	"assignments",
	"health records",
	"vaccination",
	"resume",
	"grades",
	"publications",
	"campus map",
	"attendance",
	"wellness",
	"credentials",
	"blockchain",
	"AI projects",
	"study rooms",
}

// SearchService runs queries over each user's search index.
type SearchService struct {
	repos  *repository.Repositories
	events EventPublisher
	logger *zerolog.Logger
	now    func() time.Time
}

func NewSearchService(repos *repository.Repositories, events EventPublisher, logger *zerolog.Logger) *SearchService {
	return &SearchService{
		repos:  repos,
		events: events,
		logger: logger,
		now:    time.Now,
	}
}

func (s *SearchService) timestamp() string {
	return model.Timestamp(s.now())
}

func (s *SearchService) publish(ctx context.Context, action, userID string, data map[string]any) {
	data["timestamp"] = s.timestamp()
	s.events.Publish(ctx, sheets.Request{
		Action:    action,
		Data:      data,
		UserID:    userID,
		Timestamp: s.timestamp(),
		Source:    searchSource,
	})
}

func queryTerms(q string) []string {
	return strings.Split(strings.ToLower(q), " ")
}

func matchesAny(item *model.SearchItem, terms []string) bool {
	text := item.SearchText()
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// Relevance weighs each term by where it occurs: title 3, description 2,
// content 1, any tag 1.5. The sum is normalized by 3 per term and capped at 1.
func Relevance(item *model.SearchItem, q string) float64 {
	terms := queryTerms(q)
	title := strings.ToLower(item.Title)
	description := strings.ToLower(item.Description)
	content := strings.ToLower(item.Content)

	var score float64
	for _, t := range terms {
		if strings.Contains(title, t) {
			score += 3
		}
		if strings.Contains(description, t) {
			score += 2
		}
		if strings.Contains(content, t) {
			score += 1
		}
		for _, tag := range item.Metadata.Tags {
			if strings.Contains(tag, t) {
				score += 1.5
				break
			}
		}
	}

	score /= float64(len(terms) * 3)
	if score > 1 {
		return 1
	}
	return score
}

type Facets struct {
	Sections map[string]int `json:"sections"`
	Types    map[string]int `json:"types"`
	Tags     map[string]int `json:"tags"`
}

func facetsOf(items []model.SearchItem) Facets {
	f := Facets{
		Sections: map[string]int{},
		Types:    map[string]int{},
		Tags:     map[string]int{},
	}
	for _, item := range items {
		f.Sections[item.Section]++
		f.Types[item.Type]++
		for _, tag := range item.Metadata.Tags {
			f.Tags[tag]++
		}
	}
	return f
}

type AdvancedSearchResult struct {
	Query       string             `json:"query"`
	Total       int                `json:"total"`
	Limit       int                `json:"limit"`
	Offset      int                `json:"offset"`
	Results     []model.SearchItem `json:"results"`
	Facets      Facets             `json:"facets"`
	SearchTime  float64            `json:"searchTime"`
	Suggestions []string           `json:"suggestions"`
}

// Advanced matches any query term, filters by section, rescores, sorts and
// pages. The query lands in the user's search history.
func (s *SearchService) Advanced(ctx context.Context, q *model.AdvancedSearchQuery) *AdvancedSearchResult {
	start := time.Now()

	s.publish(ctx, "advanced_search", q.UserID, map[string]any{
		"query":     q.Q,
		"sections":  q.Sections,
		"sortBy":    q.SortBy,
		"sortOrder": q.SortOrder,
		"limit":     q.Limit,
		"offset":    q.Offset,
	})

	terms := queryTerms(q.Q)
	index := s.repos.Search.Items(q.UserID)

	results := make([]model.SearchItem, 0, len(index))
	for _, item := range index {
		if !matchesAny(&item, terms) || !inSections(item.Section, q.Sections) {
			continue
		}
		item.RelevanceScore = Relevance(&item, q.Q)
		results = append(results, item)
	}

	sortResults(results, index, q.SortBy, q.SortOrder == "desc")

	s.repos.SavedSearches.Record(q.UserID, repository.SearchHistoryEntry{
		ID:           uuid.NewString(),
		Query:        q.Q,
		Timestamp:    s.timestamp(),
		ResultsCount: len(results),
		Sections:     sectionsOf(results),
	})

	return &AdvancedSearchResult{
		Query:       q.Q,
		Total:       len(results),
		Limit:       q.Limit,
		Offset:      q.Offset,
		Results:     page(results, q.Offset, q.Limit),
		Facets:      facetsOf(results),
		SearchTime:  float64(time.Since(start).Microseconds()) / 1000,
		Suggestions: querySuggestions(q.Q),
	}
}

func inSections(section string, sections []string) bool {
	if len(sections) == 0 {
		return true
	}
	for _, s := range sections {
		if s == section {
			return true
		}
	}
	return false
}

func sectionsOf(items []model.SearchItem) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, item := range items {
		if !seen[item.Section] {
			seen[item.Section] = true
			out = append(out, item.Section)
		}
	}
	return out
}

// sortResults orders results in place. Popularity uses the score each item
// carries in the index; ties fall back to id so the order is stable.
func sortResults(results, index []model.SearchItem, by string, desc bool) {
	indexed := make(map[string]float64, len(index))
	for _, item := range index {
		indexed[item.ID] = item.RelevanceScore
	}

	key := func(item model.SearchItem) float64 {
		switch by {
		case "date":
			t, ok := model.ParseDate(item.Metadata.Date)
			if !ok {
				return 0
			}
			return float64(t.Unix())
		case "popularity":
			return indexed[item.ID]
		default:
			return item.RelevanceScore
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := key(results[i]), key(results[j])
		if a == b {
			return results[i].ID < results[j].ID
		}
		if desc {
			return a > b
		}
		return a < b
	})
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func querySuggestions(q string) []string {
	return []string{q + " projects", q + " courses", q + " research"}
}

type Suggestion struct {
	Text  string `json:"text"`
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type SuggestionList struct {
	Query       string       `json:"query,omitempty"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Suggestions completes a partial query from a fixed vocabulary. Queries
// shorter than two characters get an empty list.
func (s *SearchService) Suggestions(_ context.Context, q *model.SuggestionsQuery) *SuggestionList {
	if len(q.Q) < 2 {
		return &SuggestionList{Suggestions: []Suggestion{}}
	}

	needle := strings.ToLower(q.Q)
	out := make([]Suggestion, 0, q.Limit)
	for _, term := range suggestionTerms {
		if len(out) >= q.Limit {
			break
		}
		if strings.Contains(strings.ToLower(term), needle) {
			out = append(out, Suggestion{Text: term, Type: "suggestion", Count: rand.IntN(100) + 1})
		}
	}
	return &SuggestionList{Query: q.Q, Suggestions: out}
}

type AppliedFilters struct {
	Sections  int  `json:"sections"`
	Types     int  `json:"types"`
	Status    int  `json:"status"`
	Tags      int  `json:"tags"`
	DateRange bool `json:"dateRange"`
}

type FilteredSearchResult struct {
	Query          string                     `json:"query"`
	Filters        *model.FilterSearchPayload `json:"filters"`
	Total          int                        `json:"total"`
	Results        []model.SearchItem         `json:"results"`
	AppliedFilters AppliedFilters             `json:"appliedFilters"`
}

// Filtered narrows the index by every filter given. An empty query matches
// everything; the date range is inclusive and skips undated items.
func (s *SearchService) Filtered(ctx context.Context, p *model.FilterSearchPayload) *FilteredSearchResult {
	s.publish(ctx, "filtered_search", p.UserID, map[string]any{
		"query":     p.Query,
		"sections":  p.Sections,
		"types":     p.Types,
		"status":    p.Status,
		"tags":      p.Tags,
		"dateRange": p.DateRange,
	})

	var terms []string
	if p.Query != "" {
		terms = queryTerms(p.Query)
	}

	var from, to time.Time
	if p.DateRange != nil {
		from, _ = model.ParseDate(p.DateRange.From)
		to, _ = model.ParseDate(p.DateRange.To)
	}

	results := []model.SearchItem{}
	for _, item := range s.repos.Search.Items(p.UserID) {
		if terms != nil && !matchesAny(&item, terms) {
			continue
		}
		if !inSections(item.Section, p.Sections) || !contains(p.Types, item.Type, true) {
			continue
		}
		if !contains(p.Status, item.Metadata.Status, true) || !anyTag(p.Tags, item.Metadata.Tags) {
			continue
		}
		if p.DateRange != nil && item.Metadata.Date != "" {
			d, ok := model.ParseDate(item.Metadata.Date)
			if ok && (d.Before(from) || d.After(to)) {
				continue
			}
		}
		results = append(results, item)
	}

	limit := p.Limit
	if limit <= 0 || limit > maxFilteredResults {
		limit = maxFilteredResults
	}

	return &FilteredSearchResult{
		Query:   p.Query,
		Filters: p,
		Total:   len(results),
		Results: page(results, p.Offset, limit),
		AppliedFilters: AppliedFilters{
			Sections:  len(p.Sections),
			Types:     len(p.Types),
			Status:    len(p.Status),
			Tags:      len(p.Tags),
			DateRange: p.DateRange != nil,
		},
	}
}

// contains reports whether v is in list; an empty list matches when
// emptyMatches is set.
func contains(list []string, v string, emptyMatches bool) bool {
	if len(list) == 0 {
		return emptyMatches
	}
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func anyTag(want, have []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		if contains(have, w, false) {
			return true
		}
	}
	return false
}

type SectionCount struct {
	Section    string  `json:"section"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

type QueryStat struct {
	Query        string  `json:"query"`
	Count        int     `json:"count"`
	AvgRelevance float64 `json:"avgRelevance"`
}

type SearchTrend struct {
	Date        string `json:"date"`
	Searches    int    `json:"searches"`
	UniqueUsers int    `json:"uniqueUsers"`
}

type ClickThroughRates struct {
	Overall   float64            `json:"overall"`
	BySection map[string]float64 `json:"bySection"`
}

type SearchAnalytics struct {
	UserID                  string            `json:"userId"`
	Period                  int               `json:"period"`
	TotalSearches           int               `json:"totalSearches"`
	UniqueQueries           int               `json:"uniqueQueries"`
	AverageResultsPerSearch float64           `json:"averageResultsPerSearch"`
	MostSearchedSections    []SectionCount    `json:"mostSearchedSections"`
	TopQueries              []QueryStat       `json:"topQueries"`
	SearchTrends            []SearchTrend     `json:"searchTrends"`
	ClickThroughRates       ClickThroughRates `json:"clickThroughRates"`
}

func (s *SearchService) Analytics(_ context.Context, q *model.PeriodQuery) *SearchAnalytics {
	now := s.now()
	trends := make([]SearchTrend, q.Period)
	for i := range trends {
		trends[i] = SearchTrend{
			Date:        now.Add(-time.Duration(i) * day).UTC().Format("2006-01-02"),
			Searches:    rand.IntN(20) + 5,
			UniqueUsers: rand.IntN(10) + 1,
		}
	}

	return &SearchAnalytics{
		UserID:                  q.UserID,
		Period:                  q.Period,
		TotalSearches:           156,
		UniqueQueries:           89,
		AverageResultsPerSearch: 12.4,
		MostSearchedSections: []SectionCount{
			{Section: "assignments", Count: 45, Percentage: 28.8},
			{Section: "credentials", Count: 32, Percentage: 20.5},
			{Section: "health", Count: 28, Percentage: 17.9},
			{Section: "results", Count: 24, Percentage: 15.4},
			{Section: "resume", Count: 18, Percentage: 11.5},
		},
		TopQueries: []QueryStat{
			{Query: "machine learning", Count: 23, AvgRelevance: 0.87},
			{Query: "assignments", Count: 19, AvgRelevance: 0.92},
			{Query: "health records", Count: 15, AvgRelevance: 0.85},
			{Query: "grades", Count: 12, AvgRelevance: 0.89},
			{Query: "resume", Count: 11, AvgRelevance: 0.83},
		},
		SearchTrends: trends,
		ClickThroughRates: ClickThroughRates{
			Overall: 0.73,
			BySection: map[string]float64{
				"assignments": 0.85,
				"credentials": 0.78,
				"health":      0.71,
				"results":     0.82,
				"resume":      0.69,
				"publishing":  0.64,
				"map":         0.58,
			},
		},
	}
}

type PopularSearch struct {
	Query string `json:"query"`
	Count int    `json:"count"`
	Trend string `json:"trend"`
}

type PopularSearches struct {
	Period   int             `json:"period"`
	Total    int             `json:"total"`
	Searches []PopularSearch `json:"searches"`
}

var popularSearches = []PopularSearch{
	{Query: "machine learning", Count: 89, Trend: "up"},
	{Query: "assignments due", Count: 67, Trend: "up"},
	{Query: "health records", Count: 54, Trend: "stable"},
	{Query: "resume builder", Count: 43, Trend: "up"},
	{Query: "campus map", Count: 38, Trend: "down"},
	{Query: "grades", Count: 35, Trend: "stable"},
	{Query: "publications", Count: 29, Trend: "up"},
	{Query: "attendance", Count: 24, Trend: "stable"},
	{Query: "wellness tracker", Count: 21, Trend: "up"},
	{Query: "blockchain credentials", Count: 18, Trend: "up"},
}

func (s *SearchService) Popular(_ context.Context, q *model.LimitQuery) *PopularSearches {
	return &PopularSearches{
		Period:   q.Period,
		Total:    len(popularSearches),
		Searches: page(popularSearches, 0, q.Limit),
	}
}

type SearchHistory struct {
	UserID  string                          `json:"userId"`
	Total   int                             `json:"total"`
	History []repository.SearchHistoryEntry `json:"history"`
}

func (s *SearchService) History(_ context.Context, q *model.HistoryQuery) *SearchHistory {
	history, total := s.repos.SavedSearches.History(q.UserID, q.Limit)
	return &SearchHistory{UserID: q.UserID, Total: total, History: history}
}

type ClearedHistory struct {
	UserID  string `json:"userId"`
	Cleared bool   `json:"cleared"`
	Message string `json:"message"`
}

func (s *SearchService) ClearHistory(ctx context.Context, userID string) *ClearedHistory {
	s.publish(ctx, "clear_search_history", userID, map[string]any{"userId": userID})
	s.repos.SavedSearches.ClearHistory(userID)

	return &ClearedHistory{UserID: userID, Cleared: true, Message: "Search history cleared successfully"}
}

type SavedSearchResult struct {
	model.SavedSearch
	Message string `json:"message"`
}

func (s *SearchService) Save(ctx context.Context, p *model.SaveSearchPayload) *SavedSearchResult {
	name := p.Name
	if name == "" {
		name = "Search: " + p.Query
	}

	saved := model.SavedSearch{
		ID:      uuid.NewString(),
		UserID:  p.UserID,
		Name:    name,
		Query:   p.Query,
		Filters: p.Filters,
		SavedAt: s.timestamp(),
	}
	s.repos.SavedSearches.Save(saved)

	s.publish(ctx, "save_search", p.UserID, map[string]any{
		"searchId": saved.ID,
		"userId":   p.UserID,
		"query":    p.Query,
		"filters":  p.Filters,
		"name":     name,
	})

	return &SavedSearchResult{SavedSearch: saved, Message: "Search saved successfully"}
}

type SavedSearchList struct {
	UserID   string              `json:"userId"`
	Total    int                 `json:"total"`
	Searches []model.SavedSearch `json:"searches"`
}

func (s *SearchService) SavedSearches(_ context.Context, userID string) *SavedSearchList {
	saved := s.repos.SavedSearches.List(userID)
	return &SavedSearchList{UserID: userID, Total: len(saved), Searches: saved}
}

type DeletedSearch struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

func (s *SearchService) DeleteSaved(ctx context.Context, id string) (*DeletedSearch, error) {
	if err := s.repos.SavedSearches.Delete(id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NewNotFoundError("Saved search not found", true, nil)
		}
		return nil, err
	}

	s.publish(ctx, "delete_saved_search", "system", map[string]any{"searchId": id})

	return &DeletedSearch{ID: id, Deleted: true, Message: "Saved search deleted successfully"}, nil
}

type RebuildResult struct {
	UserID       string  `json:"userId"`
	Sections     any     `json:"sections"`
	IndexedItems int     `json:"indexedItems"`
	RebuildTime  float64 `json:"rebuildTime"`
	Message      string  `json:"message"`
}

// RebuildIndex reseeds the user's index.
func (s *SearchService) RebuildIndex(ctx context.Context, p *model.RebuildIndexPayload) *RebuildResult {
	start := time.Now()

	s.publish(ctx, "rebuild_search_index", p.UserID, map[string]any{"userId": p.UserID, "sections": p.Sections})

	items := repository.DefaultSearchItems()
	s.repos.Search.Replace(p.UserID, items)

	var sections any = "all"
	if len(p.Sections) > 0 {
		sections = p.Sections
	}

	s.logger.Info().Str("user_id", p.UserID).Int("items", len(items)).Msg("search index rebuilt")

	return &RebuildResult{
		UserID:       p.UserID,
		Sections:     sections,
		IndexedItems: len(items),
		RebuildTime:  float64(time.Since(start).Microseconds()) / 1000,
		Message:      "Search index rebuilt successfully",
	}
}

type SearchExport struct {
	ExportID    string `json:"exportId"`
	Query       string `json:"query"`
	Format      string `json:"format"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   string `json:"expiresAt"`
	Message     string `json:"message"`
}

func (s *SearchService) Export(ctx context.Context, p *model.ExportSearchPayload) *SearchExport {
	id := uuid.NewString()

	s.publish(ctx, "export_search_results", p.UserID, map[string]any{
		"exportId": id,
		"userId":   p.UserID,
		"query":    p.Query,
		"filters":  p.Filters,
		"format":   p.Format,
	})

	return &SearchExport{
		ExportID:    id,
		Query:       p.Query,
		Format:      p.Format,
		DownloadURL: "/api/search/export/" + id + "/download",
		ExpiresAt:   model.Timestamp(s.now().Add(day)),
		Message:     "Search results export prepared successfully",
	}
}
