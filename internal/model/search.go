package model

import (
	"strings"

	"github.com/blockitin/blockitin-ai/internal/validation"
)

// SearchMetadata is the optional detail block of an indexed item.
type SearchMetadata struct {
	Date   string   `json:"date,omitempty"`
	Author string   `json:"author,omitempty"`
	Status string   `json:"status,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	URL    string   `json:"url,omitempty"`
}

// SearchItem is one entry of a user's search index.
type SearchItem struct {
	ID             string         `json:"id"`
	Type           string         `json:"type"`
	Section        string         `json:"section"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Content        string         `json:"content,omitempty"`
	RelevanceScore float64        `json:"relevanceScore"`
	Metadata       SearchMetadata `json:"metadata"`
	Highlights     []string       `json:"highlights"`
}

// SearchText is the lowercased text that query terms are matched against.
func (i *SearchItem) SearchText() string {
	return strings.ToLower(i.Title + " " + i.Description + " " + i.Content)
}

// SavedSearch is a named query a user can rerun.
type SavedSearch struct {
	ID       string         `json:"id"`
	UserID   string         `json:"-"`
	Name     string         `json:"name"`
	Query    string         `json:"query"`
	Filters  map[string]any `json:"filters,omitempty"`
	SavedAt  string         `json:"savedAt"`
	LastUsed string         `json:"lastUsed,omitempty"`
}

// DateRange is inclusive on both ends.
type DateRange struct {
	From string `json:"from" query:"from" validate:"required,isodate"`
	To   string `json:"to" query:"to" validate:"required,isodate"`
}

// AdvancedSearchQuery binds GET /api/search/advanced.
type AdvancedSearchQuery struct {
	Q         string   `query:"q" validate:"required,min=1,max=200"`
	UserID    string   `query:"userId"`
	Sections  []string `query:"sections" validate:"dive,oneof=credentials resume health wellness attendance publishing wallet assignments map results"`
	SortBy    string   `query:"sortBy" validate:"oneof=relevance date popularity"`
	SortOrder string   `query:"sortOrder" validate:"oneof=asc desc"`
	Limit     int      `query:"limit" validate:"min=1,max=100"`
	Offset    int      `query:"offset" validate:"min=0"`
}

func (p *AdvancedSearchQuery) Normalize() {
	defaultString(&p.UserID, DefaultUserID)
	defaultString(&p.SortBy, "relevance")
	defaultString(&p.SortOrder, "desc")
	defaultInt(&p.Limit, 20)
	p.Sections = splitCSV(p.Sections)
}

func (p *AdvancedSearchQuery) Validate() error {
	return validate.Struct(p)
}

func (p *AdvancedSearchQuery) FailureMessage() string {
	return "Invalid search parameters"
}

// SuggestionsQuery binds GET /api/search/suggestions.
type SuggestionsQuery struct {
	Q      string `query:"q"`
	Limit  int    `query:"limit" validate:"min=0,max=100"`
	UserID string `query:"userId"`
}

func (p *SuggestionsQuery) Normalize() {
	defaultInt(&p.Limit, 10)
	defaultString(&p.UserID, DefaultUserID)
}

func (p *SuggestionsQuery) Validate() error {
	return validate.Struct(p)
}

// FilterSearchPayload is the body of POST /api/search/filter.
type FilterSearchPayload struct {
	UserID       string     `json:"userId" validate:"required"`
	Query        string     `json:"query" validate:"max=200"`
	Sections     []string   `json:"sections" validate:"dive,oneof=credentials resume health wellness attendance publishing wallet assignments map results"`
	Types        []string   `json:"types" validate:"dive,oneof=credential certification degree assignment health vaccination checkup publication resume location grade course attendance"`
	DateRange    *DateRange `json:"dateRange,omitempty"`
	Status       []string   `json:"status,omitempty" validate:"dive,oneof=active completed pending verified draft published in_progress not_started"`
	Priority     []string   `json:"priority,omitempty" validate:"dive,oneof=low medium high"`
	Tags         []string   `json:"tags,omitempty" validate:"dive,max=50"`
	Authors      []string   `json:"authors,omitempty" validate:"dive,max=100"`
	Institutions []string   `json:"institutions,omitempty" validate:"dive,max=100"`
	Limit        int        `json:"limit" validate:"min=1,max=100"`
	Offset       int        `json:"offset" validate:"min=0"`
}

func (p *FilterSearchPayload) Normalize() {
	defaultInt(&p.Limit, 50)
	if p.Sections == nil {
		p.Sections = []string{}
	}
	if p.Types == nil {
		p.Types = []string{}
	}
}

func (p *FilterSearchPayload) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.DateRange != nil {
		from, _ := ParseDate(p.DateRange.From)
		to, _ := ParseDate(p.DateRange.To)
		if to.Before(from) {
			return validation.Single("dateRange.to", "must not be before dateRange.from")
		}
	}
	return nil
}

func (p *FilterSearchPayload) FailureMessage() string {
	return "Invalid filter parameters"
}

// LimitQuery binds ?limit=&period= of the popular searches route.
type LimitQuery struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Period int `query:"period" validate:"min=0,max=365"`
}

func (p *LimitQuery) Normalize() {
	defaultInt(&p.Limit, 20)
	defaultInt(&p.Period, 7)
}

func (p *LimitQuery) Validate() error {
	return validate.Struct(p)
}

// HistoryQuery binds GET /api/search/history/:userId.
type HistoryQuery struct {
	UserID string `param:"userId" validate:"required"`
	Limit  int    `query:"limit" validate:"min=0,max=500"`
}

func (p *HistoryQuery) Normalize() {
	defaultInt(&p.Limit, 50)
}

func (p *HistoryQuery) Validate() error {
	return validate.Struct(p)
}

// UserParam binds routes addressed by :userId.
type UserParam struct {
	UserID string `param:"userId" validate:"required"`
}

func (p *UserParam) Validate() error {
	return validate.Struct(p)
}

// SearchIDParam binds DELETE /api/search/saved/:searchId.
type SearchIDParam struct {
	SearchID string `param:"searchId" validate:"required"`
}

func (p *SearchIDParam) Validate() error {
	return validate.Struct(p)
}

// SaveSearchPayload is the body of POST /api/search/save.
type SaveSearchPayload struct {
	UserID  string         `json:"userId"`
	Query   string         `json:"query"`
	Filters map[string]any `json:"filters"`
	Name    string         `json:"name" validate:"max=100"`
}

func (p *SaveSearchPayload) Validate() error {
	if p.UserID == "" || p.Query == "" {
		return validation.Single("query", "User ID and query are required")
	}
	return validate.Struct(p)
}

// RebuildIndexPayload is the body of POST /api/search/index/rebuild.
type RebuildIndexPayload struct {
	UserID   string   `json:"userId"`
	Sections []string `json:"sections"`
}

func (p *RebuildIndexPayload) Normalize() {
	defaultString(&p.UserID, DefaultUserID)
}

func (p *RebuildIndexPayload) Validate() error {
	return nil
}

// ExportSearchPayload is the body of POST /api/search/export.
type ExportSearchPayload struct {
	UserID  string         `json:"userId"`
	Query   string         `json:"query" validate:"max=200"`
	Filters map[string]any `json:"filters"`
	Format  string         `json:"format" validate:"oneof=json csv xlsx pdf"`
}

func (p *ExportSearchPayload) Normalize() {
	defaultString(&p.UserID, DefaultUserID)
	defaultString(&p.Format, "json")
}

func (p *ExportSearchPayload) Validate() error {
	return validate.Struct(p)
}

// splitCSV accepts both ?sections=a&sections=b and ?sections=a,b.
func splitCSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
