package handler

import (
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/blockitin/blockitin-ai/internal/service"
	"github.com/labstack/echo/v4"
)

type SearchHandler struct {
	Handler
	search *service.SearchService
}

func NewSearchHandler(s *server.Server, search *service.SearchService) *SearchHandler {
	return &SearchHandler{
		Handler: NewHandler(s),
		search:  search,
	}
}

func (h *SearchHandler) Advanced(c echo.Context, q *model.AdvancedSearchQuery) (*service.AdvancedSearchResult, error) {
	return h.search.Advanced(c.Request().Context(), q), nil
}

func (h *SearchHandler) Suggestions(c echo.Context, q *model.SuggestionsQuery) (*service.SuggestionList, error) {
	return h.search.Suggestions(c.Request().Context(), q), nil
}

func (h *SearchHandler) Filter(c echo.Context, p *model.FilterSearchPayload) (*service.FilteredSearchResult, error) {
	return h.search.Filtered(c.Request().Context(), p), nil
}

func (h *SearchHandler) Analytics(c echo.Context, q *model.PeriodQuery) (*service.SearchAnalytics, error) {
	return h.search.Analytics(c.Request().Context(), q), nil
}

func (h *SearchHandler) Popular(c echo.Context, q *model.LimitQuery) (*service.PopularSearches, error) {
	return h.search.Popular(c.Request().Context(), q), nil
}

func (h *SearchHandler) History(c echo.Context, q *model.HistoryQuery) (*service.SearchHistory, error) {
	return h.search.History(c.Request().Context(), q), nil
}

func (h *SearchHandler) ClearHistory(c echo.Context, p *model.UserParam) (*service.ClearedHistory, error) {
	return h.search.ClearHistory(c.Request().Context(), p.UserID), nil
}

func (h *SearchHandler) Save(c echo.Context, p *model.SaveSearchPayload) (*service.SavedSearchResult, error) {
	return h.search.Save(c.Request().Context(), p), nil
}

func (h *SearchHandler) Saved(c echo.Context, p *model.UserParam) (*service.SavedSearchList, error) {
	return h.search.SavedSearches(c.Request().Context(), p.UserID), nil
}

func (h *SearchHandler) DeleteSaved(c echo.Context, p *model.SearchIDParam) (*service.DeletedSearch, error) {
	return h.search.DeleteSaved(c.Request().Context(), p.SearchID)
}

func (h *SearchHandler) RebuildIndex(c echo.Context, p *model.RebuildIndexPayload) (*service.RebuildResult, error) {
	return h.search.RebuildIndex(c.Request().Context(), p), nil
}

func (h *SearchHandler) Export(c echo.Context, p *model.ExportSearchPayload) (*service.SearchExport, error) {
	return h.search.Export(c.Request().Context(), p), nil
}
