package handler

import (
	"net/http"

	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/labstack/echo/v4"
)

// DocumentationURL is linked from the API index.
const DocumentationURL = "https://docs.blockitin.ai/api"

// IndexHandler describes the API at GET /.
type IndexHandler struct {
	Handler
}

func NewIndexHandler(s *server.Server) *IndexHandler {
	return &IndexHandler{
		Handler: NewHandler(s),
	}
}

// Index is the body of GET /.
type Index struct {
	Message       string         `json:"message"`
	Version       string         `json:"version"`
	Status        string         `json:"status"`
	Endpoints     IndexEndpoints `json:"endpoints"`
	Documentation string         `json:"documentation"`
}

type IndexEndpoints struct {
	Health    string            `json:"health"`
	Auth      string            `json:"auth"`
	Chat      string            `json:"chat"`
	Chatbot   string            `json:"chatbot"`
	Dashboard string            `json:"dashboard"`
	Sections  map[string]string `json:"sections"`
	Search    map[string]string `json:"search"`
}

var dashboardSections = []string{
	"overview", "credentials", "resume", "health", "wellness", "attendance",
	"publishing", "wallet", "assignments", "map", "results", "analytics",
}

func (h *IndexHandler) Index(c echo.Context) error {
	sections := make(map[string]string, len(dashboardSections))
	for _, s := range dashboardSections {
		sections[s] = "/api/dashboard/" + s
	}

	return c.JSON(http.StatusOK, Index{
		Message: "Blockitin AI Backend - Full Dashboard, Search & Chatbot API",
		Version: Version,
		Status:  "active",
		Endpoints: IndexEndpoints{
			Health:    "/api/health",
			Auth:      "/api/auth",
			Chat:      "/api/chat",
			Chatbot:   "/api/chatbot",
			Dashboard: "/api/dashboard",
			Sections:  sections,
			Search: map[string]string{
				"advanced":    "/api/search/advanced",
				"suggestions": "/api/search/suggestions",
				"filter":      "/api/search/filter",
				"analytics":   "/api/search/analytics",
				"popular":     "/api/search/popular",
				"history":     "/api/search/history/:userId",
				"saved":       "/api/search/saved/:userId",
				"export":      "/api/search/export",
			},
		},
		Documentation: DocumentationURL,
	})
}
