package handler

import (
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/blockitin/blockitin-ai/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Index     *IndexHandler
	Health    *HealthHandler
	Auth      *AuthHandler
	Chat      *ChatHandler
	Chatbot   *ChatbotHandler
	Dashboard *DashboardHandler
	Search    *SearchHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Index:     NewIndexHandler(s),
		Health:    NewHealthHandler(s),
		Auth:      NewAuthHandler(s, services.Auth),
		Chat:      NewChatHandler(s, services.Chat),
		Chatbot:   NewChatbotHandler(s, services.Chat, services.Sheets),
		Dashboard: NewDashboardHandler(s, services.Dashboard),
		Search:    NewSearchHandler(s, services.Search),
	}
}
