package handler

import (
	"time"

	"github.com/blockitin/blockitin-ai/internal/errs"
	"github.com/blockitin/blockitin-ai/internal/middleware"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/blockitin/blockitin-ai/internal/service"
	"github.com/labstack/echo/v4"
)

// ChatHandler serves /api/chat. Every route runs behind RequireAuth.
type ChatHandler struct {
	Handler
	chat *service.ChatService
}

func NewChatHandler(s *server.Server, chat *service.ChatService) *ChatHandler {
	return &ChatHandler{
		Handler: NewHandler(s),
		chat:    chat,
	}
}

type SessionList struct {
	Sessions []model.SessionSummary `json:"sessions"`
	Count    int                    `json:"count"`
}

type CreatedSession struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

type SessionMessages struct {
	Messages  []*model.Message `json:"messages"`
	SessionID string           `json:"sessionId"`
	Count     int              `json:"count"`
}

type SessionSuggestions struct {
	SessionID   string   `json:"sessionId"`
	Suggestions []string `json:"suggestions"`
}

type ChatHealth struct {
	model.SystemHealth
	Overall   bool   `json:"overall"`
	Timestamp string `json:"timestamp"`
}

func currentUserID(c echo.Context) (string, error) {
	if user := middleware.GetUser(c); user != nil {
		return user.ID, nil
	}
	return "", errs.NewUnauthorizedError("Access token required", true)
}

func (h *ChatHandler) SendMessage(c echo.Context, p *model.SendMessagePayload) (*model.ChatReply, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}

	return h.chat.ProcessMessage(c.Request().Context(), service.MessageInput{
		UserID:       userID,
		SessionID:    p.SessionID,
		Message:      p.Message,
		AcademicData: p.AcademicData,
		UserAgent:    c.Request().UserAgent(),
		IPAddress:    c.RealIP(),
	})
}

func (h *ChatHandler) Sessions(c echo.Context, _ *model.EmptyPayload) (*SessionList, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}

	sessions, err := h.chat.Sessions(c.Request().Context(), userID)
	if err != nil {
		return nil, err
	}
	return &SessionList{Sessions: sessions, Count: len(sessions)}, nil
}

func (h *ChatHandler) CreateSession(c echo.Context, _ *model.EmptyPayload) (*CreatedSession, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}

	id, err := h.chat.CreateSession(c.Request().Context(), userID, c.Request().UserAgent(), c.RealIP())
	if err != nil {
		return nil, err
	}
	return &CreatedSession{SessionID: id, Message: "Chat session created successfully"}, nil
}

func (h *ChatHandler) History(c echo.Context, p *model.SessionHistoryPayload) (*SessionMessages, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}

	messages, err := h.chat.History(c.Request().Context(), userID, p.SessionID, p.Limit)
	if err != nil {
		return nil, err
	}
	return &SessionMessages{Messages: messages, SessionID: p.SessionID, Count: len(messages)}, nil
}

func (h *ChatHandler) EndSession(c echo.Context, p *model.SessionPathPayload) (any, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}
	return nil, h.chat.EndSession(c.Request().Context(), userID, p.SessionID)
}

func (h *ChatHandler) Suggestions(c echo.Context, p *model.SessionPathPayload) (*SessionSuggestions, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return nil, err
	}

	suggestions, err := h.chat.Suggestions(c.Request().Context(), userID, p.SessionID)
	if err != nil {
		return nil, err
	}
	return &SessionSuggestions{SessionID: p.SessionID, Suggestions: suggestions}, nil
}

func (h *ChatHandler) AnalyzeIntent(c echo.Context, p *model.AnalyzeIntentPayload) (model.IntentAnalysis, error) {
	return h.chat.AnalyzeIntent(c.Request().Context(), p.Message), nil
}

func (h *ChatHandler) SystemHealth(c echo.Context, _ *model.EmptyPayload) (*ChatHealth, error) {
	health := h.chat.SystemHealth(c.Request().Context())
	return &ChatHealth{
		SystemHealth: health,
		Overall:      health.Database && health.GoogleSheets && health.AIService,
		Timestamp:    model.Timestamp(time.Now()),
	}, nil
}

func (h *ChatHandler) InitializeSheets(c echo.Context, _ *model.EmptyPayload) (model.SheetsResult, error) {
	return h.chat.InitializeSheets(c.Request().Context()), nil
}
