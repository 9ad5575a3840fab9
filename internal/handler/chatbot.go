package handler

import (
	"context"
	"time"

	"github.com/blockitin/blockitin-ai/internal/lib/sheets"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/blockitin/blockitin-ai/internal/service"
	"github.com/labstack/echo/v4"
)

const chatbotSource = "Blockitin AI Chatbot Backend"

// SheetsForwarder is the part of the Sheets client the chatbot exposes.
type SheetsForwarder interface {
	Send(ctx context.Context, req sheets.Request) model.SheetsResult
	TestConnection(ctx context.Context) model.SheetsResult
}

// ChatbotHandler serves /api/chatbot for API-key clients. Callers without
// an account chat as guests.
type ChatbotHandler struct {
	Handler
	chat   *service.ChatService
	sheets SheetsForwarder
}

func NewChatbotHandler(s *server.Server, chat *service.ChatService, sheets SheetsForwarder) *ChatbotHandler {
	return &ChatbotHandler{
		Handler: NewHandler(s),
		chat:    chat,
		sheets:  sheets,
	}
}

func (h *ChatbotHandler) Chat(c echo.Context, p *model.ChatbotMessagePayload) (*model.ChatReply, error) {
	return h.chat.ProcessMessage(c.Request().Context(), service.MessageInput{
		UserID:       p.UserID,
		SessionID:    p.SessionID,
		Message:      p.Message,
		AcademicData: p.AcademicData(),
		UserAgent:    c.Request().UserAgent(),
		IPAddress:    c.RealIP(),
		AllowGuest:   true,
	})
}

func (h *ChatbotHandler) Sheets(c echo.Context, p *model.SheetsPayload) (model.SheetsResult, error) {
	return h.sheets.Send(c.Request().Context(), sheets.Request{
		Action:    p.Action,
		Data:      p.Data,
		UserID:    p.UserID,
		Timestamp: model.Timestamp(time.Now()),
		Source:    chatbotSource,
	}), nil
}

func (h *ChatbotHandler) History(c echo.Context, p *model.SessionHistoryPayload) (*model.ChatbotHistory, error) {
	messages, err := h.chat.SessionHistory(c.Request().Context(), p.SessionID, p.Limit)
	if err != nil {
		return nil, err
	}
	return &model.ChatbotHistory{
		SessionID:     p.SessionID,
		Messages:      messages,
		TotalMessages: len(messages),
	}, nil
}

func (h *ChatbotHandler) Analytics(c echo.Context, _ *model.EmptyPayload) (*service.ChatAnalytics, error) {
	return h.chat.Analytics(c.Request().Context())
}

func (h *ChatbotHandler) TestSheets(c echo.Context, _ *model.EmptyPayload) (model.SheetsResult, error) {
	return h.sheets.TestConnection(c.Request().Context()), nil
}
