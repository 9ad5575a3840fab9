package service

import (
	"context"
	"errors"
	"fmt"
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

// SheetsGateway is the part of the Sheets client used by the services.
type SheetsGateway interface {
	Configured() bool
	Send(ctx context.Context, req sheets.Request) model.SheetsResult
	TestConnection(ctx context.Context) model.SheetsResult
	Healthy(ctx context.Context) bool
	LogChatInteraction(ctx context.Context, in sheets.Interaction) model.SheetsResult
	LogNavigation(ctx context.Context, userID, section, action, query string) model.SheetsResult
	SyncAcademicData(ctx context.Context, userID string, data model.AcademicData) model.SheetsResult
	TrackUserAnalytics(ctx context.Context, userID string, a sheets.UserAnalytics) model.SheetsResult
	GenerateAnalyticsReport(ctx context.Context, userID string) model.SheetsResult
	CreateWorksheetStructure(ctx context.Context) model.SheetsResult
}

const (
	historyWindow    = 5
	guestName        = "Student"
	processingFailed = "Sorry, I encountered an error processing your request. Please try again."
)

func errUserNotFound() error {
	return errs.NewNotFoundError("User not found", true, nil)
}

func errSessionNotFound() error {
	return errs.NewNotFoundError("Chat session not found", true, nil)
}

// MessageInput is one user turn.
type MessageInput struct {
	UserID       string
	SessionID    string
	Message      string
	AcademicData *model.AcademicData
	UserAgent    string
	IPAddress    string

	// AllowGuest answers users that have no account, as the API-key
	// chatbot route does.
	AllowGuest bool
}

// ChatService runs conversations: it stores turns, asks the assistant and
// routes Sheets actions.
type ChatService struct {
	repos     *repository.Repositories
	assistant *AssistantService
	sheets    SheetsGateway
	logger    *zerolog.Logger
	now       func() time.Time
}

func NewChatService(repos *repository.Repositories, assistant *AssistantService, sheets SheetsGateway, logger *zerolog.Logger) *ChatService {
	return &ChatService{
		repos:     repos,
		assistant: assistant,
		sheets:    sheets,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateSession opens a session for userID and returns its id.
func (s *ChatService) CreateSession(ctx context.Context, userID, userAgent, ip string) (string, error) {
	session, err := s.newSession(ctx, uuid.NewString(), userID, userAgent, ip)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

func (s *ChatService) newSession(ctx context.Context, id, userID, userAgent, ip string) (*model.ChatSession, error) {
	now := s.now().UTC()
	session := &model.ChatSession{
		ID:           id,
		UserID:       userID,
		Title:        "Chat Session - " + now.Format("1/2/2006"),
		IsActive:     true,
		LastActivity: now,
		CreatedAt:    now,
		Metadata: model.SessionMetadata{
			UserAgent: userAgent,
			IPAddress: ip,
		},
	}
	if err := s.repos.Chat.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	return session, nil
}

// ownedSession loads a session that belongs to userID.
func (s *ChatService) ownedSession(ctx context.Context, userID, sessionID string) (*model.ChatSession, error) {
	session, err := s.repos.Chat.GetSession(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errSessionNotFound()
	}
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, errSessionNotFound()
	}
	return session, nil
}

func (s *ChatService) userName(in MessageInput) (string, error) {
	user, err := s.repos.Users.GetByID(in.UserID)
	if err == nil {
		return user.Name, nil
	}
	if errors.Is(err, repository.ErrNotFound) && in.AllowGuest {
		return guestName, nil
	}
	return "", errUserNotFound()
}

// ProcessMessage stores the user turn, generates the reply and stores it.
// A missing session is created under the requested id, or a new one when
// none is given. On failure an error message is stored in the session.
func (s *ChatService) ProcessMessage(ctx context.Context, in MessageInput) (*model.ChatReply, error) {
	start := s.now()

	name, err := s.userName(in)
	if err != nil {
		return nil, err
	}

	session, err := s.ensureSession(ctx, in)
	if err != nil {
		return nil, err
	}

	reply, err := s.exchange(ctx, in, name, session, start)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", session.ID).Msg("failed to process message")
		s.storeFailure(ctx, in.UserID, session.ID)
		return nil, errs.NewInternalError("Failed to process message")
	}
	return reply, nil
}

func (s *ChatService) ensureSession(ctx context.Context, in MessageInput) (*model.ChatSession, error) {
	if in.SessionID == "" {
		return s.newSession(ctx, uuid.NewString(), in.UserID, in.UserAgent, in.IPAddress)
	}

	session, err := s.ownedSession(ctx, in.UserID, in.SessionID)
	if err == nil {
		return session, nil
	}

	// an id that exists under another user stays unavailable
	if _, getErr := s.repos.Chat.GetSession(ctx, in.SessionID); getErr == nil {
		return nil, errSessionNotFound()
	}
	return s.newSession(ctx, in.SessionID, in.UserID, in.UserAgent, in.IPAddress)
}

func (s *ChatService) exchange(ctx context.Context, in MessageInput, name string, session *model.ChatSession, start time.Time) (*model.ChatReply, error) {
	recent, err := s.repos.Chat.RecentMessages(ctx, in.UserID, session.ID, historyWindow)
	if err != nil {
		return nil, err
	}
	history := make([]string, 0, len(recent))
	for _, m := range recent {
		history = append(history, m.HistoryLine())
	}

	academic := model.DefaultAcademicData()
	if in.AcademicData != nil {
		academic = *in.AcademicData
	}

	if err := s.repos.Chat.AddMessage(ctx, &model.Message{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		SessionID: session.ID,
		Type:      model.MessageTypeUser,
		Content:   in.Message,
		Timestamp: s.now().UTC(),
	}); err != nil {
		return nil, err
	}

	resp := s.assistant.GenerateResponse(ctx, in.Message, model.UserContext{
		UserID:              in.UserID,
		UserName:            name,
		ConversationHistory: history,
		AcademicData:        &academic,
	})

	var sheetsResult *model.SheetsResult
	if resp.SheetsAction {
		result := s.routeSheetsAction(ctx, in.Message, in.UserID, name, academic, resp)
		sheetsResult = &result
	}

	meta := &model.MessageMetadata{
		SheetsSync:     resp.SheetsAction,
		AIModel:        s.assistant.ModelName(),
		ProcessingTime: s.now().Sub(start).Milliseconds(),
	}
	if resp.Action != nil {
		meta.Action = resp.Action.Type
		meta.Section = resp.Action.Section
		meta.ItemID = resp.Action.ItemID
	}

	bot := &model.Message{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		SessionID:   session.ID,
		Type:        model.MessageTypeBot,
		Content:     resp.Content,
		Timestamp:   s.now().UTC(),
		Suggestions: resp.Suggestions,
		IsSuccess:   resp.SheetsAction,
		Metadata:    meta,
	}
	if err := s.repos.Chat.AddMessage(ctx, bot); err != nil {
		return nil, err
	}

	// one exchange stores two messages
	if err := s.repos.Chat.RecordExchange(ctx, session.ID, 2, sheetsResult != nil, s.now().UTC()); err != nil {
		return nil, err
	}

	return &model.ChatReply{
		SessionID: session.ID,
		MessageID: bot.ID,
		Response: model.ReplyContent{
			Content:     resp.Content,
			Suggestions: resp.Suggestions,
			Action:      resp.Action,
			SheetsSync:  resp.SheetsAction,
		},
		SheetsResponse: sheetsResult,
	}, nil
}

// routeSheetsAction picks the sheet a reply with sheetsAction is logged to.
func (s *ChatService) routeSheetsAction(ctx context.Context, message, userID, name string, academic model.AcademicData, resp model.AIResponse) model.SheetsResult {
	m := strings.ToLower(message)

	switch {
	case containsAny(m, "save", "sheet", "sync"):
		return s.sheets.LogChatInteraction(ctx, sheets.Interaction{
			Action: "chat_interaction",
			Data: map[string]any{
				"message":  message,
				"response": resp.Content,
				"action":   resp.Action,
			},
			User:   name,
			Source: sheets.SourceChatbot,
		})

	case resp.Action != nil && resp.Action.Type == "navigate":
		return s.sheets.LogNavigation(ctx, userID, resp.Action.Section, "user_navigation", message)

	case containsAny(m, "backup"):
		return s.sheets.SyncAcademicData(ctx, userID, academic)

	case containsAny(m, "analytics", "report"):
		return s.sheets.GenerateAnalyticsReport(ctx, userID)
	}

	return s.sheets.LogChatInteraction(ctx, sheets.Interaction{
		Action: "general_interaction",
		Data:   map[string]any{"message": message},
		User:   name,
		Source: sheets.SourceChatbot,
	})
}

func (s *ChatService) storeFailure(ctx context.Context, userID, sessionID string) {
	err := s.repos.Chat.AddMessage(ctx, &model.Message{
		ID:        uuid.NewString(),
		UserID:    userID,
		SessionID: sessionID,
		Type:      model.MessageTypeSystem,
		Content:   processingFailed,
		Timestamp: s.now().UTC(),
		IsError:   true,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to store error message")
	}
}

// History returns up to limit messages of a session, oldest first.
func (s *ChatService) History(ctx context.Context, userID, sessionID string, limit int) ([]*model.Message, error) {
	return s.repos.Chat.ListMessages(ctx, userID, sessionID, limit)
}

// SessionHistory returns a session's messages without an owner check. An
// unknown session has no messages.
func (s *ChatService) SessionHistory(ctx context.Context, sessionID string, limit int) ([]*model.Message, error) {
	session, err := s.repos.Chat.GetSession(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return []*model.Message{}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.repos.Chat.ListMessages(ctx, session.UserID, sessionID, limit)
}

// Sessions lists the user's most recent sessions.
func (s *ChatService) Sessions(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	sessions, err := s.repos.Chat.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, session.Summary())
	}
	return out, nil
}

// EndSession deactivates a session, records its duration and pushes a
// usage snapshot to the UserAnalytics sheet.
func (s *ChatService) EndSession(ctx context.Context, userID, sessionID string) error {
	session, err := s.ownedSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	session.IsActive = false
	session.Metadata.SessionDuration = s.now().Sub(session.CreatedAt).Milliseconds()
	if err := s.repos.Chat.UpdateSession(ctx, session); err != nil {
		return err
	}

	if s.sheets.Configured() {
		snapshot, err := s.userAnalytics(ctx, userID)
		if err == nil {
			if res := s.sheets.TrackUserAnalytics(ctx, userID, snapshot); !res.Success {
				s.logger.Warn().Str("error", res.Error).Msg("failed to track user analytics")
			}
		}
	}
	return nil
}

func (s *ChatService) userAnalytics(ctx context.Context, userID string) (sheets.UserAnalytics, error) {
	sessions, err := s.repos.Chat.ListSessions(ctx, userID)
	if err != nil {
		return sheets.UserAnalytics{}, err
	}
	messages, err := s.repos.Chat.AllMessages(ctx)
	if err != nil {
		return sheets.UserAnalytics{}, err
	}

	snapshot := sheets.UserAnalytics{SessionsCount: len(sessions)}
	for _, session := range sessions {
		snapshot.TotalMessages += session.MessageCount
		snapshot.SheetsInteractions += session.Metadata.SheetsInteractions
	}

	var own []*model.Message
	for _, m := range messages {
		if m.UserID == userID {
			own = append(own, m)
		}
	}
	snapshot.FavoriteFeatures = topSections(own, 3)
	return snapshot, nil
}

// AnalyzeIntent classifies message.
func (s *ChatService) AnalyzeIntent(ctx context.Context, message string) model.IntentAnalysis {
	return s.assistant.AnalyzeIntent(ctx, message)
}

// Suggestions proposes follow-ups for a session from its recent turns.
func (s *ChatService) Suggestions(ctx context.Context, userID, sessionID string) ([]string, error) {
	if _, err := s.ownedSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}
	recent, err := s.repos.Chat.RecentMessages(ctx, userID, sessionID, historyWindow)
	if err != nil {
		return nil, err
	}

	history := make([]string, 0, len(recent))
	for _, m := range recent {
		history = append(history, m.HistoryLine())
	}
	academic := model.DefaultAcademicData()
	return s.assistant.ContextualSuggestions(ctx, history, &academic), nil
}

// SystemHealth checks the chat store, Sheets and the assistant.
func (s *ChatService) SystemHealth(ctx context.Context) model.SystemHealth {
	return model.SystemHealth{
		Database:     s.repos.Chat.Ping(ctx) == nil,
		GoogleSheets: s.sheets.Healthy(ctx),
		AIService:    s.assistant.Ping(ctx) == nil,
	}
}

// InitializeSheets creates the worksheets with their header rows.
func (s *ChatService) InitializeSheets(ctx context.Context) model.SheetsResult {
	return s.sheets.CreateWorksheetStructure(ctx)
}

// ChatAnalytics aggregates every stored conversation.
type ChatAnalytics struct {
	TotalSessions       int            `json:"totalSessions"`
	ActiveSessions      int            `json:"activeSessions"`
	TotalMessages       int            `json:"totalMessages"`
	UserMessages        int            `json:"userMessages"`
	BotMessages         int            `json:"botMessages"`
	ErrorMessages       int            `json:"errorMessages"`
	SheetsInteractions  int            `json:"sheetsInteractions"`
	AverageSessionTurns float64        `json:"averageMessagesPerSession"`
	SectionUsage        map[string]int `json:"sectionUsage"`
	TopSections         []string       `json:"topSections"`
	AIModel             string         `json:"aiModel"`
}

// Analytics totals sessions and messages across all users.
func (s *ChatService) Analytics(ctx context.Context) (*ChatAnalytics, error) {
	sessions, err := s.repos.Chat.AllSessions(ctx)
	if err != nil {
		return nil, err
	}
	messages, err := s.repos.Chat.AllMessages(ctx)
	if err != nil {
		return nil, err
	}

	out := &ChatAnalytics{
		TotalSessions: len(sessions),
		TotalMessages: len(messages),
		SectionUsage:  sectionUsage(messages),
		TopSections:   topSections(messages, 3),
		AIModel:       s.assistant.ModelName(),
	}
	for _, session := range sessions {
		if session.IsActive {
			out.ActiveSessions++
		}
		out.SheetsInteractions += session.Metadata.SheetsInteractions
	}
	for _, m := range messages {
		switch {
		case m.IsError:
			out.ErrorMessages++
		case m.Type == model.MessageTypeUser:
			out.UserMessages++
		case m.Type == model.MessageTypeBot:
			out.BotMessages++
		}
	}
	if len(sessions) > 0 {
		out.AverageSessionTurns = float64(len(messages)) / float64(len(sessions))
	}
	return out, nil
}

func sectionUsage(messages []*model.Message) map[string]int {
	usage := make(map[string]int)
	for _, m := range messages {
		if m.Metadata != nil && m.Metadata.Section != "" {
			usage[m.Metadata.Section]++
		}
	}
	return usage
}

// topSections orders sections by use, ties alphabetically.
func topSections(messages []*model.Message, n int) []string {
	usage := sectionUsage(messages)
	out := make([]string, 0, len(usage))
	for section := range usage {
		out = append(out, section)
	}
	sort.Slice(out, func(i, j int) bool {
		if usage[out[i]] != usage[out[j]] {
			return usage[out[i]] > usage[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
