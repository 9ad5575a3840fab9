package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blockitin/blockitin-ai/internal/validation"
)

// MessageType tells who authored a chat message.
type MessageType string

const (
	MessageTypeUser   MessageType = "user"
	MessageTypeBot    MessageType = "bot"
	MessageTypeSystem MessageType = "system"
)

// MaxMessageLength is counted in characters, not bytes.
const MaxMessageLength = 1000

// ChatAction asks the client to open a dashboard section.
type ChatAction struct {
	Type    string `json:"type"`
	Section string `json:"section"`
	ItemID  string `json:"itemId,omitempty"`
}

// AIResponse is the assistant's reply to one user message.
type AIResponse struct {
	Content      string      `json:"content"`
	Suggestions  []string    `json:"suggestions"`
	Action       *ChatAction `json:"action,omitempty"`
	SheetsAction bool        `json:"sheetsAction"`
}

// MessageMetadata is attached to bot messages.
type MessageMetadata struct {
	Action         string `json:"action,omitempty"`
	Section        string `json:"section,omitempty"`
	ItemID         string `json:"itemId,omitempty"`
	SheetsSync     bool   `json:"sheetsSync"`
	AIModel        string `json:"aiModel,omitempty"`
	ProcessingTime int64  `json:"processingTime,omitempty"`
}

// Message is one entry of a chat session.
type Message struct {
	ID          string           `json:"id"`
	UserID      string           `json:"-"`
	SessionID   string           `json:"-"`
	Type        MessageType      `json:"type"`
	Content     string           `json:"content"`
	Timestamp   time.Time        `json:"timestamp"`
	Suggestions []string         `json:"suggestions,omitempty"`
	IsError     bool             `json:"isError"`
	IsSuccess   bool             `json:"isSuccess"`
	Metadata    *MessageMetadata `json:"metadata,omitempty"`
}

// HistoryLine renders the message the way it is fed back to the LLM.
func (m *Message) HistoryLine() string {
	return fmt.Sprintf("%s: %s", m.Type, m.Content)
}

// SessionMetadata carries client details and Sheets counters of a session.
type SessionMetadata struct {
	UserAgent          string `json:"userAgent,omitempty"`
	IPAddress          string `json:"ipAddress,omitempty"`
	SessionDuration    int64  `json:"sessionDuration,omitempty"`
	SheetsInteractions int    `json:"sheetsInteractions"`
}

// ChatSession groups the messages of one conversation.
type ChatSession struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Title        string          `json:"title"`
	IsActive     bool            `json:"isActive"`
	MessageCount int             `json:"messageCount"`
	LastActivity time.Time       `json:"lastActivity"`
	CreatedAt    time.Time       `json:"createdAt"`
	Metadata     SessionMetadata `json:"metadata"`
}

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"messageCount"`
	LastActivity time.Time `json:"lastActivity"`
	IsActive     bool      `json:"isActive"`
}

func (s *ChatSession) Summary() SessionSummary {
	return SessionSummary{
		ID:           s.ID,
		Title:        s.Title,
		MessageCount: s.MessageCount,
		LastActivity: s.LastActivity,
		IsActive:     s.IsActive,
	}
}

// AcademicData is the snapshot of student numbers given to the assistant
// and synced to the AcademicData sheet.
type AcademicData struct {
	Credentials   int     `json:"credentials"`
	GPA           float64 `json:"gpa"`
	WellnessScore int     `json:"wellness_score"`
	Assignments   int     `json:"assignments"`
	HealthRecords int     `json:"health_records"`
}

// DefaultAcademicData is used when the client sends no snapshot.
func DefaultAcademicData() AcademicData {
	return AcademicData{
		Credentials:   12,
		GPA:           3.85,
		WellnessScore: 85,
		Assignments:   4,
		HealthRecords: 8,
	}
}

// UserContext is what the assistant knows about the person it answers.
type UserContext struct {
	UserID              string
	UserName            string
	ConversationHistory []string
	AcademicData        *AcademicData
}

// IntentAnalysis classifies a single message.
type IntentAnalysis struct {
	Intent     string   `json:"intent"`
	Entities   []string `json:"entities"`
	Confidence float64  `json:"confidence"`
}

// ChatReply is the data of POST /api/chat/message.
type ChatReply struct {
	SessionID      string        `json:"sessionId"`
	MessageID      string        `json:"messageId"`
	Response       ReplyContent  `json:"response"`
	SheetsResponse *SheetsResult `json:"sheetsResponse,omitempty"`
}

// ReplyContent is the assistant part of a ChatReply.
type ReplyContent struct {
	Content     string      `json:"content"`
	Suggestions []string    `json:"suggestions"`
	Action      *ChatAction `json:"action,omitempty"`
	SheetsSync  bool        `json:"sheetsSync"`
}

// SheetsResult mirrors the {success, message, data, error} result of every
// Sheets call. A failed call is a value, not an error.
type SheetsResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SystemHealth reports the reachability of the chat dependencies.
type SystemHealth struct {
	Database     bool `json:"database"`
	GoogleSheets bool `json:"googleSheets"`
	AIService    bool `json:"aiService"`
}

// SendMessagePayload is the body of POST /api/chat/message.
type SendMessagePayload struct {
	Message      string        `json:"message"`
	SessionID    string        `json:"sessionId"`
	AcademicData *AcademicData `json:"academicData"`
}

func (p *SendMessagePayload) Normalize() {
	p.Message = validation.SanitizeString(p.Message)
	p.SessionID = validation.SanitizeString(p.SessionID)
}

func (p *SendMessagePayload) Validate() error {
	switch {
	case p.Message == "":
		return validation.Single("message", "Message is required and must be a string")
	case utf8.RuneCountInString(p.Message) > MaxMessageLength:
		return validation.Single("message", fmt.Sprintf("Message is too long (max %d characters)", MaxMessageLength))
	case strings.TrimSpace(p.Message) == "":
		return validation.Single("message", "Message cannot be empty")
	}
	return nil
}

func (p *SendMessagePayload) DescribeBindError(field string) string {
	switch field {
	case "message":
		return "Message is required and must be a string"
	case "sessionId":
		return "Session ID must be a string"
	}
	return ""
}

// SessionHistoryPayload binds GET /api/chat/sessions/:sessionId/history.
type SessionHistoryPayload struct {
	SessionID string `param:"sessionId" validate:"required"`
	Limit     int    `query:"limit" validate:"min=0,max=500"`
}

func (p *SessionHistoryPayload) Normalize() {
	defaultInt(&p.Limit, 50)
}

func (p *SessionHistoryPayload) Validate() error {
	return validate.Struct(p)
}

// SessionPathPayload binds routes addressing one session.
type SessionPathPayload struct {
	SessionID string `param:"sessionId" validate:"required"`
}

func (p *SessionPathPayload) Validate() error {
	return validate.Struct(p)
}

// AnalyzeIntentPayload is the body of POST /api/chat/analyze-intent.
type AnalyzeIntentPayload struct {
	Message string `json:"message"`
}

func (p *AnalyzeIntentPayload) Normalize() {
	p.Message = validation.SanitizeString(p.Message)
}

func (p *AnalyzeIntentPayload) Validate() error {
	if p.Message == "" {
		return validation.Single("message", "Message is required")
	}
	return nil
}

// ChatbotMessagePayload is the body of POST /api/chatbot/chat.
type ChatbotMessagePayload struct {
	Message   string         `json:"message" validate:"required,min=1,max=1000"`
	UserID    string         `json:"userId"`
	SessionID string         `json:"sessionId"`
	Context   map[string]any `json:"context"`
}

func (p *ChatbotMessagePayload) Normalize() {
	p.Message = validation.SanitizeString(p.Message)
	defaultString(&p.UserID, "anonymous")
	defaultString(&p.SessionID, fmt.Sprintf("session_%d", time.Now().UnixMilli()))
}

func (p *ChatbotMessagePayload) Validate() error {
	return validate.Struct(p)
}

// AcademicData pulls an optional snapshot out of the free-form context.
func (p *ChatbotMessagePayload) AcademicData() *AcademicData {
	raw, ok := p.Context["academicData"].(map[string]any)
	if !ok {
		return nil
	}

	data := DefaultAcademicData()
	if v, ok := raw["credentials"].(float64); ok {
		data.Credentials = int(v)
	}
	if v, ok := raw["gpa"].(float64); ok {
		data.GPA = v
	}
	if v, ok := raw["wellness_score"].(float64); ok {
		data.WellnessScore = int(v)
	}
	if v, ok := raw["assignments"].(float64); ok {
		data.Assignments = int(v)
	}
	if v, ok := raw["health_records"].(float64); ok {
		data.HealthRecords = int(v)
	}
	return &data
}

// SheetsPayload is the body of POST /api/chatbot/sheets.
type SheetsPayload struct {
	Action string         `json:"action" validate:"required,min=1,max=100"`
	Data   map[string]any `json:"data" validate:"required"`
	UserID string         `json:"userId"`
}

func (p *SheetsPayload) Normalize() {
	defaultString(&p.UserID, "anonymous")
}

func (p *SheetsPayload) Validate() error {
	return validate.Struct(p)
}

// ChatbotHistory is the data of GET /api/chatbot/history/:sessionId.
type ChatbotHistory struct {
	SessionID     string     `json:"sessionId"`
	Messages      []*Message `json:"messages"`
	TotalMessages int        `json:"totalMessages"`
}
