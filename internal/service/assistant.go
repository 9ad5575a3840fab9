package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/blockitin/blockitin-ai/internal/lib/llm"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/rs/zerolog"
)

// Completer is the LLM surface the assistant needs.
type Completer interface {
	Enabled() bool
	Model() string
	Complete(ctx context.Context, messages []llm.Message, maxTokens int, temperature float64) (string, error)
	Ping(ctx context.Context) error
}

const (
	fallbackModel   = "fallback"
	emptyCompletion = "I apologize, but I couldn't generate a response at this time."
)

// AssistantService produces chatbot replies. It asks the LLM when one is
// configured and answers from keyword rules otherwise or on any LLM error.
type AssistantService struct {
	llm         Completer
	maxTokens   int
	temperature float64
	logger      *zerolog.Logger
}

func NewAssistantService(c Completer, maxTokens int, temperature float64, logger *zerolog.Logger) *AssistantService {
	return &AssistantService{
		llm:         c,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Enabled reports whether replies come from the LLM.
func (a *AssistantService) Enabled() bool {
	return a.llm != nil && a.llm.Enabled()
}

// ModelName is recorded on bot messages.
func (a *AssistantService) ModelName() string {
	if !a.Enabled() {
		return fallbackModel
	}
	return a.llm.Model()
}

// Ping checks the LLM endpoint. The keyword fallback is always available,
// so an unconfigured LLM is not an error.
func (a *AssistantService) Ping(ctx context.Context) error {
	if !a.Enabled() {
		return nil
	}
	return a.llm.Ping(ctx)
}

// GenerateResponse answers message for the user described by uc.
func (a *AssistantService) GenerateResponse(ctx context.Context, message string, uc model.UserContext) model.AIResponse {
	if !a.Enabled() {
		return FallbackResponse(message)
	}

	reply, err := a.llm.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt(uc)},
		{Role: llm.RoleUser, Content: userPrompt(message, uc)},
	}, a.maxTokens, a.temperature)
	if err != nil {
		a.logger.Warn().Err(err).Msg("LLM reply failed, using keyword fallback")
		return FallbackResponse(message)
	}
	if reply == "" {
		reply = emptyCompletion
	}

	return parseAIResponse(reply, message)
}

func systemPrompt(uc model.UserContext) string {
	academic := "Not available"
	if uc.AcademicData != nil {
		if raw, err := json.Marshal(uc.AcademicData); err == nil {
			academic = string(raw)
		}
	}

	return fmt.Sprintf(`You are Blockitin AI Assistant, a helpful academic companion connected to Google Sheets data integration.

Your role:
- Help students manage their academic identity and credentials
- Assist with wellness tracking and health passport management
- Support assignment tracking and deadline management
- Facilitate Google Sheets data synchronization
- Provide navigation assistance through the Blockitin platform

User Context:
- Name: %s
- User ID: %s
- Academic Data: %s

Response Guidelines:
1. Be friendly, supportive, and academically focused
2. Always mention Google Sheets integration when relevant
3. Provide actionable suggestions in a "suggestions" array
4. Use emojis appropriately (📚 📊 🎓 💪 🏥 etc.)
5. If navigation is needed, specify the action type and section
6. Keep responses concise but informative
7. Always offer follow-up actions

Format your response as a JSON object with these fields:
{
  "content": "Your main response text",
  "suggestions": ["suggestion 1", "suggestion 2", "suggestion 3"],
  "action": {
    "type": "navigate",
    "section": "section_name"
  },
  "sheetsAction": true/false
}

Only include the "action" field if navigation is actually needed.`, uc.UserName, uc.UserID, academic)
}

func userPrompt(message string, uc model.UserContext) string {
	prompt := fmt.Sprintf("User message: %q", message)
	if len(uc.ConversationHistory) > 0 {
		prompt += "\n\nRecent conversation history:\n" + strings.Join(uc.ConversationHistory, "\n")
	}
	return prompt
}

// stripFence removes a ```json ... ``` wrapper some models add.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseAIResponse(reply, message string) model.AIResponse {
	var parsed model.AIResponse
	if err := json.Unmarshal([]byte(stripFence(reply)), &parsed); err != nil {
		return model.AIResponse{
			Content:     reply,
			Suggestions: DefaultSuggestions(message),
		}
	}

	if parsed.Content == "" {
		parsed.Content = reply
	}
	if len(parsed.Suggestions) == 0 {
		parsed.Suggestions = DefaultSuggestions(message)
	}
	if parsed.Action != nil && parsed.Action.Section == "" {
		parsed.Action = nil
	}
	return parsed
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// DefaultSuggestions picks follow-up prompts from keywords in message.
func DefaultSuggestions(message string) []string {
	m := strings.ToLower(message)
	switch {
	case containsAny(m, "credential", "nft"):
		return []string{"View NFT credentials", "Mint new credential", "Save credentials data"}
	case containsAny(m, "health", "wellness"):
		return []string{"Check wellness score", "Add health record", "Export health data"}
	case containsAny(m, "assignment", "homework"):
		return []string{"View assignments", "Add new assignment", "Set deadline reminder"}
	case containsAny(m, "sheet", "sync", "save"):
		return []string{"Sync all data", "Test connection", "View saved data"}
	}
	return []string{"Show my credentials", "Save data to Sheets", "Check wellness score", "View assignments"}
}

func navigate(section string) *model.ChatAction {
	return &model.ChatAction{Type: "navigate", Section: section}
}

// FallbackResponse answers without the LLM. The first matching keyword
// group wins.
func FallbackResponse(message string) model.AIResponse {
	m := strings.ToLower(message)
	switch {
	case containsAny(m, "credential", "nft", "degree"):
		return model.AIResponse{
			Content:      "I'll help you with your NFT credentials! 🎓 You can view, manage, and mint new academic credentials. Your credential data can also be automatically synced to Google Sheets for backup and analytics.",
			Suggestions:  []string{"View NFT credentials", "Mint new credential", "Save to Google Sheets"},
			Action:       navigate("credentials"),
			SheetsAction: true,
		}

	case containsAny(m, "health", "wellness", "medical"):
		return model.AIResponse{
			Content:      "Let me help you with your Health Passport! 🏥 You can track your wellness score, manage health records, and keep everything synced with Google Sheets for secure access.",
			Suggestions:  []string{"Check wellness score", "Add health record", "Sync health data"},
			Action:       navigate("health"),
			SheetsAction: true,
		}

	case containsAny(m, "assignment", "homework", "project"):
		return model.AIResponse{
			Content:      "I'll show you your assignment tracker! 📚 You can manage deadlines, track progress, and automatically backup your assignment data to Google Sheets.",
			Suggestions:  []string{"View assignments", "Add new assignment", "Save progress to Sheets"},
			Action:       navigate("assignments"),
			SheetsAction: true,
		}

	case containsAny(m, "sheet", "sync", "save"):
		return model.AIResponse{
			Content:      "Perfect! I'll help you with Google Sheets integration. 📊 You can sync all your academic data, create backups, and generate analytics reports directly in your spreadsheet.",
			Suggestions:  []string{"Sync all data", "Test connection", "Generate report"},
			SheetsAction: true,
		}

	case containsAny(m, "hello", "hi", "hey"):
		return model.AIResponse{
			Content:     "Hello! 👋 I'm your Blockitin AI assistant with Google Sheets integration. I can help you manage your academic credentials, track wellness, organize assignments, and sync everything to your spreadsheet. What would you like to do today?",
			Suggestions: []string{"Show my credentials", "Sync data to Sheets", "Check wellness score", "View assignments"},
		}
	}

	return model.AIResponse{
		Content:     "I'd be happy to help you with that! I can assist you with managing your academic credentials, tracking wellness, organizing assignments, and syncing everything to Google Sheets. Could you be more specific about what you're looking for?",
		Suggestions: []string{"Show my credentials", "Save data to Sheets", "Check wellness score", "View assignments"},
	}
}

var generalIntent = model.IntentAnalysis{Intent: "general", Entities: []string{}, Confidence: 0.5}

// intentRules are checked in order; keywords match whole words.
var intentRules = []struct {
	intent   string
	keywords []string
}{
	{"sheets_sync", []string{"sheet", "sheets", "sync", "backup", "save", "export"}},
	{"analytics", []string{"analytics", "report", "stats", "statistics", "insights"}},
	{"credentials", []string{"credential", "credentials", "nft", "degree", "certificate", "diploma"}},
	{"health", []string{"health", "wellness", "medical", "vaccination", "checkup"}},
	{"assignments", []string{"assignment", "assignments", "homework", "project", "deadline"}},
	{"navigation", []string{"navigate", "open", "go", "where", "map", "directions"}},
	{"help", []string{"help", "how", "what", "can"}},
	{"greeting", []string{"hello", "hi", "hey", "morning", "evening"}},
}

// ClassifyIntent is the offline intent classifier.
func ClassifyIntent(message string) model.IntentAnalysis {
	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_')
	})
	present := make(map[string]bool, len(words))
	for _, w := range words {
		present[w] = true
	}

	for _, rule := range intentRules {
		var entities []string
		for _, k := range rule.keywords {
			if present[k] {
				entities = append(entities, k)
			}
		}
		if len(entities) > 0 {
			return model.IntentAnalysis{Intent: rule.intent, Entities: entities, Confidence: 0.7}
		}
	}
	return generalIntent
}

// AnalyzeIntent asks the LLM to classify message, falling back to
// ClassifyIntent.
func (a *AssistantService) AnalyzeIntent(ctx context.Context, message string) model.IntentAnalysis {
	if !a.Enabled() {
		return ClassifyIntent(message)
	}

	prompt := fmt.Sprintf(`Analyze this user message and extract the intent and entities:

Message: %q

Respond with JSON format:
{
  "intent": "main_intent",
  "entities": ["entity1", "entity2"],
  "confidence": 0.95
}

Possible intents: greeting, credentials, health, assignments, navigation, sheets_sync, analytics, help`, message)

	reply, err := a.llm.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, 150, 0.1)
	if err != nil {
		a.logger.Warn().Err(err).Msg("intent analysis failed, using keyword classifier")
		return ClassifyIntent(message)
	}

	var out model.IntentAnalysis
	if err := json.Unmarshal([]byte(stripFence(reply)), &out); err != nil || out.Intent == "" {
		return generalIntent
	}
	if out.Entities == nil {
		out.Entities = []string{}
	}
	return out
}

// ContextualSuggestions proposes follow-ups from the conversation so far.
func (a *AssistantService) ContextualSuggestions(ctx context.Context, history []string, academic *model.AcademicData) []string {
	last := ""
	if len(history) > 0 {
		last = history[len(history)-1]
	}
	if !a.Enabled() {
		return DefaultSuggestions(last)
	}

	if len(history) > 5 {
		history = history[len(history)-5:]
	}
	data := "Not available"
	if academic != nil {
		if raw, err := json.Marshal(academic); err == nil {
			data = string(raw)
		}
	}

	prompt := fmt.Sprintf(`Based on this conversation history and academic data, suggest 3-4 relevant follow-up actions:

Conversation: %s
Academic Data: %s

Respond with only a JSON array of strings: ["suggestion1", "suggestion2", "suggestion3"]`, strings.Join(history, "\n"), data)

	reply, err := a.llm.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, 100, 0.7)
	if err != nil {
		return DefaultSuggestions(last)
	}

	var out []string
	if err := json.Unmarshal([]byte(stripFence(reply)), &out); err != nil || len(out) == 0 {
		return DefaultSuggestions(last)
	}
	return out
}
