package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChat(t *testing.T) (*ChatService, *repository.Repositories, *fakeSheets) {
	t.Helper()
	repos := repository.NewMemoryRepositories()
	sheets := &fakeSheets{configured: true, healthy: true}
	assistant := NewAssistantService(&fakeCompleter{}, 500, 0.7, &nop)
	return NewChatService(repos, assistant, sheets, &nop), repos, sheets
}

func TestProcessMessageCreatesSession(t *testing.T) {
	c, repos, sheets := newChat(t)
	ctx := context.Background()

	reply, err := c.ProcessMessage(ctx, MessageInput{UserID: model.DefaultUserID, Message: "Show my credentials"})
	require.NoError(t, err)

	assert.NotEmpty(t, reply.SessionID)
	assert.NotEmpty(t, reply.MessageID)
	assert.True(t, reply.Response.SheetsSync)
	require.NotNil(t, reply.Response.Action)
	assert.Equal(t, "credentials", reply.Response.Action.Section)
	require.NotNil(t, reply.SheetsResponse)
	assert.Equal(t, []string{"navigation:credentials"}, sheets.calls)

	session, err := repos.Chat.GetSession(ctx, reply.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.MessageCount)
	assert.Equal(t, 1, session.Metadata.SheetsInteractions)

	history, err := c.History(ctx, model.DefaultUserID, reply.SessionID, 50)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.MessageTypeUser, history[0].Type)
	assert.Equal(t, model.MessageTypeBot, history[1].Type)
	require.NotNil(t, history[1].Metadata)
	assert.Equal(t, fallbackModel, history[1].Metadata.AIModel)
	assert.Equal(t, "credentials", history[1].Metadata.Section)
}

func TestProcessMessageContinuesSession(t *testing.T) {
	c, repos, _ := newChat(t)
	ctx := context.Background()

	first, err := c.ProcessMessage(ctx, MessageInput{UserID: model.DefaultUserID, Message: "hello"})
	require.NoError(t, err)
	second, err := c.ProcessMessage(ctx, MessageInput{UserID: model.DefaultUserID, SessionID: first.SessionID, Message: "tell me more"})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)

	session, err := repos.Chat.GetSession(ctx, first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 4, session.MessageCount)
	assert.Zero(t, session.Metadata.SheetsInteractions)
}

func TestProcessMessageAdoptsRequestedSessionID(t *testing.T) {
	c, repos, _ := newChat(t)
	ctx := context.Background()

	reply, err := c.ProcessMessage(ctx, MessageInput{UserID: model.DefaultUserID, SessionID: "client-session", Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "client-session", reply.SessionID)

	session, err := repos.Chat.GetSession(ctx, "client-session")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultUserID, session.UserID)
}

func TestProcessMessageForeignSession(t *testing.T) {
	c, repos, _ := newChat(t)
	ctx := context.Background()
	_, err := repos.Users.Create(model.User{ID: "intruder", Name: "Eve", Email: "eve@example.com"})
	require.NoError(t, err)

	reply, err := c.ProcessMessage(ctx, MessageInput{UserID: model.DefaultUserID, Message: "hello"})
	require.NoError(t, err)

	_, err = c.ProcessMessage(ctx, MessageInput{UserID: "intruder", SessionID: reply.SessionID, Message: "hello"})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))
}

func TestProcessMessageUnknownUser(t *testing.T) {
	c, _, _ := newChat(t)
	ctx := context.Background()

	_, err := c.ProcessMessage(ctx, MessageInput{UserID: "ghost", Message: "hello"})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httpStatus(t, err))

	reply, err := c.ProcessMessage(ctx, MessageInput{UserID: "ghost", Message: "hello", AllowGuest: true})
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Response.Content)
}

func TestSheetsRouting(t *testing.T) {
	tests := []struct {
		message string
		want    []string
	}{
		{"save this to my sheet", []string{"chat_interaction"}},
		{"my homework", []string{"navigation:assignments"}},
		{"hello", nil},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			c, _, sheets := newChat(t)
			_, err := c.ProcessMessage(context.Background(), MessageInput{UserID: model.DefaultUserID, Message: tt.message})
			require.NoError(t, err)
			assert.Equal(t, tt.want, sheets.calls)
		})
	}
}

func TestSessionsAndEndSession(t *testing.T) {
	c, repos, sheets := newChat(t)
	ctx := context.Background()

	id, err := c.CreateSession(ctx, model.DefaultUserID, "test-agent", "127.0.0.1")
	require.NoError(t, err)

	sessions, err := c.Sessions(ctx, model.DefaultUserID)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].IsActive)

	assert.Error(t, c.EndSession(ctx, "someone-else", id))

	require.NoError(t, c.EndSession(ctx, model.DefaultUserID, id))
	session, err := repos.Chat.GetSession(ctx, id)
	require.NoError(t, err)
	assert.False(t, session.IsActive)
	assert.Equal(t, "test-agent", session.Metadata.UserAgent)
	assert.Equal(t, []string{"analytics"}, sheets.calls)
}

func TestSessionHistoryUnknownSession(t *testing.T) {
	c, _, _ := newChat(t)

	messages, err := c.SessionHistory(context.Background(), "missing", 50)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestSuggestionsFollowConversation(t *testing.T) {
	c, _, _ := newChat(t)
	ctx := context.Background()

	reply, err := c.ProcessMessage(ctx, MessageInput{UserID: model.DefaultUserID, Message: "show my credentials"})
	require.NoError(t, err)

	got, err := c.Suggestions(ctx, model.DefaultUserID, reply.SessionID)
	require.NoError(t, err)
	assert.Equal(t, DefaultSuggestions("credential"), got)

	_, err = c.Suggestions(ctx, model.DefaultUserID, "missing")
	assert.Error(t, err)
}

func TestChatAnalytics(t *testing.T) {
	c, _, _ := newChat(t)
	ctx := context.Background()

	for _, msg := range []string{"my credentials", "my nft", "wellness"} {
		_, err := c.ProcessMessage(ctx, MessageInput{UserID: model.DefaultUserID, Message: msg})
		require.NoError(t, err)
	}

	a, err := c.Analytics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, a.TotalSessions)
	assert.Equal(t, 6, a.TotalMessages)
	assert.Equal(t, 3, a.UserMessages)
	assert.Equal(t, 3, a.BotMessages)
	assert.Equal(t, map[string]int{"credentials": 2, "health": 1}, a.SectionUsage)
	assert.Equal(t, []string{"credentials", "health"}, a.TopSections)
	assert.InDelta(t, 2.0, a.AverageSessionTurns, 0.001)
}

func TestSystemHealth(t *testing.T) {
	c, _, sheets := newChat(t)
	sheets.healthy = false

	h := c.SystemHealth(context.Background())

	assert.True(t, h.Database)
	assert.False(t, h.GoogleSheets)
	assert.True(t, h.AIService)
}
