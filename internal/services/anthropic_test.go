package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/resume-quest/internal/logger"
	"github.com/jwebster45206/resume-quest/pkg/chat"
)

func TestSplitChatMessages(t *testing.T) {
	tests := []struct {
		name                   string
		messages               []chat.ChatMessage
		expectedSystem         string
		expectedNonSystemCount int
	}{
		{
			name: "single system message",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleSystem, Content: "You are a helpful assistant."},
				{Role: chat.ChatRoleUser, Content: "Hello"},
			},
			expectedSystem:         "You are a helpful assistant.",
			expectedNonSystemCount: 1,
		},
		{
			name: "multiple system messages",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleSystem, Content: "You are a helpful assistant."},
				{Role: chat.ChatRoleUser, Content: "Hello"},
				{Role: chat.ChatRoleSystem, Content: "Be concise."},
				{Role: chat.ChatRoleAgent, Content: "Hi there!"},
			},
			expectedSystem:         "You are a helpful assistant.\n\nBe concise.",
			expectedNonSystemCount: 2,
		},
		{
			name: "no system messages",
			messages: []chat.ChatMessage{
				{Role: chat.ChatRoleUser, Content: "Hello"},
				{Role: chat.ChatRoleAgent, Content: "Hi there!"},
			},
			expectedSystem:         "",
			expectedNonSystemCount: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			systemPrompt, nonSystemMessages := splitChatMessages(tt.messages)

			if systemPrompt != tt.expectedSystem {
				t.Errorf("Expected system prompt '%s', got '%s'", tt.expectedSystem, systemPrompt)
			}
			if len(nonSystemMessages) != tt.expectedNonSystemCount {
				t.Errorf("Expected %d non-system messages, got %d", tt.expectedNonSystemCount, len(nonSystemMessages))
			}
			for _, msg := range nonSystemMessages {
				if msg.Role == chat.ChatRoleSystem {
					t.Error("Found system message in non-system messages")
				}
			}
		})
	}
}

func newTestAnthropic(t *testing.T, handler http.HandlerFunc) *AnthropicService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc := NewAnthropicService("test-key", "", logger.Discard())
	svc.baseURL = srv.URL
	return svc
}

func TestAnthropicService_Chat(t *testing.T) {
	var got anthropicRequest
	svc := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01ABC123",
			"type": "message",
			"role": "assistant",
			"content": [
				{"type": "text", "text": "Hello! "},
				{"type": "tool_use", "text": "ignored"},
				{"type": "text", "text": "How can I help?"}
			],
			"model": "claude",
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 20}
		}`))
	})

	reply, err := svc.Chat(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "Be brief."},
		{Role: chat.ChatRoleUser, Content: "Hi"},
		{Role: chat.ChatRoleAgent, Content: "Hello."},
		{Role: chat.ChatRoleUser, Content: "What did you build?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello! How can I help?", reply.Text)
	assert.Empty(t, reply.Sources)

	assert.Equal(t, DefaultAnthropicModel, got.Model)
	assert.Equal(t, "Be brief.", got.System)
	assert.Equal(t, DefaultAnthropicMaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, chat.ChatRoleUser, got.Messages[0].Role)
	assert.Equal(t, chat.ChatRoleAgent, got.Messages[1].Role)
	assert.Equal(t, "What did you build?", got.Messages[2].Content)
}

func TestAnthropicService_ChatErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		svc := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
		})
		_, err := svc.Chat(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "Hi"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("api error body", func(t *testing.T) {
		svc := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`))
		})
		_, err := svc.Chat(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "Hi"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad model")
	})

	t.Run("nothing to answer", func(t *testing.T) {
		svc := newTestAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		_, err := svc.Chat(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleSystem, Content: "rules"}})
		assert.Error(t, err)
	})
}

func TestAnthropicService_InitModel(t *testing.T) {
	svc := NewAnthropicService("k", "", logger.Discard())
	require.NoError(t, svc.InitModel(context.Background(), "claude-custom"))
	assert.Equal(t, "claude-custom", svc.modelName)

	require.NoError(t, svc.InitModel(context.Background(), ""))
	assert.Equal(t, "claude-custom", svc.modelName)
}
