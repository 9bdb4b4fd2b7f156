package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/resume-quest/internal/logger"
	"github.com/jwebster45206/resume-quest/pkg/chat"
	"github.com/jwebster45206/resume-quest/pkg/engine"
	"github.com/jwebster45206/resume-quest/pkg/mission"
)

var _ engine.TextGenerator = (*TextGenerator)(nil)

func TestGenerateDialogue(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.SetChatResponse(chat.Reply{Text: "**Unit tests** keep the build honest."})
	gen := NewTextGenerator(llm, logger.Discard())

	text := gen.GenerateDialogue(context.Background(), "Ana", "Testing pyramids")
	assert.Equal(t, "Unit tests keep the build honest.", text)

	_, calls := llm.GetCalls()
	require.Len(t, calls, 1)
	msgs := calls[0].Messages
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.ChatRoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "named Ana")
	assert.Equal(t, chat.ChatMessage{Role: chat.ChatRoleUser, Content: `Concept: "Testing pyramids"`}, msgs[1])
}

func TestGenerateDialogue_Fallback(t *testing.T) {
	topic := "A long mission topic that goes on and on about continuous integration pipelines and release trains"

	tests := []struct {
		name  string
		setup func(*MockLLMAPI)
	}{
		{"backend error", func(m *MockLLMAPI) { m.SetChatError(errors.New("quota")) }},
		{"empty text", func(m *MockLLMAPI) { m.SetChatResponse(chat.Reply{Text: "   "}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := NewMockLLMAPI()
			tt.setup(llm)
			gen := NewTextGenerator(llm, logger.Discard())

			text := gen.GenerateDialogue(context.Background(), "Ana", topic)
			assert.Equal(t, DialogueFallback("Ana", topic), text)
			assert.Contains(t, text, "Hi, I'm Ana.")
			assert.Contains(t, text, `"`+topic[:80]+`...". Keep going!`)
		})
	}
}

func TestGenerateChatResponse(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.SetChatResponse(chat.Reply{
		Text: "It uses Go.",
		Sources: []chat.Source{
			{URI: "https://a", Title: "first"},
			{URI: "", Title: "no uri"},
			{URI: "https://a", Title: "second"},
		},
	})
	gen := NewTextGenerator(llm, logger.Discard())

	m := mission.Mission{ID: 3, Title: "Ship It", Reference: "https://example.com/ship"}
	history := []chat.Message{
		{Sender: chat.ChatRoleUser, Text: "Hi"},
		{Sender: chat.ChatRoleAgent, Text: "Hello"},
	}

	reply := gen.GenerateChatResponse(context.Background(), m, history, "What language?")
	assert.Equal(t, "It uses Go.", reply.Text)
	assert.Equal(t, []chat.Source{{URI: "https://a", Title: "second"}}, reply.Sources)

	_, calls := llm.GetCalls()
	require.Len(t, calls, 1)
	msgs := calls[0].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, chat.ChatRoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, `project "Ship It"`)
	assert.Contains(t, msgs[0].Content, "https://example.com/ship")
	assert.Equal(t, []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "Hi"},
		{Role: chat.ChatRoleAgent, Content: "Hello"},
		{Role: chat.ChatRoleUser, Content: "What language?"},
	}, msgs[1:])
}

func TestGenerateChatResponse_Fallback(t *testing.T) {
	llm := NewMockLLMAPI()
	llm.SetChatError(errors.New("timeout"))
	gen := NewTextGenerator(llm, logger.Discard())

	reply := gen.GenerateChatResponse(context.Background(), mission.Mission{ID: 1}, nil, "Why?")
	assert.Equal(t, ChatApology, reply.Text)
	assert.NotNil(t, reply.Sources)
	assert.Empty(t, reply.Sources)
}
