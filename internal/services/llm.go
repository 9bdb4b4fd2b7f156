package services

import (
	"context"
	"strings"

	"github.com/jwebster45206/resume-quest/pkg/chat"
)

// LLMService defines the interface for interacting with an LLM backend
type LLMService interface {
	// InitModel prepares the backend on startup
	InitModel(ctx context.Context, modelName string) error

	// Chat generates a response for the conversation. System messages are
	// instructions; the last message is the one being answered.
	Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.Reply, error)
}

// splitChatMessages extracts and combines all system messages into a single system prompt
// and returns the remaining non-system messages
func splitChatMessages(messages []chat.ChatMessage) (string, []chat.ChatMessage) {
	var systemParts []string
	var nonSystemMessages []chat.ChatMessage

	for _, msg := range messages {
		if msg.Role == chat.ChatRoleSystem {
			systemParts = append(systemParts, msg.Content)
		} else {
			nonSystemMessages = append(nonSystemMessages, msg)
		}
	}

	return strings.Join(systemParts, "\n\n"), nonSystemMessages
}
