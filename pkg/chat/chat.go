package chat

import (
	"fmt"
	"strings"
)

// MaxQuestionLength caps a single user question, in bytes.
const MaxQuestionLength = 1000

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // Mission assistant
	ChatRoleSystem = "system"    // Instructions
)

// ChatMessage is one message sent to an LLM backend.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Source is a web page an answer was grounded on.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Message is one entry of a mission chat as the player sees it.
type Message struct {
	Sender  string   `json:"sender"` // ChatRoleUser or ChatRoleAgent
	Text    string   `json:"text"`
	Sources []Source `json:"sources,omitempty"`
}

// Reply is a generated chat answer.
type Reply struct {
	Text    string   `json:"text"`
	Sources []Source `json:"sources"`
}

// DedupeSources drops sources without a URI or title and collapses
// duplicates by URI. Order follows the first occurrence of each URI; the
// title of the last occurrence wins.
func DedupeSources(sources []Source) []Source {
	out := make([]Source, 0, len(sources))
	index := make(map[string]int, len(sources))
	for _, s := range sources {
		if s.URI == "" || s.Title == "" {
			continue
		}
		if i, ok := index[s.URI]; ok {
			out[i] = s
			continue
		}
		index[s.URI] = len(out)
		out = append(out, s)
	}
	return out
}

// Request is the body of a mission chat call. MissionID opens a chat,
// Question asks within the open one.
type Request struct {
	MissionID *int   `json:"mission_id,omitempty"`
	Question  string `json:"question,omitempty"`
}

func (r *Request) Validate() error {
	if r.MissionID == nil && strings.TrimSpace(r.Question) == "" {
		return fmt.Errorf("either mission_id or question is required")
	}
	if r.MissionID != nil && r.Question != "" {
		return fmt.Errorf("mission_id and question cannot be combined")
	}
	if len(r.Question) > MaxQuestionLength {
		return fmt.Errorf("question exceeds maximum length of %d characters", MaxQuestionLength)
	}
	return nil
}

// Turns converts a mission chat into conversation turns for a backend.
// Anything not sent by the player is an assistant turn; empty messages are
// dropped.
func Turns(messages []Message) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		role := ChatRoleAgent
		if m.Sender == ChatRoleUser {
			role = ChatRoleUser
		}
		out = append(out, ChatMessage{Role: role, Content: m.Text})
	}
	return out
}
