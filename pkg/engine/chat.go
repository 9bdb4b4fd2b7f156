package engine

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/jwebster45206/resume-quest/pkg/chat"
	"github.com/jwebster45206/resume-quest/pkg/mission"
)

var (
	ErrMissionNotCompleted = errors.New("mission chat is only open for completed missions")
	ErrChatClosed          = errors.New("no mission chat is open")
	ErrChatBusy            = errors.New("still answering the previous question")
	ErrEmptyQuestion       = errors.New("question is empty")
)

// ChatSession is the open mission chat.
type ChatSession struct {
	MissionID    int            `json:"mission_id"`
	MissionTitle string         `json:"mission_title"`
	Messages     []chat.Message `json:"messages"`
	Pending      bool           `json:"pending"`

	generation uint64
}

func (c *ChatSession) clone() *ChatSession {
	out := *c
	out.Messages = slices.Clone(c.Messages)
	return &out
}

// OpenChat opens the assistant chat for a completed mission and closes the
// menu it was opened from.
func (e *Engine) OpenChat(missionID int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	m, ok := e.missions.Find(missionID)
	if !ok || m.Status != mission.StatusCompleted {
		return ErrMissionNotCompleted
	}
	e.generation++
	e.chat = &ChatSession{
		MissionID:    m.ID,
		MissionTitle: m.Title,
		Messages:     []chat.Message{},
		generation:   e.generation,
	}
	e.menuOpen = false
	e.menuView = MenuMain
	return nil
}

// CloseChat closes the mission chat. A pending answer is discarded.
func (e *Engine) CloseChat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chat = nil
}

// AskChat sends a question to the assistant. The answer is appended to the
// chat when it arrives, provided the same chat is still open.
func (e *Engine) AskChat(question string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	question = strings.TrimSpace(question)
	switch {
	case e.chat == nil:
		return ErrChatClosed
	case e.chat.Pending:
		return ErrChatBusy
	case question == "":
		return ErrEmptyQuestion
	}

	m, _ := e.missions.Find(e.chat.MissionID)
	history := slices.Clone(e.chat.Messages)
	gen := e.chat.generation

	next := e.chat.clone()
	next.Messages = append(next.Messages, chat.Message{Sender: chat.ChatRoleUser, Text: question})
	next.Pending = true
	e.chat = next

	e.goGenerate(func(ctx context.Context) {
		reply := e.text.GenerateChatResponse(ctx, m, history, question)

		e.mu.Lock()
		defer e.mu.Unlock()
		if e.chat == nil || e.chat.generation != gen {
			e.log.Debug("Discarding stale chat reply", "mission_id", m.ID, "generation", gen)
			return
		}
		done := e.chat.clone()
		done.Messages = append(done.Messages, chat.Message{
			Sender:  chat.ChatRoleAgent,
			Text:    reply.Text,
			Sources: chat.DedupeSources(reply.Sources),
		})
		done.Pending = false
		e.chat = done
	})
	return nil
}
