package services

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/jwebster45206/resume-quest/pkg/chat"
	"github.com/jwebster45206/resume-quest/pkg/mission"
	"github.com/jwebster45206/resume-quest/pkg/textfilter"
)

// ChatApology is shown when a chat answer could not be generated.
const ChatApology = "Sorry, I had trouble reaching my knowledge circuits. Please try asking another question."

const topicExcerptLength = 80

var (
	//go:embed prompts/dialogue.tmpl
	dialoguePrompt string
	//go:embed prompts/chat.tmpl
	chatPrompt string

	dialogueTemplate = template.Must(template.New("dialogue").Parse(dialoguePrompt))
	chatTemplate     = template.Must(template.New("chat").Parse(chatPrompt))
)

// TextGenerator writes NPC dialogue and mission chat answers on top of an
// LLMService. It never fails: backend errors become fallback text.
type TextGenerator struct {
	llm    LLMService
	filter *textfilter.ProfanityFilter
	logger *slog.Logger
}

func NewTextGenerator(llm LLMService, logger *slog.Logger) *TextGenerator {
	return &TextGenerator{
		llm:    llm,
		filter: textfilter.NewProfanityFilter(),
		logger: logger,
	}
}

// DialogueFallback is the dialogue shown when generation fails.
func DialogueFallback(npcName, topic string) string {
	return fmt.Sprintf("Hi, I'm %s. I hit an error while preparing my dialogue, but this mission is about: \"%s...\". Keep going!",
		npcName, textfilter.Excerpt(topic, topicExcerptLength))
}

func (g *TextGenerator) GenerateDialogue(ctx context.Context, npcName, missionTopic string) string {
	system, err := render(dialogueTemplate, struct{ NPCName string }{npcName})
	if err == nil {
		var reply *chat.Reply
		reply, err = g.llm.Chat(ctx, []chat.ChatMessage{
			{Role: chat.ChatRoleSystem, Content: system},
			{Role: chat.ChatRoleUser, Content: fmt.Sprintf("Concept: %q", missionTopic)},
		})
		if err == nil {
			if text := g.clean(reply.Text); text != "" {
				return text
			}
			err = fmt.Errorf("empty dialogue")
		}
	}

	g.logger.Warn("Dialogue generation failed", "npc", npcName, "error", err)
	return DialogueFallback(npcName, missionTopic)
}

func (g *TextGenerator) GenerateChatResponse(ctx context.Context, m mission.Mission, history []chat.Message, question string) chat.Reply {
	system, err := render(chatTemplate, struct{ Title, Reference string }{m.Title, m.Reference})
	if err == nil {
		messages := []chat.ChatMessage{{Role: chat.ChatRoleSystem, Content: system}}
		messages = append(messages, chat.Turns(history)...)
		messages = append(messages, chat.ChatMessage{Role: chat.ChatRoleUser, Content: question})

		var reply *chat.Reply
		reply, err = g.llm.Chat(ctx, messages)
		if err == nil {
			if text := g.clean(reply.Text); text != "" {
				return chat.Reply{Text: text, Sources: chat.DedupeSources(reply.Sources)}
			}
			err = fmt.Errorf("empty answer")
		}
	}

	g.logger.Warn("Chat response generation failed", "mission_id", m.ID, "error", err)
	return chat.Reply{Text: ChatApology, Sources: []chat.Source{}}
}

func (g *TextGenerator) clean(text string) string {
	return strings.TrimSpace(g.filter.FilterText(textfilter.CleanMarkdown(text)))
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
