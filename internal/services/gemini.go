package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jwebster45206/resume-quest/pkg/chat"
)

const (
	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultGeminiTemperature = 0.7
)

// GeminiService implements LLMService for Google Gemini
type GeminiService struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

func NewGeminiService(ctx context.Context, apiKey string, modelName string, logger *slog.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiService{
		client:    client,
		modelName: modelName,
		logger:    logger,
	}, nil
}

func (g *GeminiService) InitModel(ctx context.Context, modelName string) error {
	if modelName != "" {
		g.modelName = modelName
	}
	g.logger.Info("Gemini model configured", "model", g.modelName)
	return nil
}

// Chat sends the conversation as a Gemini chat session. Citation metadata on
// the first candidate becomes the reply's sources.
func (g *GeminiService) Chat(ctx context.Context, messages []chat.ChatMessage) (*chat.Reply, error) {
	turn, err := toGeminiTurn(messages)
	if err != nil {
		return nil, err
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(DefaultGeminiTemperature)
	model.SystemInstruction = turn.system

	cs := model.StartChat()
	cs.History = turn.history

	resp, err := cs.SendMessage(ctx, turn.question)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	return replyFromResponse(resp)
}

// Close releases the underlying client.
func (g *GeminiService) Close() error {
	return g.client.Close()
}

// geminiTurn is one request in Gemini's shape: system instruction, earlier
// turns as chat history and the message being answered.
type geminiTurn struct {
	system   *genai.Content // nil without system messages
	history  []*genai.Content
	question genai.Text
}

func toGeminiTurn(messages []chat.ChatMessage) (geminiTurn, error) {
	system, convo := splitChatMessages(messages)
	if len(convo) == 0 {
		return geminiTurn{}, fmt.Errorf("no user message to answer")
	}
	turn := geminiTurn{
		history:  toGeminiHistory(convo[:len(convo)-1]),
		question: genai.Text(convo[len(convo)-1].Content),
	}
	if system != "" {
		turn.system = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	return turn, nil
}

func toGeminiHistory(messages []chat.ChatMessage) []*genai.Content {
	history := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := "user"
		if m.Role == chat.ChatRoleAgent {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return history
}

func replyFromResponse(resp *genai.GenerateContentResponse) (*chat.Reply, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no content returned from Gemini")
	}

	cand := resp.Candidates[0]
	var b strings.Builder
	for _, part := range cand.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	sources := []chat.Source{}
	if cand.CitationMetadata != nil {
		for _, cs := range cand.CitationMetadata.CitationSources {
			if cs == nil || cs.URI == nil {
				continue
			}
			sources = append(sources, chat.Source{URI: *cs.URI, Title: sourceTitle(*cs.URI)})
		}
	}

	return &chat.Reply{Text: b.String(), Sources: sources}, nil
}

// sourceTitle labels a citation by its host, since citations carry no title.
func sourceTitle(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return uri
	}
	return strings.TrimPrefix(u.Host, "www.")
}
