// Package capability holds the request adapters: chat replies, image
// generation and image description. Each call borrows a cached instance
// from the manager and runs one blocking inference on it.
package capability

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"synthmind/internal/acquire"
	"synthmind/internal/backend"
	"synthmind/internal/manager"
)

const (
	DefaultChatModel = "distilgpt2"
	// MaxNewTokens bounds every chat generation.
	MaxNewTokens = 50
	historyTurns = 2
)

// Turn is one prior exchange.
type Turn struct {
	User      string
	Assistant string
}

// ChatInput carries everything a reply depends on. The caller owns history
// and persona; nothing is remembered between calls.
type ChatInput struct {
	Text    string
	History []Turn
	Model   string
	Persona string
}

// Chat answers user messages with a language model.
type Chat struct {
	m       *manager.Manager
	bind    backend.Binding[backend.LanguageModel]
	log     zerolog.Logger
	Default string
}

func NewChat(m *manager.Manager, bind backend.Binding[backend.LanguageModel], log zerolog.Logger) *Chat {
	return &Chat{m: m, bind: bind, log: log, Default: DefaultChatModel}
}

// BuildPrompt flattens persona, the last two turns and the message into
// one prompt ending with the assistant cue.
func BuildPrompt(text string, history []Turn, persona string) string {
	lines := make([]string, 0, 2*historyTurns+3)
	if p := strings.TrimSpace(persona); p != "" {
		lines = append(lines, p)
	}
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	for _, h := range history {
		lines = append(lines, "User: "+h.User, "Assistant: "+h.Assistant)
	}
	lines = append(lines, "User: "+text, "Assistant:")
	return strings.Join(lines, "\n")
}

// Respond generates a trimmed reply to in.Text.
func (c *Chat) Respond(ctx context.Context, in ChatInput) (string, error) {
	if strings.TrimSpace(in.Text) == "" {
		return "", ErrInvalidInput("message is required")
	}
	id := in.Model
	if id == "" {
		id = c.Default
	}
	lm, err := manager.GetOrCreate(ctx, c.m, acquire.ChatModel, id, c.bind(id))
	if err != nil {
		return "", err
	}
	release, err := c.m.Exclusive(ctx, acquire.ChatModel, id)
	if err != nil {
		return "", err
	}
	defer release()

	prompt := BuildPrompt(in.Text, in.History, in.Persona)
	c.log.Debug().Str("model", id).Int("prompt_len", len(prompt)).Msg("chat generate")
	out, err := lm.Generate(ctx, prompt, MaxNewTokens)
	if err != nil {
		return "", ErrInferenceFailure("chat", id, err)
	}
	return strings.TrimSpace(out), nil
}
