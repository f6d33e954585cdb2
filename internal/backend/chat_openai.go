package backend

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// NewOpenAIChatFactory binds chat models to an OpenAI compatible completion
// endpoint. The directory must hold a transformers config.json.
func NewOpenAIChatFactory(opts OpenAIOptions) Binding[LanguageModel] {
	return func(id string) func(context.Context, string) (LanguageModel, error) {
		return func(ctx context.Context, dir string) (LanguageModel, error) {
			if opts.BaseURL == "" {
				return nil, ErrDependencyUnavailable("chat runtime url not configured")
			}
			if err := requireFile(dir, "config.json"); err != nil {
				return nil, err
			}
			return &openAIChat{client: opts.client(), model: id}, nil
		}
	}
}

type openAIChat struct {
	client *openai.Client
	model  string
}

func (o *openAIChat) Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error) {
	resp, err := o.client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:     o.model,
		Prompt:    prompt,
		MaxTokens: maxNewTokens,
	})
	if err != nil {
		return "", fmt.Errorf("completion %s: %w", o.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return resp.Choices[0].Text, nil
}
