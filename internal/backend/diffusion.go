package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"

	openai "github.com/sashabaranov/go-openai"
)

// NewDiffusionFactory binds diffusers pipelines to an OpenAI compatible
// images endpoint. The directory must hold model_index.json.
func NewDiffusionFactory(opts OpenAIOptions) Binding[Pipeline] {
	return func(id string) func(context.Context, string) (Pipeline, error) {
		return func(ctx context.Context, dir string) (Pipeline, error) {
			if opts.BaseURL == "" {
				return nil, ErrDependencyUnavailable("image runtime url not configured")
			}
			if err := requireFile(dir, "model_index.json"); err != nil {
				return nil, err
			}
			return &diffusionPipeline{client: opts.client(), model: id}, nil
		}
	}
}

type diffusionPipeline struct {
	client *openai.Client
	model  string
}

func (p *diffusionPipeline) Generate(ctx context.Context, prompt string, size int) (image.Image, error) {
	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          p.model,
		N:              1,
		Size:           fmt.Sprintf("%dx%d", size, size),
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", p.model, err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("image endpoint returned no images")
	}
	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode b64_json: %w", err)
	}
	img, _, err := DecodeImage(bytes.NewReader(raw))
	return img, err
}
