package capability

import (
	"context"
	"errors"
	"image"
	"strings"

	"github.com/rs/zerolog"

	"synthmind/internal/acquire"
	"synthmind/internal/backend"
	"synthmind/internal/manager"
)

const (
	DefaultImageModel = "runwayml/stable-diffusion-v1-5"
	DefaultImageSize  = 512
	maxImageSize      = 2048
)

// Images renders pictures with a diffusion pipeline.
type Images struct {
	m       *manager.Manager
	bind    backend.Binding[backend.Pipeline]
	log     zerolog.Logger
	Default string
}

func NewImages(m *manager.Manager, bind backend.Binding[backend.Pipeline], log zerolog.Logger) *Images {
	return &Images{m: m, bind: bind, log: log, Default: DefaultImageModel}
}

// CreateImage runs one pipeline pass at size x size and returns the first image.
func (g *Images) CreateImage(ctx context.Context, prompt string, size int, model string) (image.Image, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrInvalidInput("prompt is required")
	}
	if size == 0 {
		size = DefaultImageSize
	}
	if size < 0 || size > maxImageSize {
		return nil, ErrInvalidInput("size must be between 1 and 2048")
	}
	id := model
	if id == "" {
		id = g.Default
	}
	p, err := manager.GetOrCreate(ctx, g.m, acquire.ImageGenerator, id, g.bind(id))
	if err != nil {
		return nil, err
	}
	release, err := g.m.Exclusive(ctx, acquire.ImageGenerator, id)
	if err != nil {
		return nil, err
	}
	defer release()

	g.log.Debug().Str("model", id).Int("size", size).Msg("image generate")
	img, err := p.Generate(ctx, prompt, size)
	if err == nil && img == nil {
		err = errors.New("pipeline produced no image")
	}
	if err != nil {
		return nil, ErrInferenceFailure("image generation", id, err)
	}
	return img, nil
}
