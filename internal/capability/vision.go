package capability

import (
	"context"
	"errors"
	"image"
	"strconv"

	"github.com/rs/zerolog"

	"synthmind/internal/acquire"
	"synthmind/internal/backend"
	"synthmind/internal/manager"
)

const (
	DefaultVisionModel = "google/vit-base-patch16-224"
	// NoImageMessage is returned when no image is supplied.
	NoImageMessage = "No image provided."
)

// Vision describes images with a classification model.
type Vision struct {
	m       *manager.Manager
	bind    backend.Binding[*backend.VisionModel]
	log     zerolog.Logger
	Default string
}

func NewVision(m *manager.Manager, bind backend.Binding[*backend.VisionModel], log zerolog.Logger) *Vision {
	return &Vision{m: m, bind: bind, log: log, Default: DefaultVisionModel}
}

// Describe classifies img and names the winning class. A nil image never
// touches the cache.
func (v *Vision) Describe(ctx context.Context, img image.Image, model string) (string, error) {
	if img == nil {
		return NoImageMessage, nil
	}
	id := model
	if id == "" {
		id = v.Default
	}
	vm, err := manager.GetOrCreate(ctx, v.m, acquire.VisionModel, id, v.bind(id))
	if err != nil {
		return "", err
	}
	release, err := v.m.Exclusive(ctx, acquire.VisionModel, id)
	if err != nil {
		return "", err
	}
	defer release()

	logits, err := vm.Logits(ctx, img)
	if err == nil && len(logits) == 0 {
		err = errors.New("model returned no logits")
	}
	if err != nil {
		return "", ErrInferenceFailure("vision", id, err)
	}
	idx := argmax(logits)
	label, ok := vm.Labels.Lookup(idx)
	if !ok {
		label = strconv.Itoa(idx)
	}
	v.log.Debug().Str("model", id).Int("class", idx).Str("label", label).Msg("vision classify")
	return "Detected: " + label, nil
}

// argmax returns the index of the largest value; ties go to the first.
func argmax(xs []float32) int {
	best := 0
	for i, x := range xs {
		if x > xs[best] {
			best = i
		}
	}
	return best
}
