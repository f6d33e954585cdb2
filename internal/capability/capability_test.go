package capability

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"synthmind/internal/acquire"
	"synthmind/internal/backend"
	"synthmind/internal/manager"
)

type countingFetcher struct{ calls atomic.Int32 }

func (f *countingFetcher) Fetch(ctx context.Context, id, dir string) error {
	f.calls.Add(1)
	return os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{}`), 0o644)
}

func newManager(t *testing.T, f acquire.Fetcher) *manager.Manager {
	t.Helper()
	var opts []acquire.Option
	if f != nil {
		opts = append(opts, acquire.WithFetcher(f))
	}
	m := manager.New(acquire.NewResolver(t.TempDir(), opts...))
	t.Cleanup(func() { _ = m.Close() })
	return m
}

// fakeLM records the last prompt.
type fakeLM struct {
	reply     string
	err       error
	prompt    string
	maxTokens int
}

func (f *fakeLM) Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error) {
	f.prompt, f.maxTokens = prompt, maxNewTokens
	return f.reply, f.err
}

type fakePipeline struct {
	size int
	err  error
}

func (p *fakePipeline) Generate(ctx context.Context, prompt string, size int) (image.Image, error) {
	p.size = size
	if p.err != nil {
		return nil, p.err
	}
	return image.NewRGBA(image.Rect(0, 0, size, size)), nil
}

type fixedLogits []float32

func (l fixedLogits) Classify(ctx context.Context, img image.Image) ([]float32, error) {
	return l, nil
}

// bindCounting wraps a fixed instance into a binding and counts constructions.
func bindCounting[T any](inst T, ids *[]string) backend.Binding[T] {
	return func(id string) func(context.Context, string) (T, error) {
		return func(ctx context.Context, dir string) (T, error) {
			*ids = append(*ids, id)
			return inst, nil
		}
	}
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}

var errRuntime = errors.New("runtime crashed")

var nop = zerolog.Nop()

type backendLM = backend.LanguageModel
