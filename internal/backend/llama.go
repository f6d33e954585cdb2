//go:build llama

package backend

import (
	"context"
	"errors"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"synthmind/internal/common/fsutil"
)

// LlamaBuilt indicates this binary was compiled with real llama support.
const LlamaBuilt = true

// NewLlamaFactory loads the first *.gguf file of a chat model directory into
// an in-process llama.cpp context.
func NewLlamaFactory(opts LlamaOptions) Binding[LanguageModel] {
	return func(id string) func(context.Context, string) (LanguageModel, error) {
		return func(ctx context.Context, dir string) (LanguageModel, error) {
			path, err := fsutil.FirstWithSuffix(dir, ".gguf")
			if err != nil {
				return nil, err
			}
			mo := []llama.ModelOption{}
			if opts.ContextSize > 0 {
				mo = append(mo, llama.SetContext(opts.ContextSize))
			}
			m, err := llama.New(path, mo...)
			if err != nil {
				return nil, err
			}
			return &llamaModel{model: m, threads: opts.Threads}, nil
		}
	}
}

// llamaModel owns the loaded model. go-llama.cpp keeps one token callback
// per model, so calls are serialized.
type llamaModel struct {
	mu      sync.Mutex
	model   *llama.LLama
	threads int
}

func (l *llamaModel) Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.model == nil {
		return "", errors.New("llama model not initialized")
	}
	// Stop generation when the caller goes away.
	l.model.SetTokenCallback(func(string) bool { return ctx.Err() == nil })
	text, err := l.model.Predict(prompt,
		llama.SetTokens(max(1, maxNewTokens)),
		llama.SetThreads(max(1, l.threads)),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return text, nil
}

func (l *llamaModel) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.model != nil {
		l.model.Free()
		l.model = nil
	}
	return nil
}
