//go:build !llama

package backend

// This file is compiled when the 'llama' build tag is NOT set, keeping default
// builds CGO-free. Chat models then need the served runtime.

import "context"

// LlamaBuilt indicates this binary was compiled with real llama support.
const LlamaBuilt = false

// NewLlamaFactory returns factories that always fail with a dependency error.
func NewLlamaFactory(opts LlamaOptions) Binding[LanguageModel] {
	return func(id string) func(context.Context, string) (LanguageModel, error) {
		return func(ctx context.Context, dir string) (LanguageModel, error) {
			return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
		}
	}
}
