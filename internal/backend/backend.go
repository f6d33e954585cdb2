// Package backend binds a local model artifact directory to a runtime that
// can serve it: llama.cpp in process, or an OpenAI compatible server for
// chat and image generation, and a classify endpoint for vision.
package backend

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// LanguageModel generates a continuation of prompt. Only new text is returned.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error)
}

// Pipeline renders one square image for prompt.
type Pipeline interface {
	Generate(ctx context.Context, prompt string, size int) (image.Image, error)
}

// Binding returns the factory that builds the instance for model id from its
// local artifact directory.
type Binding[T any] func(id string) func(ctx context.Context, dir string) (T, error)

// requireFile fails unless dir contains name.
func requireFile(dir, name string) error {
	fi, err := os.Stat(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("%s: missing %s: %w", dir, name, err)
	}
	if fi.IsDir() {
		return fmt.Errorf("%s: %s is a directory", dir, name)
	}
	return nil
}
