package backend

import (
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// LlamaOptions configures the in-process runtime.
type LlamaOptions struct {
	ContextSize int
	Threads     int
}

// OpenAIOptions points at an OpenAI compatible server that serves the
// downloaded models under their registry identifier.
type OpenAIOptions struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func (o OpenAIOptions) client() *openai.Client {
	cfg := openai.DefaultConfig(o.APIKey)
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.HTTPClient != nil {
		cfg.HTTPClient = o.HTTPClient
	}
	return openai.NewClientWithConfig(cfg)
}

// VisionOptions points at the classify endpoint.
type VisionOptions struct {
	URL        string
	HTTPClient *http.Client
}
