package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Defaults.
type Config struct {
	Addr        string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir   string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	PersonasDir string `json:"personas_dir" yaml:"personas_dir" toml:"personas_dir"`

	// Hub access. Offline disables downloads entirely. HubCacheDir, when
	// set, downloads through a shared Hugging Face cache.
	Offline        bool   `json:"offline" yaml:"offline" toml:"offline"`
	HubEndpoint    string `json:"hub_endpoint" yaml:"hub_endpoint" toml:"hub_endpoint"`
	HubToken       string `json:"hub_token" yaml:"hub_token" toml:"hub_token"`
	HubParallelism int    `json:"hub_parallelism" yaml:"hub_parallelism" toml:"hub_parallelism"`
	HubCacheDir    string `json:"hub_cache_dir" yaml:"hub_cache_dir" toml:"hub_cache_dir"`
	Progress       bool   `json:"progress" yaml:"progress" toml:"progress"`

	ChatModel   string `json:"chat_model" yaml:"chat_model" toml:"chat_model"`
	VisionModel string `json:"vision_model" yaml:"vision_model" toml:"vision_model"`
	ImageModel  string `json:"image_model" yaml:"image_model" toml:"image_model"`

	// Runtimes
	ChatRuntime   string `json:"chat_runtime" yaml:"chat_runtime" toml:"chat_runtime"`
	RuntimeURL    string `json:"runtime_url" yaml:"runtime_url" toml:"runtime_url"`
	RuntimeAPIKey string `json:"runtime_api_key" yaml:"runtime_api_key" toml:"runtime_api_key"`
	VisionURL     string `json:"vision_url" yaml:"vision_url" toml:"vision_url"`
	LlamaCtx      int    `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx"`
	LlamaThreads  int    `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads"`

	MaxWaitSeconds int      `json:"max_wait_seconds" yaml:"max_wait_seconds" toml:"max_wait_seconds"`
	LogLevel       string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORSOrigins    []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
