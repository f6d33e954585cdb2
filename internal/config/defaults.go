package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"synthmind/internal/common/fsutil"
)

const (
	DefaultAddr        = ":8080"
	DefaultHome        = "~/.synthmind"
	DefaultChatRuntime = "openai"
	DefaultLogLevel    = "info"
	DefaultMaxWait     = 30
)

// WithDefaults fills unspecified fields and expands ~ in directories.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ModelsDir == "" {
		c.ModelsDir = filepath.Join(DefaultHome, "models")
	}
	if c.PersonasDir == "" {
		c.PersonasDir = filepath.Join(DefaultHome, "personas")
	}
	// An unexpandable ~ is left as is and fails later with a clear path.
	if p, err := fsutil.ExpandHome(c.ModelsDir); err == nil {
		c.ModelsDir = p
	}
	if p, err := fsutil.ExpandHome(c.PersonasDir); err == nil {
		c.PersonasDir = p
	}
	if c.HubCacheDir != "" {
		if p, err := fsutil.ExpandHome(c.HubCacheDir); err == nil {
			c.HubCacheDir = p
		}
	}
	if c.ChatRuntime == "" {
		c.ChatRuntime = DefaultChatRuntime
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.MaxWaitSeconds <= 0 {
		c.MaxWaitSeconds = DefaultMaxWait
	}
	return c
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	switch c.ChatRuntime {
	case "llama", "openai":
	default:
		return fmt.Errorf("chat_runtime must be llama or openai, got %q", c.ChatRuntime)
	}
	if c.HubParallelism < 0 {
		return fmt.Errorf("hub_parallelism must not be negative")
	}
	if c.LlamaCtx < 0 || c.LlamaThreads < 0 {
		return fmt.Errorf("llama_ctx and llama_threads must not be negative")
	}
	if strings.TrimSpace(c.ModelsDir) == "" {
		return fmt.Errorf("models_dir is required")
	}
	return nil
}

// MaxWait is MaxWaitSeconds as a duration.
func (c Config) MaxWait() time.Duration { return time.Duration(c.MaxWaitSeconds) * time.Second }
