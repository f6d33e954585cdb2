package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SYNTHMIND_"

// ApplyEnv overrides fields from SYNTHMIND_* variables, e.g.
// SYNTHMIND_MODELS_DIR or SYNTHMIND_OFFLINE=true. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	str := map[string]*string{
		"ADDR":            &c.Addr,
		"MODELS_DIR":      &c.ModelsDir,
		"PERSONAS_DIR":    &c.PersonasDir,
		"HUB_ENDPOINT":    &c.HubEndpoint,
		"HUB_TOKEN":       &c.HubToken,
		"HUB_CACHE_DIR":   &c.HubCacheDir,
		"CHAT_MODEL":      &c.ChatModel,
		"VISION_MODEL":    &c.VisionModel,
		"IMAGE_MODEL":     &c.ImageModel,
		"CHAT_RUNTIME":    &c.ChatRuntime,
		"RUNTIME_URL":     &c.RuntimeURL,
		"RUNTIME_API_KEY": &c.RuntimeAPIKey,
		"VISION_URL":      &c.VisionURL,
		"LOG_LEVEL":       &c.LogLevel,
	}
	for k, p := range str {
		if v, ok := lookup(EnvPrefix + k); ok {
			*p = v
		}
	}
	ints := map[string]*int{
		"HUB_PARALLELISM":  &c.HubParallelism,
		"LLAMA_CTX":        &c.LlamaCtx,
		"LLAMA_THREADS":    &c.LlamaThreads,
		"MAX_WAIT_SECONDS": &c.MaxWaitSeconds,
	}
	for k, p := range ints {
		if v, ok := lookup(EnvPrefix + k); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, k, err)
			}
			*p = n
		}
	}
	bools := map[string]*bool{
		"OFFLINE":  &c.Offline,
		"PROGRESS": &c.Progress,
	}
	for k, p := range bools {
		if v, ok := lookup(EnvPrefix + k); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, k, err)
			}
			*p = b
		}
	}
	if v, ok := lookup(EnvPrefix + "CORS_ORIGINS"); ok {
		c.CORSOrigins = SplitCSV(v)
	}
	return nil
}

// SplitCSV splits a comma separated list, dropping blanks.
func SplitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
