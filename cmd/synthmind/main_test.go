package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"synthmind/internal/acquire"
	"synthmind/internal/config"
)

// clearEnv keeps the developer's SYNTHMIND_* and HF_* settings out of tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		k, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(k, config.EnvPrefix) || strings.HasPrefix(k, "HF_") {
			t.Setenv(k, "")
			os.Unsetenv(k)
		}
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootHasCommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"serve", "pull", "setup"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Fatalf("missing command %q: %v", name, err)
		}
	}
}

func TestConfigPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	fromFile, fromEnv, fromFlag := filepath.Join(dir, "file"), filepath.Join(dir, "env"), filepath.Join(dir, "flag")
	file := filepath.Join(dir, "synthmind.yaml")
	body := "models_dir: " + fromFile + "\npersonas_dir: " + filepath.Join(dir, "p") + "\nchat_runtime: llama\n"
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "setup", "--config", file)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if !strings.Contains(out, fromFile) {
		t.Fatalf("file not applied: %q", out)
	}

	t.Setenv("SYNTHMIND_MODELS_DIR", fromEnv)
	if out, _ = run(t, "setup", "--config", file); !strings.Contains(out, fromEnv) || strings.Contains(out, fromFile) {
		t.Fatalf("env must override file: %q", out)
	}

	if out, _ = run(t, "setup", "--config", file, "--models-dir", fromFlag); !strings.Contains(out, fromFlag) || strings.Contains(out, fromEnv) {
		t.Fatalf("flag must override env: %q", out)
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	clearEnv(t)
	_, err := run(t, "setup", "--models-dir", t.TempDir(), "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing config file")
	}
	t.Setenv("SYNTHMIND_CHAT_RUNTIME", "onnx")
	if _, err := run(t, "setup", "--models-dir", t.TempDir(), "--personas-dir", t.TempDir()); err == nil || !strings.Contains(err.Error(), "chat_runtime") {
		t.Fatalf("expected chat_runtime validation error, got %v", err)
	}
}

func TestSetupCreatesDirectories(t *testing.T) {
	clearEnv(t)
	models := filepath.Join(t.TempDir(), "models")
	personas := filepath.Join(t.TempDir(), "personas")
	out, err := run(t, "setup", "--models-dir", models, "--personas-dir", personas)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	for _, c := range acquire.Categories {
		p := filepath.Join(models, c.DirName())
		if st, err := os.Stat(p); err != nil || !st.IsDir() {
			t.Fatalf("missing %s: %v", p, err)
		}
		if !strings.Contains(out, p) {
			t.Fatalf("output lacks %s: %q", p, out)
		}
	}
	if _, err := os.Stat(personas); err != nil {
		t.Fatalf("personas dir: %v", err)
	}
}

func TestPullOffline(t *testing.T) {
	clearEnv(t)
	_, err := run(t, "pull", "distilgpt2", "--offline", "--models-dir", t.TempDir())
	if !acquire.IsDownloadUnavailable(err) {
		t.Fatalf("expected download unavailable, got %v", err)
	}
	if _, err := run(t, "pull", "distilgpt2", "--category", "audio", "--models-dir", t.TempDir()); err == nil {
		t.Fatalf("expected unknown category error")
	}
}

func TestPullFromHub(t *testing.T) {
	clearEnv(t)
	var gets int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/models/owner/vit/revision/main"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":       "owner/vit",
				"siblings": []map[string]any{{"rfilename": "config.json"}},
			})
		case r.URL.Path == "/owner/vit/resolve/main/config.json":
			gets++
			_, _ = w.Write([]byte(`{"id2label":{"0":"cat"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	models := t.TempDir()
	args := []string{"pull", "owner/vit", "--category", "vision", "--models-dir", models, "--hub-endpoint", srv.URL}
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	want := filepath.Join(models, "vision", "owner--vit")
	if !strings.Contains(out, want) {
		t.Fatalf("output %q lacks %s", out, want)
	}
	if !acquire.NewResolver(models).Complete("owner/vit", acquire.VisionModel) {
		t.Fatalf("expected a completed download in %s", want)
	}
	if _, err := run(t, args...); err != nil || gets != 1 {
		t.Fatalf("second pull should reuse the download: err=%v gets=%d", err, gets)
	}
}

func TestPullThroughHubCache(t *testing.T) {
	clearEnv(t)
	t.Setenv("HF_HUB_OFFLINE", "")
	const sha = "89abcdef0123456789abcdef0123456789abcdef"
	body := `{"id2label":{"0":"cat"}}`
	var gets int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/models/owner/vit":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"sha":      sha,
				"siblings": []map[string]any{{"rfilename": "config.json"}},
			})
		case "/owner/vit/resolve/main/config.json":
			w.Header().Set("ETag", `"cfg-etag"`)
			w.Header().Set("X-Repo-Commit", sha)
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			if r.Method == http.MethodGet {
				gets++
				_, _ = w.Write([]byte(body))
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cache := filepath.Join(t.TempDir(), "hf")
	for _, models := range []string{t.TempDir(), t.TempDir()} {
		_, err := run(t, "pull", "owner/vit", "--category", "vision", "--models-dir", models,
			"--hub-endpoint", srv.URL, "--hub-cache-dir", cache)
		if err != nil {
			t.Fatalf("pull: %v", err)
		}
		b, err := os.ReadFile(filepath.Join(models, "vision", "owner--vit", "config.json"))
		if err != nil || string(b) != body {
			t.Fatalf("placed file %q err=%v", b, err)
		}
		if !acquire.NewResolver(models).Complete("owner/vit", acquire.VisionModel) {
			t.Fatalf("expected a completed download in %s", models)
		}
	}
	if gets != 1 {
		t.Fatalf("both stores should share one cached download, gets=%d", gets)
	}
}

func TestBuildComponentsReportsRuntimes(t *testing.T) {
	cfg := config.Config{ModelsDir: t.TempDir(), Offline: true}.WithDefaults()
	c, err := buildComponents(context.Background(), cfg, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.manager.Close()
	rep := c.manager.SanityCheck()
	if !rep.Offline || rep.OK {
		t.Fatalf("expected offline with missing runtimes, got %+v", rep)
	}
	models := c.service.Models()
	if len(models.Defaults) != 3 {
		t.Fatalf("defaults=%+v", models.Defaults)
	}

	cfg.RuntimeURL, cfg.VisionURL, cfg.ChatModel = "http://runtime/v1", "http://vision", "tiny-gpt"
	c2, err := buildComponents(context.Background(), cfg, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c2.manager.Close()
	if rep := c2.manager.SanityCheck(); !rep.OK {
		t.Fatalf("expected all runtimes available: %+v", rep)
	}
	if got := c2.service.Models().Defaults[0].ID; got != "tiny-gpt" {
		t.Fatalf("chat default=%s", got)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn")
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output %q", buf.String())
	}
	if l := newLogger(&buf, "nonsense"); l.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("bad level should fall back to info, got %s", l.GetLevel())
	}
}
