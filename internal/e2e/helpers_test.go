package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"synthmind/internal/acquire"
	"synthmind/internal/backend"
	"synthmind/internal/capability"
	"synthmind/internal/httpapi"
	"synthmind/internal/hub"
	"synthmind/internal/manager"
)

// fakeHub serves a single repository, owner/demo, with one file. With hold
// set, file downloads signal fetching and stall until the client goes away.
type fakeHub struct {
	gets      atomic.Int32
	hold      atomic.Bool
	fetching  chan struct{}
	abandoned chan struct{}
}

func newFakeHub() *fakeHub {
	return &fakeHub{fetching: make(chan struct{}, 1), abandoned: make(chan struct{}, 1)}
}

func (h *fakeHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/api/models/owner/demo/revision/main"):
		_ = json.NewEncoder(w).Encode(hub.ModelInfo{ID: "owner/demo", Siblings: []hub.Sibling{{Name: "config.json"}}})
	case r.URL.Path == "/owner/demo/resolve/main/config.json":
		h.gets.Add(1)
		if h.hold.Load() {
			h.fetching <- struct{}{}
			<-r.Context().Done()
			h.abandoned <- struct{}{}
			return
		}
		_, _ = w.Write([]byte(`{"model_type":"gpt2"}`))
	default:
		http.NotFound(w, r)
	}
}

// gatedLM replies "ok". While block is set each call signals started and
// waits for release.
type gatedLM struct {
	block   atomic.Bool
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newGatedLM() *gatedLM {
	return &gatedLM{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gatedLM) Generate(ctx context.Context, prompt string, maxNewTokens int) (string, error) {
	g.calls.Add(1)
	if g.block.Load() {
		g.started <- struct{}{}
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "ok", nil
}

type stack struct {
	srv      *httptest.Server
	hub      *fakeHub
	shutdown context.CancelFunc
	lm       *gatedLM
	mgr      *manager.Manager
	loads    atomic.Int32
}

// newStack wires the real hub client, resolver, manager, capabilities and
// router; only the chat runtime is faked.
func newStack(t *testing.T, cfg manager.ManagerConfig) *stack {
	t.Helper()
	s := &stack{hub: newFakeHub(), lm: newGatedLM()}
	hubSrv := httptest.NewServer(s.hub)
	t.Cleanup(hubSrv.Close)

	base, shutdown := context.WithCancel(context.Background())
	s.shutdown = shutdown
	t.Cleanup(shutdown)
	res := acquire.NewResolver(t.TempDir(),
		acquire.WithFetcher(hub.NewClient(hub.WithEndpoint(hubSrv.URL))),
		acquire.WithBaseContext(base))
	if err := res.Provision(); err != nil {
		t.Fatalf("provision: %v", err)
	}
	cfg.Resolver = res
	s.mgr = manager.NewWithConfig(cfg)
	t.Cleanup(func() { _ = s.mgr.Close() })

	chat := capability.NewChat(s.mgr, func(id string) func(context.Context, string) (backend.LanguageModel, error) {
		return func(ctx context.Context, dir string) (backend.LanguageModel, error) {
			s.loads.Add(1)
			return s.lm, nil
		}
	}, zerolog.Nop())
	chat.Default = "owner/demo"
	images := capability.NewImages(s.mgr, backend.NewDiffusionFactory(backend.OpenAIOptions{}), zerolog.Nop())
	vision := capability.NewVision(s.mgr, backend.NewVisionFactory(backend.VisionOptions{}), zerolog.Nop())

	svc := httpapi.NewService(httpapi.ServiceConfig{
		Manager:     s.mgr,
		Resolver:    res,
		Chat:        chat,
		Images:      images,
		Vision:      vision,
		PersonasDir: t.TempDir(),
	})
	s.srv = httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(s.srv.Close)
	return s
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	return do(t, req)
}

func httpPostJSON(t *testing.T, url string, payload string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return do(t, req)
}

func do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
