package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"synthmind/internal/acquire"
)

// fakeModel is the instance type built by countingFactory.
type fakeModel struct {
	dir    string
	closed atomic.Bool
}

func (f *fakeModel) Close() error {
	f.closed.Store(true)
	return nil
}

// countingFactory counts constructions and optionally fails or blocks.
type countingFactory struct {
	calls atomic.Int32
	err   error
	delay time.Duration
}

func (f *countingFactory) build(ctx context.Context, dir string) (*fakeModel, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &fakeModel{dir: dir}, nil
}

// countingFetcher writes a config.json per fetch.
type countingFetcher struct {
	calls atomic.Int32
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, id, dir string) error {
	f.calls.Add(1)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{}`), 0o644)
}

func newTestManager(t *testing.T, f acquire.Fetcher, cfg ManagerConfig) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	var opts []acquire.Option
	if f != nil {
		opts = append(opts, acquire.WithFetcher(f))
	}
	cfg.Resolver = acquire.NewResolver(root, opts...)
	m := NewWithConfig(cfg)
	t.Cleanup(func() { _ = m.Close() })
	return m, root
}

var errBoom = errors.New("boom")

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
