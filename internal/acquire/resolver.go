// Package acquire makes model artifacts available on local disk, fetching
// them from a remote registry on first use.
//
// Layout: <root>/<category dir>/<sanitized id>/ plus a completion marker
// written only after a successful fetch.
package acquire

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"synthmind/internal/common/fsutil"
)

// Fetcher copies the complete remote artifact set of id into dir. dir exists
// and is empty when Fetch is called.
type Fetcher interface {
	Fetch(ctx context.Context, id, dir string) error
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, id, dir string) error

func (f FetcherFunc) Fetch(ctx context.Context, id, dir string) error { return f(ctx, id, dir) }

// Resolver maps (id, category) to a local artifact directory.
type Resolver struct {
	root    string
	fetcher Fetcher
	log     zerolog.Logger
	flight  singleflight.Group
	base    context.Context
	now     func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithFetcher enables downloads. Without a fetcher the resolver is offline
// and only serves directories that already completed.
func WithFetcher(f Fetcher) Option { return func(r *Resolver) { r.fetcher = f } }

// WithLogger installs a structured logger.
func WithLogger(l zerolog.Logger) Option { return func(r *Resolver) { r.log = l } }

// WithBaseContext bounds every fetch by ctx. Fetches are shared between
// callers, so they stop when ctx is done rather than when one caller leaves.
func WithBaseContext(ctx context.Context) Option {
	return func(r *Resolver) {
		if ctx != nil {
			r.base = ctx
		}
	}
}

// NewResolver returns a resolver rooted at root.
func NewResolver(root string, opts ...Option) *Resolver {
	r := &Resolver{root: root, log: zerolog.Nop(), base: context.Background(), now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the models root directory.
func (r *Resolver) Root() string { return r.root }

// Offline reports whether no fetcher is configured.
func (r *Resolver) Offline() bool { return r.fetcher == nil }

// Dir returns the artifact directory for id in category c. It does not touch the disk.
func (r *Resolver) Dir(id string, c Category) (string, error) {
	if !c.Valid() {
		return "", fmt.Errorf("unknown model category %q", c)
	}
	name, err := SanitizeID(id)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.root, c.DirName(), name), nil
}

// Complete reports whether id has a completed download in category c.
func (r *Resolver) Complete(id string, c Category) bool {
	dir, err := r.Dir(id, c)
	if err != nil {
		return false
	}
	return complete(dir, id)
}

// complete requires a readable marker written for id. A damaged marker, or
// one left by a different identifier that sanitizes to the same directory,
// counts as a partial download.
func complete(dir, id string) bool {
	m, err := readMarker(dir)
	return err == nil && m.ID == id
}

// Provision creates the category roots.
func (r *Resolver) Provision() error {
	for _, c := range Categories {
		if err := fsutil.EnsureDir(filepath.Join(r.root, c.DirName())); err != nil {
			return err
		}
	}
	return nil
}

// EnsureLocal returns the artifact directory for id, fetching it first when
// no completed download exists. Concurrent calls for the same directory share
// one fetch, which runs under the base context: a caller that gives up stops
// waiting without aborting the download for others. A failed fetch is not
// retried here and leaves no marker, so the next call starts over.
func (r *Resolver) EnsureLocal(ctx context.Context, id string, c Category) (string, error) {
	dir, err := r.Dir(id, c)
	if err != nil {
		return "", err
	}
	if complete(dir, id) {
		return dir, nil
	}
	if r.fetcher == nil {
		return "", ErrDownloadUnavailable(id)
	}
	ch := r.flight.DoChan(dir, func() (any, error) {
		// Re-check: a previous flight may have finished between our check and now.
		if complete(dir, id) {
			return dir, nil
		}
		if err := r.base.Err(); err != nil {
			return dir, ErrFetchFailure(id, err)
		}
		return dir, r.fetch(r.base, id, c, dir)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return dir, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Resolver) fetch(ctx context.Context, id string, c Category, dir string) error {
	start := r.now()
	fetchID := uuid.NewString()
	log := r.log.With().Str("model", id).Str("category", string(c)).Str("fetch_id", fetchID).Logger()

	if fsutil.PathExists(dir) {
		log.Warn().Str("dir", dir).Msg("discarding incomplete download")
		if err := os.RemoveAll(dir); err != nil {
			return &fetchFailureError{id: id, err: fmt.Errorf("remove stale dir: %w", err)}
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &fetchFailureError{id: id, err: fmt.Errorf("create dir: %w", err)}
	}

	log.Info().Str("dir", dir).Msg("fetch start")
	if err := r.fetcher.Fetch(ctx, id, dir); err != nil {
		fetchesTotal.WithLabelValues(string(c), "error").Inc()
		log.Error().Err(err).Dur("dur", r.now().Sub(start)).Msg("fetch failed")
		return ErrFetchFailure(id, err)
	}

	files, err := listFiles(dir)
	if err == nil && len(files) == 0 {
		err = fmt.Errorf("registry returned no files")
	}
	if err == nil {
		err = writeMarker(dir, marker{ID: id, Category: c, FetchID: fetchID, FetchedAt: r.now().UTC(), Files: files})
	}
	if err != nil {
		fetchesTotal.WithLabelValues(string(c), "error").Inc()
		log.Error().Err(err).Msg("fetch incomplete")
		return ErrFetchFailure(id, err)
	}
	fetchesTotal.WithLabelValues(string(c), "ok").Inc()
	log.Info().Int("files", len(files)).Dur("dur", r.now().Sub(start)).Msg("fetch done")
	return nil
}
