package hub

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	hfhub "github.com/cozy-creator/hf-hub/hub"
	"github.com/vbauerster/mpb/v7"
)

// SnapshotFetcher downloads through a Hugging Face cache directory
// (models--owner--name with blobs and snapshots/<sha>) and places the
// resulting snapshot in the store. Stores and other tools pointed at the same
// cache share one download. It implements acquire.Fetcher.
type SnapshotFetcher struct {
	cacheDir string
	c        *Client
}

// NewSnapshotFetcher uses cacheDir as the shared cache. Endpoint, token,
// include patterns, progress and logger come from opts; parallelism does not
// apply, files are fetched one at a time.
func NewSnapshotFetcher(cacheDir string, opts ...Option) (*SnapshotFetcher, error) {
	if strings.TrimSpace(cacheDir) == "" {
		return nil, fmt.Errorf("hub: empty cache dir")
	}
	abs, err := filepath.Abs(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("hub: cache dir %s: %w", cacheDir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("hub: cache dir %s: %w", abs, err)
	}
	return &SnapshotFetcher{cacheDir: abs, c: NewClient(opts...)}, nil
}

// CacheDir is the absolute cache directory.
func (s *SnapshotFetcher) CacheDir() string { return s.cacheDir }

type snapshotResult struct {
	dir string
	err error
}

// Fetch downloads id into the cache, then links each selected snapshot file
// into dir. The cache download itself cannot be interrupted: when ctx ends
// first, Fetch returns ctx.Err() and the download completes in the
// background, leaving dir for the next attempt.
func (s *SnapshotFetcher) Fetch(ctx context.Context, id, dir string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("hub: empty model id")
	}
	start := time.Now()
	s.c.log.Info().Str("model", id).Str("cache", s.cacheDir).Msg("hub snapshot")

	out := s.c.progress
	if out == nil {
		out = io.Discard
	}
	// The downloader adds a bar per file and leaves failed bars open, so
	// the container is stopped explicitly before waiting on it.
	pctx, stop := context.WithCancel(context.Background())
	p := mpb.NewWithContext(pctx, mpb.WithOutput(out), mpb.WithWidth(60), mpb.WithRefreshRate(180*time.Millisecond))
	hc := hfhub.NewClient(s.c.endpoint, s.c.token, s.cacheDir)
	hc.UserAgent = userAgent
	hc.Progress = p

	done := make(chan snapshotResult, 1)
	go func() {
		snap, err := hc.Download(&hfhub.DownloadParams{
			Repo:          &hfhub.Repo{Id: id},
			Revision:      s.c.revision,
			AllowPatterns: s.c.include,
		})
		stop()
		p.Wait()
		done <- snapshotResult{dir: snap, err: err}
	}()

	var res snapshotResult
	select {
	case res = <-done:
	case <-ctx.Done():
		s.c.log.Warn().Str("model", id).Msg("hub snapshot abandoned; the cache download continues")
		return ctx.Err()
	}
	if res.err != nil {
		return snapshotError(id, res.err)
	}

	n, err := s.place(ctx, res.dir, dir)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("hub: %s has no matching files", id)
	}
	s.c.log.Info().Str("model", id).Int("files", n).Dur("dur", time.Since(start)).Msg("hub snapshot done")
	return nil
}

// place links or copies the selected files of snap into dir.
func (s *SnapshotFetcher) place(ctx context.Context, snap, dir string) (int, error) {
	var n int
	err := filepath.WalkDir(snap, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(snap, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !safeName(name) {
			return fmt.Errorf("hub: refusing unsafe file name %q", name)
		}
		if !s.c.included(name) {
			return nil
		}
		if err := placeFile(p, filepath.Join(dir, rel)); err != nil {
			return fmt.Errorf("hub: place %s: %w", name, err)
		}
		n++
		return nil
	})
	return n, err
}

// placeFile hard links the blob behind src to dst, copying when the link
// cannot be made (another filesystem, or no link support).
func placeFile(src, dst string) error {
	blob, err := filepath.EvalSymlinks(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Link(blob, dst); err == nil {
		return nil
	}

	in, err := os.Open(blob)
	if err != nil {
		return err
	}
	defer in.Close()
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".part-*")
	if err != nil {
		return err
	}
	_, err = io.Copy(tmp, in)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), dst)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

var statusPattern = regexp.MustCompile(`status:? (\d{3})`)

// snapshotError maps the downloader's textual status errors onto the
// package sentinels.
func snapshotError(id string, err error) error {
	m := statusPattern.FindStringSubmatch(err.Error())
	if m == nil {
		return fmt.Errorf("hub: snapshot %s: %w", id, err)
	}
	sentinel := ErrBadStatus
	switch m[1] {
	case "404":
		sentinel = ErrNotFound
	case "401", "403":
		sentinel = ErrUnauthorized
	case "429":
		sentinel = ErrRateLimited
	}
	return fmt.Errorf("%w: %s: %v", sentinel, id, err)
}
