// Package hub downloads model repositories from a Hugging Face compatible hub.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultEndpoint    = "https://huggingface.co"
	DefaultRevision    = "main"
	DefaultParallelism = 4

	EnvToken    = "HF_TOKEN"
	EnvEndpoint = "HF_ENDPOINT"

	userAgent = "synthmind/1"
)

// Sibling is one file of a model repository.
type Sibling struct {
	Name string `json:"rfilename"`
	Size int64  `json:"size,omitempty"`
}

// ModelInfo is the subset of the hub's model metadata we rely on.
type ModelInfo struct {
	ID       string    `json:"id"`
	SHA      string    `json:"sha"`
	Siblings []Sibling `json:"siblings"`
}

// Client fetches repositories from the hub. It implements acquire.Fetcher.
type Client struct {
	http        *http.Client
	endpoint    string
	token       string
	revision    string
	parallelism int
	include     []string
	progress    io.Writer
	log         zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithToken(token string) Option { return func(c *Client) { c.token = token } }

func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = strings.TrimSuffix(endpoint, "/")
		}
	}
}

func WithRevision(rev string) Option {
	return func(c *Client) {
		if rev != "" {
			c.revision = rev
		}
	}
}

// WithParallelism bounds the number of concurrent file downloads.
func WithParallelism(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.parallelism = n
		}
	}
}

// WithInclude restricts downloads to files whose name or base name matches
// one of the glob patterns.
func WithInclude(patterns ...string) Option {
	return func(c *Client) { c.include = append([]string(nil), patterns...) }
}

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithProgress renders one progress bar per file on w.
func WithProgress(w io.Writer) Option { return func(c *Client) { c.progress = w } }

func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.log = l } }

// NewClient returns a client configured from the environment and opts.
// Options win over HF_TOKEN and HF_ENDPOINT.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{Timeout: 30 * time.Minute},
		endpoint:    DefaultEndpoint,
		revision:    DefaultRevision,
		parallelism: DefaultParallelism,
		log:         zerolog.Nop(),
	}
	if tok := os.Getenv(EnvToken); tok != "" {
		c.token = tok
	}
	if ep := os.Getenv(EnvEndpoint); ep != "" {
		c.endpoint = strings.TrimSuffix(ep, "/")
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ModelInfo lists the repository files of id at the configured revision.
func (c *Client) ModelInfo(ctx context.Context, id string) (*ModelInfo, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("hub: empty model id")
	}
	u := fmt.Sprintf("%s/api/models/%s/revision/%s?blobs=true", c.endpoint, escapePath(id), url.PathEscape(c.revision))
	req, err := c.newRequest(ctx, u)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hub: model info %s: %w", id, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "model "+id); err != nil {
		return nil, err
	}
	var info ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("hub: decode model info %s: %w", id, err)
	}
	return &info, nil
}

func (c *Client) newRequest(ctx context.Context, u string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// selectFiles validates sibling names and applies include patterns.
func (c *Client) selectFiles(siblings []Sibling) ([]Sibling, error) {
	out := make([]Sibling, 0, len(siblings))
	for _, s := range siblings {
		if !safeName(s.Name) {
			return nil, fmt.Errorf("hub: refusing unsafe file name %q", s.Name)
		}
		if c.included(s.Name) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (c *Client) included(name string) bool {
	if len(c.include) == 0 {
		return true
	}
	base := path.Base(name)
	for _, p := range c.include {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
		if ok, _ := path.Match(p, base); ok {
			return true
		}
	}
	return false
}

// safeName reports whether a slash-separated repository path stays inside
// the target directory.
func safeName(name string) bool {
	if name == "" || strings.ContainsRune(name, '\\') || path.IsAbs(name) {
		return false
	}
	return filepath.IsLocal(filepath.FromSlash(name))
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
