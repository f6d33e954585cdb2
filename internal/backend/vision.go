package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/transform"
)

const defaultInputSize = 224

// Labels maps a class index to its name.
type Labels map[int]string

// Lookup returns the label for class index i.
func (l Labels) Lookup(i int) (string, bool) {
	s, ok := l[i]
	return s, ok
}

// Classifier runs one forward pass and returns the raw logits.
type Classifier interface {
	Classify(ctx context.Context, img image.Image) ([]float32, error)
}

// VisionModel is a classification model: a runner plus its label table.
type VisionModel struct {
	ID        string
	Labels    Labels
	InputSize int
	runner    Classifier
}

// NewVisionModel assembles a model from its parts.
func NewVisionModel(id string, labels Labels, inputSize int, runner Classifier) *VisionModel {
	if inputSize <= 0 {
		inputSize = defaultInputSize
	}
	return &VisionModel{ID: id, Labels: labels, InputSize: inputSize, runner: runner}
}

// Logits classifies img.
func (v *VisionModel) Logits(ctx context.Context, img image.Image) ([]float32, error) {
	if v.runner == nil {
		return nil, errors.New("vision model has no runner")
	}
	return v.runner.Classify(ctx, img)
}

// NewVisionFactory reads the label table and input size from a
// transformers image classification directory and binds the classify
// endpoint.
func NewVisionFactory(opts VisionOptions) Binding[*VisionModel] {
	return func(id string) func(context.Context, string) (*VisionModel, error) {
		return func(ctx context.Context, dir string) (*VisionModel, error) {
			if opts.URL == "" {
				return nil, ErrDependencyUnavailable("vision runtime url not configured")
			}
			labels, err := ReadLabels(dir)
			if err != nil {
				return nil, err
			}
			size, err := ReadInputSize(dir)
			if err != nil {
				return nil, err
			}
			hc := opts.HTTPClient
			if hc == nil {
				hc = http.DefaultClient
			}
			runner := &httpClassifier{
				url:   strings.TrimSuffix(opts.URL, "/") + "/v1/classify",
				model: id,
				size:  size,
				http:  hc,
			}
			return NewVisionModel(id, labels, size, runner), nil
		}
	}
}

// ReadLabels parses id2label from dir/config.json.
func ReadLabels(dir string) (Labels, error) {
	b, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, err
	}
	var cfg struct {
		ID2Label map[string]string `json:"id2label"`
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config.json: %w", err)
	}
	labels := make(Labels, len(cfg.ID2Label))
	for k, v := range cfg.ID2Label {
		i, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("config.json: id2label key %q is not an index", k)
		}
		labels[i] = v
	}
	return labels, nil
}

// ReadInputSize returns the square edge the model expects: crop_size, then
// size from preprocessor_config.json, else 224.
func ReadInputSize(dir string) (int, error) {
	b, err := os.ReadFile(filepath.Join(dir, "preprocessor_config.json"))
	if errors.Is(err, os.ErrNotExist) {
		return defaultInputSize, nil
	}
	if err != nil {
		return 0, err
	}
	var cfg struct {
		CropSize json.RawMessage `json:"crop_size"`
		Size     json.RawMessage `json:"size"`
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return 0, fmt.Errorf("preprocessor_config.json: %w", err)
	}
	for _, raw := range []json.RawMessage{cfg.CropSize, cfg.Size} {
		if n := edge(raw); n > 0 {
			return n, nil
		}
	}
	return defaultInputSize, nil
}

// edge accepts 224, {"height":224,"width":224} or {"shortest_edge":224}.
func edge(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if json.Unmarshal(raw, &n) == nil {
		return n
	}
	var m struct {
		Height       int `json:"height"`
		Width        int `json:"width"`
		ShortestEdge int `json:"shortest_edge"`
	}
	if json.Unmarshal(raw, &m) != nil {
		return 0
	}
	if m.Height > 0 {
		return m.Height
	}
	if m.Width > 0 {
		return m.Width
	}
	return m.ShortestEdge
}

// httpClassifier posts the resized image as PNG and reads {"logits": [...]}.
type httpClassifier struct {
	url   string
	model string
	size  int
	http  *http.Client
}

func (c *httpClassifier) Classify(ctx context.Context, img image.Image) ([]float32, error) {
	resized := transform.Resize(img, c.size, c.size, transform.Linear)
	var buf bytes.Buffer
	if err := png.Encode(&buf, resized); err != nil {
		return nil, err
	}
	u := c.url + "?model=" + url.QueryEscape(c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "image/png")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", c.model, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("classify %s: status %d: %s", c.model, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out struct {
		Logits []float32 `json:"logits"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("classify %s: decode: %w", c.model, err)
	}
	if len(out.Logits) == 0 {
		return nil, fmt.Errorf("classify %s: empty logits", c.model)
	}
	return out.Logits, nil
}
