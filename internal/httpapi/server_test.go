package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"synthmind/internal/capability"
	"synthmind/internal/manager"
	"synthmind/pkg/types"
)

type mockService struct {
	chatReq  types.ChatRequest
	reply    string
	err      error
	gotImage image.Image
	model    string
	models   types.ModelsResponse
	status   types.StatusResponse
	sanity   manager.SanityReport
	ready    bool
}

func (m *mockService) Chat(ctx context.Context, req types.ChatRequest) (types.ChatResponse, error) {
	m.chatReq = req
	if m.err != nil {
		return types.ChatResponse{}, m.err
	}
	return types.ChatResponse{Reply: m.reply}, nil
}

func (m *mockService) CreateImage(ctx context.Context, req types.ImageRequest) (image.Image, error) {
	if m.err != nil {
		return nil, m.err
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func (m *mockService) Describe(ctx context.Context, img image.Image, model string) (types.VisionResponse, error) {
	m.gotImage, m.model = img, model
	if m.err != nil {
		return types.VisionResponse{}, m.err
	}
	if img == nil {
		return types.VisionResponse{Description: capability.NoImageMessage}, nil
	}
	return types.VisionResponse{Description: "Detected: cat"}, nil
}

func (m *mockService) Pull(ctx context.Context, req types.PullRequest) (types.PullResponse, error) {
	if m.err != nil {
		return types.PullResponse{}, m.err
	}
	return types.PullResponse{Model: req.Model, Category: req.Category, Path: "/models/" + req.Model}, nil
}

func (m *mockService) Models() types.ModelsResponse { return m.models }
func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Sanity() manager.SanityReport { return m.sanity }
func (m *mockService) Ready() bool                  { return m.ready }

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var e types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body is not json: %v (%q)", err, w.Body.String())
	}
	return e
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func TestChatHandler(t *testing.T) {
	svc := &mockService{reply: "Ahoy"}
	h := NewMux(svc)
	w := postJSON(t, h, "/chat", `{"message":"hi","persona_name":"pirate","history":[{"user":"a","assistant":"b"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp types.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Reply != "Ahoy" {
		t.Fatalf("resp=%+v err=%v", resp, err)
	}
	if svc.chatReq.PersonaName != "pirate" || len(svc.chatReq.History) != 1 {
		t.Fatalf("request not passed through: %+v", svc.chatReq)
	}
}

func TestChatValidation(t *testing.T) {
	h := NewMux(&mockService{})

	w := postJSON(t, h, "/chat", `{"message":"   "}`)
	if w.Code != http.StatusBadRequest || decodeError(t, w).Kind != KindInvalidInput {
		t.Fatalf("blank message: status=%d body=%s", w.Code, w.Body.String())
	}

	w = postJSON(t, h, "/chat", `{"message":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad json: status=%d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "text/plain")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("content type: status=%d", w.Code)
	}
}

func TestContentTypeCaseInsensitive(t *testing.T) {
	h := NewMux(&mockService{reply: "ok"})
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "Application/JSON; charset=utf-8")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with mixed-case content-type, got %d", w.Code)
	}
}

func TestBodyLimit(t *testing.T) {
	SetMaxBodyBytes(16)
	defer SetMaxBodyBytes(0)
	h := NewMux(&mockService{})
	w := postJSON(t, h, "/chat", `{"message":"`+strings.Repeat("x", 64)+`"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized body, got %d", w.Code)
	}
}

func TestImagesHandlerReturnsPNG(t *testing.T) {
	h := NewMux(&mockService{})
	w := postJSON(t, h, "/images", `{"prompt":"a lighthouse","size":4}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content-type=%s", ct)
	}
	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil || img.Bounds().Dx() != 4 {
		t.Fatalf("bad png: %v", err)
	}

	w = postJSON(t, h, "/images", `{"prompt":""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty prompt: status=%d", w.Code)
	}
}

func TestVisionMultipart(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "cat.png")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	_, _ = fw.Write(pngBytes(t))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/vision?model=owner/vit", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotImage == nil || svc.model != "owner/vit" {
		t.Fatalf("image or model not passed: %v %q", svc.gotImage, svc.model)
	}
	var resp types.VisionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Description != "Detected: cat" {
		t.Fatalf("description=%q", resp.Description)
	}
}

func TestVisionRawBody(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)
	req := httptest.NewRequest(http.MethodPost, "/vision", bytes.NewReader(pngBytes(t)))
	req.Header.Set("Content-Type", "image/png")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK || svc.gotImage == nil {
		t.Fatalf("status=%d image=%v", w.Code, svc.gotImage)
	}
}

func TestVisionEmptyUpload(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("note", "no file")
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/vision", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	for _, req := range []*http.Request{req, httptest.NewRequest(http.MethodPost, "/vision", nil)} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		var resp types.VisionResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Description != capability.NoImageMessage {
			t.Fatalf("description=%q", resp.Description)
		}
	}
}

func TestVisionRejectsNonImage(t *testing.T) {
	h := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/vision", strings.NewReader("%PDF-1.4 not an image"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || decodeError(t, w).Kind != KindUnsupportedImage {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	corrupt := pngBytes(t)[:20]
	req = httptest.NewRequest(http.MethodPost, "/vision", bytes.NewReader(corrupt))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || decodeError(t, w).Kind != KindInvalidInput {
		t.Fatalf("corrupt png: status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestVisionUploadLimit(t *testing.T) {
	SetMaxImageBytes(64)
	defer SetMaxImageBytes(0)
	h := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/vision", bytes.NewReader(make([]byte, 1024)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestPullHandler(t *testing.T) {
	h := NewMux(&mockService{})
	w := postJSON(t, h, "/models/pull", `{"model":"distilgpt2","category":"chat"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp types.PullResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Path != "/models/distilgpt2" {
		t.Fatalf("resp=%+v err=%v", resp, err)
	}
}

func TestModelsAndStatusHandlers(t *testing.T) {
	svc := &mockService{
		models: types.ModelsResponse{Defaults: []types.ModelRef{{ID: "distilgpt2", Category: "chat"}}},
		status: types.StatusResponse{LoadsTotal: 3, Offline: true},
	}
	h := NewMux(svc)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/models", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("models status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var models types.ModelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &models); err != nil || len(models.Defaults) != 1 {
		t.Fatalf("models=%+v err=%v", models, err)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
	var st types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil || st.LoadsTotal != 3 || !st.Offline {
		t.Fatalf("status=%+v err=%v", st, err)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	svc := &mockService{sanity: manager.SanityReport{OK: true}}
	h := NewMux(svc)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK || w.Body.String() != "idle" {
		t.Fatalf("readyz idle: %d %q", w.Code, w.Body.String())
	}

	svc.ready = true
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Body.String() != "ready" {
		t.Fatalf("readyz ready: %q", w.Body.String())
	}

	svc.sanity = manager.SanityReport{OK: false, Error: "vision: vision_url not set"}
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(decodeError(t, w).Error, "vision_url") {
		t.Fatalf("readyz failing: %d %s", w.Code, w.Body.String())
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)

	h := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected CORS header Access-Control-Allow-Origin to be set, got empty")
	}
}

func TestCORSDisabledByDefault(t *testing.T) {
	h := NewMux(&mockService{})
	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unexpected CORS header %q", got)
	}
}
