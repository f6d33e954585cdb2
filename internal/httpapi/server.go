// Package httpapi is the JSON/HTTP surface of synthmind: chat, image
// generation, image description, model pulls and status.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"synthmind/internal/backend"
	"synthmind/pkg/types"
)

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}
	// Compression for JSON endpoints; image/png is not in the default list.
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	h := &handlers{svc: svc}
	r.Post("/chat", h.chat)
	r.Post("/images", h.images)
	r.Post("/vision", h.vision)
	r.Post("/models/pull", h.pull)
	r.Get("/models", h.models)
	r.Get("/status", h.status)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// readyz fails while a runtime is unusable. A usable server with nothing
	// cached yet is "idle".
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		rep := svc.Sanity()
		if !rep.OK {
			writeJSONError(w, http.StatusServiceUnavailable, KindDependencyUnavailable, rep.Error)
			return
		}
		w.WriteHeader(http.StatusOK)
		if svc.Ready() {
			_, _ = w.Write([]byte("ready"))
			return
		}
		_, _ = w.Write([]byte("idle"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

type handlers struct {
	svc Service
}

// @Summary      Chat reply
// @Description  Generates one reply from the message, the last two history turns and an optional persona.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      types.ChatRequest  true  "Chat request"
// @Success      200      {object}  types.ChatResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      404      {object}  types.ErrorResponse
// @Failure      429      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /chat [post]
func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req types.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, badRequest("message is required"))
		return
	}
	rl := startRequestLog(r, "chat", req.Model)
	rl.debug().Int("history", len(req.History)).Str("persona_name", req.PersonaName).Msg("chat request")
	ctx, cancel := generationContext(r.Context())
	defer cancel()
	resp, err := h.svc.Chat(ctx, req)
	if err != nil {
		rl.end(h.fail(w, r, err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	rl.end(http.StatusOK, nil)
}

// @Summary      Generate image
// @Tags         images
// @Accept       json
// @Produce      png
// @Param        request  body  types.ImageRequest  true  "Image request"
// @Success      200
// @Failure      400  {object}  types.ErrorResponse
// @Failure      429  {object}  types.ErrorResponse
// @Failure      502  {object}  types.ErrorResponse
// @Router       /images [post]
func (h *handlers) images(w http.ResponseWriter, r *http.Request) {
	var req types.ImageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, badRequest("prompt is required"))
		return
	}
	rl := startRequestLog(r, "image", req.Model)
	ctx, cancel := generationContext(r.Context())
	defer cancel()
	img, err := h.svc.CreateImage(ctx, req)
	if err != nil {
		rl.end(h.fail(w, r, err), err)
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		rl.end(writeError(w, err), err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
	rl.end(http.StatusOK, nil)
}

// @Summary      Describe image
// @Description  Classifies the uploaded image. Accepts multipart field "image" or a raw image body. An empty upload yields "No image provided.".
// @Tags         vision
// @Accept       mpfd
// @Produce      json
// @Param        model  query     string  false  "Vision model id"
// @Param        image  formData  file    false  "Image"
// @Success      200    {object}  types.VisionResponse
// @Failure      400    {object}  types.ErrorResponse
// @Failure      502    {object}  types.ErrorResponse
// @Router       /vision [post]
func (h *handlers) vision(w http.ResponseWriter, r *http.Request) {
	model := r.URL.Query().Get("model")
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	data, err := readUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var img image.Image
	if len(data) > 0 {
		if img, _, err = backend.DecodeImage(bytes.NewReader(data)); err != nil {
			if !backend.IsUnsupportedImage(err) {
				err = badRequest(err.Error())
			}
			writeError(w, err)
			return
		}
	}
	rl := startRequestLog(r, "vision", model)
	rl.debug().Int("bytes", len(data)).Msg("vision request")
	ctx, cancel := generationContext(r.Context())
	defer cancel()
	resp, err := h.svc.Describe(ctx, img, model)
	if err != nil {
		rl.end(h.fail(w, r, err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	rl.end(http.StatusOK, nil)
}

// readUpload returns the bytes of the "image" form file, or the raw body
// for any other content type. A missing file is an empty upload.
func readUpload(r *http.Request) ([]byte, error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "multipart/form-data" {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, uploadError(err, "failed to read image body")
		}
		return b, nil
	}
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return nil, uploadError(err, "invalid multipart body")
	}
	f, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, badRequest("invalid image field")
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, uploadError(err, "failed to read image field")
	}
	return b, nil
}

func uploadError(err error, msg string) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return statusError{status: http.StatusRequestEntityTooLarge, kind: KindInvalidInput, msg: "image too large"}
	}
	return badRequest(msg)
}

// @Summary      Pull model
// @Description  Downloads a model into the local store without loading it.
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        request  body      types.PullRequest  true  "Pull request"
// @Success      200      {object}  types.PullResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      404      {object}  types.ErrorResponse
// @Failure      502      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /models/pull [post]
func (h *handlers) pull(w http.ResponseWriter, r *http.Request) {
	var req types.PullRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rl := startRequestLog(r, "pull", req.Model)
	// Pulls are not bound by the generation timeout. The download itself
	// runs under the resolver's lifetime and stops on shutdown.
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	resp, err := h.svc.Pull(ctx, req)
	if err != nil {
		rl.end(h.fail(w, r, err), err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
	rl.end(http.StatusOK, nil)
}

// @Summary      List models
// @Tags         models
// @Produce      json
// @Success      200  {object}  types.ModelsResponse
// @Router       /models [get]
func (h *handlers) models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Models())
}

// @Summary      Service status
// @Tags         status
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// fail writes the error unless the client is gone, and returns the status
// used for logging.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) int {
	if r.Context().Err() != nil || (serverBaseCtx.Err() != nil && errors.Is(err, context.Canceled)) {
		// Client disconnected or server shutting down; nobody reads the body.
		return 499
	}
	return writeError(w, err)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, KindInvalidInput, "Content-Type must be application/json")
		return false
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSONError(w, http.StatusBadRequest, KindInvalidInput, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
