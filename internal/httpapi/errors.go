package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"synthmind/internal/acquire"
	"synthmind/internal/backend"
	"synthmind/internal/capability"
	"synthmind/internal/hub"
	"synthmind/internal/manager"
	"synthmind/internal/persona"
	"synthmind/pkg/types"
)

// Error kinds carried in ErrorResponse.Kind.
const (
	KindInvalidInput          = "invalid_input"
	KindUnsupportedImage      = "unsupported_image"
	KindPersonaNotFound       = "persona_not_found"
	KindModelNotFound         = "model_not_found"
	KindDownloadUnavailable   = "download_unavailable"
	KindFetchFailure          = "fetch_failure"
	KindDependencyUnavailable = "dependency_unavailable"
	KindConstructionFailure   = "construction_failure"
	KindInferenceFailure      = "inference_failure"
	KindTooBusy               = "too_busy"
	KindTimeout               = "timeout"
	KindShuttingDown          = "shutting_down"
	KindInternal              = "internal"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusError is an HTTPError with a kind, used for request validation.
type statusError struct {
	status int
	kind   string
	msg    string
}

func (e statusError) Error() string   { return e.msg }
func (e statusError) StatusCode() int { return e.status }

func badRequest(msg string) error {
	return statusError{status: http.StatusBadRequest, kind: KindInvalidInput, msg: msg}
}

// classify maps an error from the capability layer to a status code and kind.
// Order matters: a dependency error is wrapped in a construction failure, and
// a hub 404 is wrapped in a fetch failure.
func classify(err error) (int, string) {
	var se statusError
	if errors.As(err, &se) {
		return se.status, se.kind
	}
	switch {
	case capability.IsInvalidInput(err), acquire.IsInvalidID(err), errors.Is(err, persona.ErrInvalidName):
		return http.StatusBadRequest, KindInvalidInput
	case backend.IsUnsupportedImage(err):
		return http.StatusBadRequest, KindUnsupportedImage
	case errors.Is(err, persona.ErrNotFound):
		return http.StatusNotFound, KindPersonaNotFound
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests, KindTooBusy
	case acquire.IsDownloadUnavailable(err):
		return http.StatusServiceUnavailable, KindDownloadUnavailable
	case acquire.IsFetchFailure(err) && errors.Is(err, hub.ErrNotFound):
		return http.StatusNotFound, KindModelNotFound
	case acquire.IsFetchFailure(err):
		return http.StatusBadGateway, KindFetchFailure
	case backend.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable, KindDependencyUnavailable
	case manager.IsConstructionFailure(err):
		return http.StatusInternalServerError, KindConstructionFailure
	case capability.IsInferenceFailure(err):
		return http.StatusBadGateway, KindInferenceFailure
	case errors.Is(err, manager.ErrClosed):
		return http.StatusServiceUnavailable, KindShuttingDown
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, KindTimeout
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode(), KindInternal
	}
	return http.StatusInternalServerError, KindInternal
}

// writeError classifies err and writes the JSON payload.
func writeError(w http.ResponseWriter, err error) int {
	status, kind := classify(err)
	errorsTotal.WithLabelValues(kind).Inc()
	writeJSONError(w, status, kind, err.Error())
	return status
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status, Kind: kind})
}
