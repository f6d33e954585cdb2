package acquire

import (
	"errors"
	"strconv"
)

// downloadUnavailableError signals that a model is not on disk and no fetcher
// is configured (offline mode).
type downloadUnavailableError struct{ id string }

func (e downloadUnavailableError) Error() string {
	return "download unavailable (offline, not cached): " + e.id
}

// ErrDownloadUnavailable constructs a downloadUnavailableError for id.
func ErrDownloadUnavailable(id string) error { return downloadUnavailableError{id: id} }

// IsDownloadUnavailable reports whether err indicates a missing model with no way to fetch it.
func IsDownloadUnavailable(err error) bool {
	var e downloadUnavailableError
	return errors.As(err, &e)
}

// fetchFailureError wraps a registry or network error raised while fetching.
type fetchFailureError struct {
	id  string
	err error
}

func (e *fetchFailureError) Error() string { return "fetch " + e.id + ": " + e.err.Error() }

func (e *fetchFailureError) Unwrap() error { return e.err }

// ErrFetchFailure wraps err as a failed fetch of id.
func ErrFetchFailure(id string, err error) error { return &fetchFailureError{id: id, err: err} }

// IsFetchFailure reports whether err came from a failed remote fetch.
func IsFetchFailure(err error) bool {
	var e *fetchFailureError
	return errors.As(err, &e)
}

// invalidIDError rejects identifiers that cannot map to a safe directory.
type invalidIDError struct {
	id     string
	reason string
}

func (e invalidIDError) Error() string { return "invalid model id " + strconv.Quote(e.id) + ": " + e.reason }

// IsInvalidID reports whether err rejects the model identifier itself.
func IsInvalidID(err error) bool {
	var e invalidIDError
	return errors.As(err, &e)
}
