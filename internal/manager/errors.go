package manager

import (
	"errors"
	"fmt"

	"synthmind/internal/acquire"
)

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ modelID string }

func (e tooBusyError) Error() string { return "too busy: " + e.modelID }

// ErrTooBusy constructs a tooBusyError for modelID.
func ErrTooBusy(modelID string) error { return tooBusyError{modelID: modelID} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var t tooBusyError
	return errors.As(err, &t)
}

// notCachedError is returned by Exclusive for an instance that was never built.
type notCachedError struct{ key key }

func (e notCachedError) Error() string { return "instance not cached: " + e.key.String() }

// IsNotCached reports whether err refers to a missing cache entry.
func IsNotCached(err error) bool {
	var n notCachedError
	return errors.As(err, &n)
}

// constructionFailureError wraps a factory error. The failed construction is
// not cached.
type constructionFailureError struct {
	category acquire.Category
	id       string
	err      error
}

func (e *constructionFailureError) Error() string {
	return fmt.Sprintf("construct %s model %q: %v", e.category, e.id, e.err)
}

func (e *constructionFailureError) Unwrap() error { return e.err }

// ErrConstructionFailure wraps err as the construction failure of (c, id).
func ErrConstructionFailure(c acquire.Category, id string, err error) error {
	return &constructionFailureError{category: c, id: id, err: err}
}

// IsConstructionFailure reports whether err came from building an instance.
func IsConstructionFailure(err error) bool {
	var c *constructionFailureError
	return errors.As(err, &c)
}

// ErrClosed is returned after Close.
var ErrClosed = errors.New("manager closed")
