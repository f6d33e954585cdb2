package backend

import "errors"

// dependencyUnavailableError signals a missing external dependency (e.g., llama.cpp)
// so the HTTP layer can return 503 Service Unavailable instead of 500.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var d dependencyUnavailableError
	return errors.As(err, &d)
}

// unsupportedImageError is returned by DecodeImage for content it cannot decode.
type unsupportedImageError struct{ mime string }

func (e unsupportedImageError) Error() string { return "unsupported image type: " + e.mime }

// IsUnsupportedImage reports whether err came from decoding an unsupported upload.
func IsUnsupportedImage(err error) bool {
	var u unsupportedImageError
	return errors.As(err, &u)
}
