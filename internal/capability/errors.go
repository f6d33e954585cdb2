package capability

import (
	"errors"
	"fmt"
)

// inferenceFailureError wraps an error raised by the runtime during a call.
type inferenceFailureError struct {
	op    string
	model string
	err   error
}

func (e *inferenceFailureError) Error() string {
	return fmt.Sprintf("%s with %q failed: %v", e.op, e.model, e.err)
}

func (e *inferenceFailureError) Unwrap() error { return e.err }

// ErrInferenceFailure wraps a runtime error raised by op on model.
func ErrInferenceFailure(op, model string, err error) error {
	return &inferenceFailureError{op: op, model: model, err: err}
}

// IsInferenceFailure reports whether err came from the model call itself.
func IsInferenceFailure(err error) bool {
	var f *inferenceFailureError
	return errors.As(err, &f)
}

// invalidInputError marks a request the adapters refuse before any model work.
type invalidInputError struct{ msg string }

func (e invalidInputError) Error() string { return e.msg }

// ErrInvalidInput rejects a request argument with msg.
func ErrInvalidInput(msg string) error { return invalidInputError{msg: msg} }

// IsInvalidInput reports whether err is a rejected argument.
func IsInvalidInput(err error) bool {
	var i invalidInputError
	return errors.As(err, &i)
}
