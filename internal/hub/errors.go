package hub

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	ErrNotFound     = errors.New("hub: not found")
	ErrUnauthorized = errors.New("hub: unauthorized")
	ErrRateLimited  = errors.New("hub: rate limited")
	ErrBadStatus    = errors.New("hub: unexpected status")
)

// checkStatus maps a registry response to one of the sentinel errors. The
// body is only read on failure.
func checkStatus(resp *http.Response, what string) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, what)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, what)
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := strings.TrimSpace(string(b))
		if msg == "" {
			return fmt.Errorf("%w %d: %s", ErrBadStatus, resp.StatusCode, what)
		}
		return fmt.Errorf("%w %d: %s: %s", ErrBadStatus, resp.StatusCode, what, msg)
	}
}
