package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ErrNetwork wraps transport failures: the server was never reached or the
// connection dropped before a response arrived.
var ErrNetwork = errors.New("network error")

// ValidationError is returned before any request is issued.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// APIError is a non-2xx response rendered by the server as {error, details}.
type APIError struct {
	Status  int
	Message string
	Details []string
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d: %s (%s)", e.Status, e.Message, strings.Join(e.Details, "; "))
}

// Unauthorized reports a missing or expired session.
func (e *APIError) Unauthorized() bool { return e.Status == http.StatusUnauthorized }

type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

func apiError(resp *resty.Response) error {
	out := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		out.Message = body.Error
		out.Details = body.Details
	}
	if out.Message == "" {
		out.Message = http.StatusText(out.Status)
	}
	return out
}

func networkError(err error) error {
	return fmt.Errorf("%w: %w", ErrNetwork, err)
}
