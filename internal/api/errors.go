package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"git.sr.ht/~jakintosh/shopfront/internal/domain"
)

var (
	ErrNotFound     = domain.ErrNotFound
	ErrUnauthorized = domain.ErrUnauthorized
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// APIError surfaces non-2xx responses from the backend.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status=%d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status=%d", e.Method, e.Path, e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// UserMessage is the text shown to a person for err, preferring the
// backend's own message.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusConflict && apiErr.Message == "" {
			return "Product title must be unique."
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	if errors.Is(err, ErrInvalidInput) {
		return err.Error()
	}
	return fallback
}

func newAPIError(method, path string, status int, body []byte) error {
	e := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: status,
	}
	var env struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &env) == nil && env.Message != "" {
		e.Message = env.Message
	} else if len(body) > 0 && len(body) < 512 && !json.Valid(body) {
		e.Message = string(body)
	}
	return e
}
