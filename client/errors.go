package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	// ErrUnauthorized means the session is missing or expired. It is
	// terminal for the current session and callers should redirect to
	// sign-in rather than retry.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound covers both genuinely missing todos and todos owned
	// by someone else. The server masks foreign rows as not found, so
	// the client cannot and does not distinguish the two.
	ErrNotFound = errors.New("todo not found")
)

// ValidationError reports a request the server rejected as invalid,
// such as an empty title.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// APIError is the fallback for any unexpected non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// translateError maps a non-2xx response onto the error taxonomy.
func translateError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var payload errorBody
	_ = json.Unmarshal(body, &payload)
	message := payload.Message
	if message == "" {
		message = payload.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound, http.StatusForbidden:
		return ErrNotFound
	case http.StatusBadRequest:
		return &ValidationError{Message: message}
	default:
		return &APIError{Status: resp.StatusCode, Message: message}
	}
}
