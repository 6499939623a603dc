// Package serviceerr defines the error taxonomy shared by the auth and app
// service clients. Responses are classified exactly once, at the client
// boundary, so callers can branch on error type instead of raw status codes.
package serviceerr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrNoSession = errors.New("no session available")

// ValidationError is a 422 with optional field-level messages.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// AuthError is a 401 or 403. Session-bearing flows clear the stored
// session when they observe one.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("not authorised (status %d)", e.Status)
}

// NotFoundError is a 404.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "not found"
}

// ServerError is any 5xx.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error (status %d)", e.Status)
}

// NetworkError wraps a transport failure: the request never produced an
// HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// errorBody is the error envelope both backends use.
type errorBody struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

// FromResponse maps a non-2xx response to the taxonomy. The body is decoded
// best effort; an undecodable body still yields a correctly typed error.
func FromResponse(status int, body []byte) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthError{Status: status, Message: eb.Detail}
	case status == http.StatusNotFound:
		return &NotFoundError{Message: eb.Detail}
	case status == http.StatusUnprocessableEntity:
		return &ValidationError{Message: eb.Detail, Fields: eb.Fields}
	case status >= 500:
		return &ServerError{Status: status, Message: eb.Detail}
	case status >= 400:
		// remaining 4xx (wrong OTP codes and the like) are validation-shaped
		return &ValidationError{Message: eb.Detail, Fields: eb.Fields}
	default:
		return &ServerError{Status: status, Message: eb.Detail}
	}
}

// IsAuthError reports whether err is (or wraps) an AuthError. A true result
// is the one signal that invalidates stored session cookies.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
