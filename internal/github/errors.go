package github

import (
	"errors"
	"fmt"
	"strings"
)

// TransportError means the request never produced a usable HTTP response:
// DNS, connect, timeout, or a broken response body.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("executing request %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from GitHub.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	return fmt.Sprintf(
		"unexpected status %d on %s %s: %s",
		e.StatusCode, e.Method, e.Path, msg,
	)
}

// AuthError indicates that the token is missing, invalid or expired.
// It is returned when GitHub answers 401.
type AuthError struct {
	APIError
}

func (e *AuthError) Error() string {
	return fmt.Sprintf(
		"authentication failed (401) on %s %s: run 'ghn auth login' or 'gh auth login'",
		e.Method, e.Path,
	)
}

// DecodeError means the response body was not the JSON we expected.
type DecodeError struct {
	Method string
	Path   string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unmarshaling response from %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsTransient reports whether err is a transport or decode failure, the
// kind where keeping the previous data and trying again later makes sense.
func IsTransient(err error) bool {
	var te *TransportError
	var de *DecodeError
	return errors.As(err, &te) || errors.As(err, &de)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.StatusCode
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
