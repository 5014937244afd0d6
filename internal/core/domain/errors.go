package domain

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedCategory indicates an unknown data category.
	ErrUnsupportedCategory = errors.New("unsupported category")

	// Authentication Errors.

	// ErrAuthRequired indicates the games API needs client credentials but none are configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrTokenRefreshFailed indicates a re-authentication attempt failed.
	ErrTokenRefreshFailed = errors.New("token refresh failed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// HTTPError is a non-success HTTP response from a remote API.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http error %d", e.Code)
	}
	return fmt.Sprintf("http error %d: %s", e.Code, e.Message)
}

// NetworkError is a transport-level failure: the request never produced a response.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// UnknownError is any other failure, typically a malformed response body.
type UnknownError struct {
	Cause error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown error: %v", e.Cause)
}

func (e *UnknownError) Unwrap() error {
	return e.Cause
}

// Classify maps an arbitrary error from a remote call onto the error taxonomy.
// Already classified errors and ErrTokenRefreshFailed chains are returned
// unchanged. Context errors become NetworkError.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var httpErr *HTTPError
	var netErr *NetworkError
	var unknownErr *UnknownError
	switch {
	case errors.As(err, &httpErr), errors.As(err, &netErr), errors.As(err, &unknownErr):
		return err
	case errors.Is(err, ErrTokenRefreshFailed):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &NetworkError{Cause: err}
	}

	var urlErr *url.Error
	var opErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &opErr) {
		return &NetworkError{Cause: err}
	}
	return &UnknownError{Cause: err}
}

// IsUnauthorized checks if the error is an auth-rejection or a failed re-authentication.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrTokenRefreshFailed) {
		return true
	}
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Code == 401
}

// IsNotFound checks if the error indicates a missing entity. A failed
// re-authentication is never a missing entity, whatever status it wraps.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrTokenRefreshFailed) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code == 404
	}
	return errors.Is(err, ErrNotFound)
}
