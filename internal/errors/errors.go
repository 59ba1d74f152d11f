// Package errors provides custom error types for the chat widget client.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrClientClosed       = errors.New("client is closed")
	ErrNotLoaded          = errors.New("widget is not loaded")
	ErrFormNotFound       = errors.New("form not found in markup")
	ErrControlNotFound    = errors.New("control not found in markup")
	ErrAlreadyLoaded      = errors.New("widget is already loaded")
	ErrInvalidResponse    = errors.New("invalid response format")
)

// APIError represents a request that reached the server but did not succeed
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError carrying a (truncated) response body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// NetworkError represents a transport failure where no HTTP response was received
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Err: err}
}

// NewNetworkErrorWithEndpoint creates a new NetworkError for a specific endpoint
func NewNetworkErrorWithEndpoint(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// LoadError represents a failure to initialise the widget from the panel markup
type LoadError struct {
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to load chat panel: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("failed to load chat panel: %s", e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new LoadError
func NewLoadError(reason string, err error) *LoadError {
	return &LoadError{Reason: reason, Err: err}
}

// StreamError represents a failure while reading a streamed reply body
type StreamError struct {
	BytesRead int
	Err       error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream interrupted after %d bytes: %v", e.BytesRead, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}

// NewStreamError creates a new StreamError
func NewStreamError(bytesRead int, err error) *StreamError {
	return &StreamError{BytesRead: bytesRead, Err: err}
}

// ParseError represents a markup or configuration parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// IsNetworkError reports whether err is (or wraps) a NetworkError
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsStreamError reports whether err is (or wraps) a StreamError
func IsStreamError(err error) bool {
	var streamErr *StreamError
	return errors.As(err, &streamErr)
}

// IsLoadError reports whether err is (or wraps) a LoadError
func IsLoadError(err error) bool {
	var loadErr *LoadError
	return errors.As(err, &loadErr)
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, status int) bool {
	return GetHTTPStatus(err) == status
}

// GetHTTPStatus extracts the HTTP status code from an APIError, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetEndpoint extracts the endpoint from an APIError or NetworkError
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody extracts the response body captured in an APIError
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// Is is a passthrough to the standard library
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a passthrough to the standard library
func As(err error, target any) bool {
	return errors.As(err, target)
}
