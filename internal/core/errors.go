// Package core provides the task types and error types shared by the client, the fake service
// and the contract scenarios.
package core

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeTransport indicates the HTTP call itself could not complete
	ErrorTypeTransport ErrorType = "transport_error"
	// ErrorTypeInvalidRequest indicates a request could not be built or was rejected (4xx)
	ErrorTypeInvalidRequest ErrorType = "invalid_request_error"
	// ErrorTypeDecode indicates a response body did not have the expected shape
	ErrorTypeDecode ErrorType = "decode_error"
	// ErrorTypeNotFound indicates a task does not exist (404)
	ErrorTypeNotFound ErrorType = "not_found_error"
	// ErrorTypeValidation indicates a payload is missing required fields (422)
	ErrorTypeValidation ErrorType = "validation_error"
)

// APIError is the error type returned by the task client and served by the fake service.
type APIError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	// Op names the client operation (create, get, ...), empty for server-side errors
	Op string `json:"op,omitempty"`
	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Op, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *APIError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *APIError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeValidation:
		return http.StatusUnprocessableEntity
	case ErrorTypeTransport, ErrorTypeDecode:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to the task service's error envelope
func (e *APIError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"detail": e.Message,
	}
}

// NewTransportError creates an error for a request that never produced a response
func NewTransportError(op string, err error) *APIError {
	msg := "request failed"
	if err != nil {
		msg = "request failed: " + err.Error()
	}
	return &APIError{
		Type:    ErrorTypeTransport,
		Message: msg,
		Op:      op,
		Err:     err,
	}
}

// NewInvalidRequestError creates a new invalid request error (400)
func NewInvalidRequestError(message string, err error) *APIError {
	return &APIError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// NewDecodeError creates an error for a response body that could not be decoded
func NewDecodeError(op string, message string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeDecode,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

// NewNotFoundError creates a new not found error (404)
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewValidationError creates a new validation error (422)
func NewValidationError(message string) *APIError {
	return &APIError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}
