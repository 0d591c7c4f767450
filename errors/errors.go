package errors

import (
	"fmt"
	"net/http"
)

type ErrorType string

const (
	ValidationError     ErrorType = "VALIDATION_ERROR"
	NotFoundError       ErrorType = "NOT_FOUND"
	StorageError        ErrorType = "STORAGE_ERROR"
	RemoteProviderError ErrorType = "REMOTE_PROVIDER_ERROR"
	ServerError         ErrorType = "SERVER_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the underlying error to errors.Is / errors.As.
func (e *AppError) Unwrap() error {
	return e.Raw
}

// GetHTTPStatus returns the status the error should be answered with.
func (e *AppError) GetHTTPStatus() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return getHTTPStatus(e.Type)
}

// IsInternal reports whether the detail must be hidden from clients.
func (e *AppError) IsInternal() bool {
	return e.GetHTTPStatus() >= http.StatusInternalServerError
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

func NotFound(message string, id string) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    message,
		Detail:     fmt.Sprintf("ID: %s", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewStorageError hides the file system error behind message; the raw error
// is kept for logging.
func NewStorageError(err error, message string) *AppError {
	return Wrap(err, StorageError, message)
}

// NewRemoteProviderError is returned when the chat provider call fails.
// Clients only ever see message.
func NewRemoteProviderError(err error, message string) *AppError {
	return Wrap(err, RemoteProviderError, message)
}

func InternalServerError(message string) *AppError {
	return &AppError{
		Type:       ServerError,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
	}
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case StorageError, RemoteProviderError, ServerError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
