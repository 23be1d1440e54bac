package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common sentinel errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal error")
)

// Pipeline taxonomy. Every per-entry failure wraps exactly one of these.
var (
	// ErrTransport covers unresolvable URIs: transport failures, timeouts and non-200 statuses.
	ErrTransport = errors.New("transport error")
	// ErrContentType is returned when a response is not the JSON / JSON-LD the step requires.
	ErrContentType = errors.New("content type error")
	// ErrClassification is returned when a document is neither a profile nor a crate.
	ErrClassification = errors.New("classification error")
	// ErrDuplicate marks a URI that was already registered by an earlier row.
	ErrDuplicate = errors.New("duplicate uri")
	// ErrResolution marks a crate whose conformsTo links lead to no profile.
	ErrResolution = errors.New("resolution error")
	// ErrGraphMerge is returned when a remote profile document cannot be merged as RDF.
	ErrGraphMerge = errors.New("graph merge error")
	// ErrContact marks an entry whose contact failed validation.
	ErrContact = errors.New("invalid contact")
)

// Kind returns the short taxonomy tag for err, or "" when err wraps no known sentinel.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrContact):
		return "contact"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrContentType):
		return "content_type"
	case errors.Is(err, ErrClassification):
		return "classification"
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrGraphMerge):
		return "graph_merge"
	}
	return ""
}

// AppError represents an application-specific error with an HTTP status code.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// MapError maps a common error to an AppError with an appropriate HTTP status code.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, ErrInvalidInput) {
		return NewAppError(http.StatusBadRequest, "Invalid request", err)
	}
	if errors.Is(err, ErrNotFound) {
		return NewAppError(http.StatusNotFound, "Resource not found", err)
	}
	if errors.Is(err, ErrTransport) {
		return NewAppError(http.StatusBadGateway, "Upstream unavailable", err)
	}

	return NewAppError(http.StatusInternalServerError, "Internal server error", err)
}
