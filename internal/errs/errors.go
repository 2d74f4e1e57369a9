package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a typed application error carrying the HTTP status it maps to.
// Status codes below 500 mean the caller's input was invalid; 500 and above
// mean the system itself failed, so the client may retry.
type Error struct {
	HTTPStatus int
	Message    string
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets wrapped copies match their sentinel via errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == e.Message && t.HTTPStatus == e.HTTPStatus
}

// WithCause returns a copy of the sentinel wrapping the underlying cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{HTTPStatus: e.HTTPStatus, Message: e.Message, cause: cause}
}

// WithDetail returns a copy of the sentinel with extra caller-facing context
// appended to the message (e.g. the offending filename).
func (e *Error) WithDetail(format string, args ...any) *Error {
	return &Error{
		HTTPStatus: e.HTTPStatus,
		Message:    fmt.Sprintf("%s: %s", e.Message, fmt.Sprintf(format, args...)),
		cause:      e,
	}
}

func newError(status int, message string) *Error {
	return &Error{HTTPStatus: status, Message: message}
}

// Upload and document errors.
var (
	ErrUnsupportedFormat = newError(http.StatusBadRequest, "unsupported file type")
	ErrExtractionFailed  = newError(http.StatusBadRequest, "could not extract text from file")
	ErrEmptyFile         = newError(http.StatusBadRequest, "file contains no extractable text")
	ErrFileTooLarge      = newError(http.StatusBadRequest, "file exceeds the maximum upload size")
	ErrDocumentNotFound  = newError(http.StatusNotFound, "document not found")
)

// Session errors.
var (
	ErrSessionNotFound = newError(http.StatusNotFound, "session not found")
	ErrMissingSession  = newError(http.StatusBadRequest, "missing X-Session-ID header")
)

// Internal errors. These indicate bugs, not bad input.
var (
	ErrEmbeddingFailed   = newError(http.StatusInternalServerError, "failed to embed text")
	ErrIndexInconsistent = newError(http.StatusInternalServerError, "vector index inconsistent with document registry")
)

// Request errors.
var (
	ErrValidation      = newError(http.StatusBadRequest, "invalid request")
	ErrUnknownProvider = newError(http.StatusBadRequest, "unknown llm provider")
)

// As extracts a typed *Error from an error chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
