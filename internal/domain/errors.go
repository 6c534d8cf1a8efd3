package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code and message.
// It lets errors.Is match the sentinel values below after they have been
// re-wrapped with a cause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeEmbeddingService = "EMBEDDING_SERVICE_FAILURE"
	ErrCodeChatService      = "CHAT_SERVICE_FAILURE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyFileName     = NewDomainError(ErrCodeValidation, "file name is required")
	ErrEmptyQuestion     = NewDomainError(ErrCodeValidation, "question is required")
	ErrInvalidTopK       = NewDomainError(ErrCodeValidation, "top_k must be greater than zero")
	ErrInvalidChunkSize  = NewDomainError(ErrCodeValidation, "chunk size must be greater than zero")
	ErrInvalidOverlap    = NewDomainError(ErrCodeValidation, "overlap must be non-negative and smaller than chunk size")
	ErrInvalidDimensions = NewDomainError(ErrCodeValidation, "embedding dimensions do not match the store")
)

// Not found errors
var (
	ErrDocumentNotFound     = NewDomainError(ErrCodeNotFound, "document not found")
	ErrStorageNotConfigured = NewDomainError(ErrCodeNotFound, "document archive not configured")
)

// NewInvalidArgument creates a validation error with a custom message.
func NewInvalidArgument(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// NewEmbeddingServiceFailure wraps an error raised by the embedding provider.
func NewEmbeddingServiceFailure(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbeddingService, "embedding service failure", err)
}

// NewChatServiceFailure wraps an error raised by the chat provider.
func NewChatServiceFailure(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeChatService, "chat service failure", err)
}

// ErrorCode returns the code of the first DomainError in err's chain, or an
// empty string when there is none.
func ErrorCode(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// IsValidation reports whether err is an invalid argument error.
func IsValidation(err error) bool {
	return ErrorCode(err) == ErrCodeValidation
}

// IsEmbeddingFailure reports whether err came from the embedding provider.
func IsEmbeddingFailure(err error) bool {
	return ErrorCode(err) == ErrCodeEmbeddingService
}

// IsChatFailure reports whether err came from the chat provider.
func IsChatFailure(err error) bool {
	return ErrorCode(err) == ErrCodeChatService
}
