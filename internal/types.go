// internal/types.go - Common types for internal packages
package internal

import "errors"

// SourceType represents the type of tile data source
type SourceType string

const (
	SourceTypeLocal SourceType = "local"
	SourceTypeBolt  SourceType = "bolt"
)

// Error represents application-specific errors
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError creates a new application error
func NewError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCodeOf returns the code of the first *Error in err's chain, or ""
func ErrorCodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ErrorCode constants for common error types
const (
	ErrorCodeProcessing = "PROCESSING_ERROR"
	ErrorCodeValidation = "VALIDATION_ERROR"
	ErrorCodeConfig     = "CONFIG_ERROR"
	ErrorCodeNotFound   = "NOT_FOUND"
	ErrorCodeFileSystem = "FILESYSTEM_ERROR"
	ErrorCodeStorage    = "STORAGE_ERROR"
)
