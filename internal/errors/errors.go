// Package errors provides typed application errors for the settings engine.
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a typed application error with an exit code for the CLI
type AppError struct {
	ExitCode int    `json:"-"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return e.Message
}

// Is reports whether target is an AppError with the same code, so that
// errors.Is works across wrapped and re-messaged instances.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Predefined application errors
var (
	ErrConfigNotFound     = &AppError{ExitCode: 2, Code: "CONFIG_NOT_FOUND", Message: "Config file not found"}
	ErrPermissionDenied   = &AppError{ExitCode: 3, Code: "PERMISSION_DENIED", Message: "Permission denied"}
	ErrGameRunning        = &AppError{ExitCode: 4, Code: "GAME_RUNNING", Message: "Game is currently running"}
	ErrBackupFailed       = &AppError{ExitCode: 5, Code: "BACKUP_FAILED", Message: "Failed to create backup"}
	ErrWriteFailed        = &AppError{ExitCode: 6, Code: "WRITE_FAILED", Message: "Failed to write config file"}
	ErrDisplayUnavailable = &AppError{ExitCode: 7, Code: "DISPLAY_UNAVAILABLE", Message: "Display brightness metadata unavailable"}
	ErrEncoding           = &AppError{ExitCode: 8, Code: "ENCODING_ERROR", Message: "Config file has an unsupported or malformed encoding"}
	ErrValidation         = &AppError{ExitCode: 9, Code: "VALIDATION_FAILED", Message: "Validation failed"}
	ErrIO                 = &AppError{ExitCode: 10, Code: "IO_ERROR", Message: "I/O operation failed"}
	ErrDatabase           = &AppError{ExitCode: 11, Code: "DATABASE_ERROR", Message: "Database operation failed"}
	ErrInternal           = &AppError{ExitCode: 1, Code: "INTERNAL_ERROR", Message: "Internal error"}
)

// NewAppError creates a new AppError based on a predefined error with a custom message
func NewAppError(baseError *AppError, message string) *AppError {
	return &AppError{
		ExitCode: baseError.ExitCode,
		Code:     baseError.Code,
		Message:  message,
	}
}

// NewAppErrorf creates a new AppError with a formatted message
func NewAppErrorf(baseError *AppError, format string, args ...any) *AppError {
	return NewAppError(baseError, fmt.Sprintf(format, args...))
}

// NewNotFoundError creates a config-not-found error with a custom message
func NewNotFoundError(message string) *AppError {
	return NewAppError(ErrConfigNotFound, message)
}

// NewValidationError creates a validation error with a custom message
func NewValidationError(message string) *AppError {
	return NewAppError(ErrValidation, message)
}

// ExitCodeOf returns the CLI exit code for err: the AppError's own code when
// typed, 1 otherwise, 0 for nil.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return 1
}
