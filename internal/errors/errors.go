package errors

import "fmt"

// ErrorCode represents a masscalc error code.
type ErrorCode string

const (
	ErrInvalidRequest     ErrorCode = "INVALID_REQUEST"     // 400
	ErrNotFound           ErrorCode = "NOT_FOUND"           // 404
	ErrFileNotFound       ErrorCode = "FILE_NOT_FOUND"      // 404
	ErrInvalidAtomicMass  ErrorCode = "INVALID_ATOMIC_MASS" // 422
	ErrInternal           ErrorCode = "INTERNAL"            // 500
	ErrUpstream           ErrorCode = "UPSTREAM"            // 502
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE" // 503
)

// CalcError represents a structured error with code, status, and details.
type CalcError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *CalcError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *CalcError {
	return &CalcError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing resource.
func NewNotFound(identifier string) *CalcError {
	return &CalcError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewFileNotFound creates a 404 error for a missing file.
func NewFileNotFound(path string) *CalcError {
	return &CalcError{
		Code:    ErrFileNotFound,
		Status:  404,
		Message: fmt.Sprintf("file not found: %s", path),
		Details: map[string]any{"path": path},
	}
}

// NewInvalidAtomicMass creates a 422 error for atomic-mass text that is not a number.
func NewInvalidAtomicMass(symbols []string) *CalcError {
	return &CalcError{
		Code:    ErrInvalidAtomicMass,
		Status:  422,
		Message: "Invalid atomic mass value. Please enter valid numbers.",
		Details: map[string]any{"symbols": symbols},
	}
}

// NewUpstream creates a 502 error wrapping a rejection from the computation service.
func NewUpstream(operation, detail string) *CalcError {
	return &CalcError{
		Code:    ErrUpstream,
		Status:  502,
		Message: detail,
		Details: map[string]any{"operation": operation},
	}
}

// NewUnavailable creates a 503 error when no backend is configured for an operation.
func NewUnavailable(operation string) *CalcError {
	return &CalcError{
		Code:    ErrServiceUnavailable,
		Status:  503,
		Message: fmt.Sprintf("%s: no computation service configured (set service_url)", operation),
		Details: map[string]any{"operation": operation},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *CalcError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &CalcError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a CalcError with the given code.
func Is(err error, code ErrorCode) bool {
	if cErr, ok := err.(*CalcError); ok {
		return cErr.Code == code
	}
	return false
}

// Detail returns the human-readable part of err: the message for a CalcError,
// err.Error() otherwise.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	if cErr, ok := err.(*CalcError); ok {
		return cErr.Message
	}
	return err.Error()
}
