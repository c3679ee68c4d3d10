package errors

import (
	"fmt"
	"testing"
)

func TestCalcError_Error(t *testing.T) {
	err := &CalcError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "element not found",
	}

	expected := "NOT_FOUND: element not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("target_formula is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "target_formula is required" {
		t.Errorf("Message = %q, want %q", err.Message, "target_formula is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("Xx")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["identifier"] != "Xx" {
		t.Errorf("Details[identifier] = %v, want %q", err.Details["identifier"], "Xx")
	}
}

func TestNewInvalidAtomicMass(t *testing.T) {
	err := NewInvalidAtomicMass([]string{"O"})

	if err.Code != ErrInvalidAtomicMass {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidAtomicMass)
	}
	if err.Status != 422 {
		t.Errorf("Status = %d, want 422", err.Status)
	}
	if err.Message != "Invalid atomic mass value. Please enter valid numbers." {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewUpstream(t *testing.T) {
	err := NewUpstream("calculate", "Target mass must be positive")

	if err.Code != ErrUpstream {
		t.Errorf("Code = %q, want %q", err.Code, ErrUpstream)
	}
	if err.Status != 502 {
		t.Errorf("Status = %d, want 502", err.Status)
	}
	if err.Details["operation"] != "calculate" {
		t.Errorf("Details[operation] = %v, want calculate", err.Details["operation"])
	}
}

func TestNewUnavailable(t *testing.T) {
	err := NewUnavailable("parse-formula")

	if err.Code != ErrServiceUnavailable {
		t.Errorf("Code = %q, want %q", err.Code, ErrServiceUnavailable)
	}
	if err.Status != 503 {
		t.Errorf("Status = %d, want 503", err.Status)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	err = NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewNotFound("H"), ErrNotFound, true},
		{"different code", NewNotFound("H"), ErrInternal, false},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil", nil, ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetail(t *testing.T) {
	if got := Detail(NewUpstream("calculate", "Singular system")); got != "Singular system" {
		t.Errorf("Detail(CalcError) = %q", got)
	}
	if got := Detail(fmt.Errorf("connection refused")); got != "connection refused" {
		t.Errorf("Detail(error) = %q", got)
	}
	if got := Detail(nil); got != "" {
		t.Errorf("Detail(nil) = %q", got)
	}
}
