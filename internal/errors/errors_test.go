package errors

import (
	"fmt"
	"testing"
)

func TestClipError_Error(t *testing.T) {
	err := &ClipError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "entry not found",
	}

	expected := "NOT_FOUND: entry not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("query is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "query is required" {
		t.Errorf("Message = %q, want %q", err.Message, "query is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("01J8ZZZZZZZZZZZZZZZZZZZZZZ")

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Details["id"] != "01J8ZZZZZZZZZZZZZZZZZZZZZZ" {
		t.Errorf("Details[id] = %v", err.Details["id"])
	}
}

func TestNewContentTooLarge(t *testing.T) {
	err := NewContentTooLarge(1048576, 2000000)

	if err.Code != ErrContentTooLarge {
		t.Errorf("Code = %q, want %q", err.Code, ErrContentTooLarge)
	}
	if err.Status != 413 {
		t.Errorf("Status = %d, want 413", err.Status)
	}
	if err.Details["max_bytes"] != 1048576 {
		t.Errorf("Details[max_bytes] = %v, want 1048576", err.Details["max_bytes"])
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	nilErr := NewInternal(nil)
	if nilErr.Message != "internal error" {
		t.Errorf("Message = %q, want %q", nilErr.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	err := NewNotFound("x")
	if !Is(err, ErrNotFound) {
		t.Error("Is() should match NOT_FOUND")
	}
	if Is(err, ErrInternal) {
		t.Error("Is() should not match INTERNAL")
	}
	if Is(fmt.Errorf("plain"), ErrNotFound) {
		t.Error("Is() should not match a plain error")
	}
}
