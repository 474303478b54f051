package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindAndCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind Kind
		wantCode string
	}{
		{"not found", NotFound("event", "event %s missing", "x"), KindNotFound, "event_not_found"},
		{"conflict", Conflict("double_booking", "overlap"), KindConflict, "double_booking"},
		{"invalid", InvalidRequest("invalid_time_range", "bad window"), KindInvalidRequest, "invalid_time_range"},
		{"internal", Internal("query failed", errors.New("boom")), KindInternal, "internal"},
		{"unclassified", errors.New("plain"), KindInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Fatalf("KindOf = %v, want %v", got, tt.wantKind)
			}
			if got := CodeOf(tt.err); got != tt.wantCode {
				t.Fatalf("CodeOf = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestWrappedErrorsKeepClassification(t *testing.T) {
	inner := Conflict("capacity_exceeded", "full")
	wrapped := fmt.Errorf("register: %w", inner)
	if KindOf(wrapped) != KindConflict {
		t.Fatalf("kind lost through wrapping")
	}
	if CodeOf(wrapped) != "capacity_exceeded" {
		t.Fatalf("code lost through wrapping")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("query failed", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("Internal should wrap its cause")
	}
}
