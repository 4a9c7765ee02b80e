package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestStreamError_New(t *testing.T) {
	err := New(ErrCodeStreamFailure, "boom")
	if err.Code != ErrCodeStreamFailure {
		t.Errorf("expected code %s, got %s", ErrCodeStreamFailure, err.Code)
	}
	if err.Error() != "STREAM_FAILURE: boom" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestStreamError_IsMatchesByCode(t *testing.T) {
	err := IllegalShape("collect", "closed", "graph already has a sink")
	if !stderrors.Is(err, ErrIllegalShape) {
		t.Error("expected IllegalShape to match ErrIllegalShape")
	}
	if stderrors.Is(err, ErrContractViolation) {
		t.Error("IllegalShape must not match ErrContractViolation")
	}

	wrapped := fmt.Errorf("build: %w", err)
	if !stderrors.Is(wrapped, ErrIllegalShape) {
		t.Error("expected wrapped error to match by code")
	}
}

func TestStreamError_IllegalShapeDetails(t *testing.T) {
	err := IllegalShape("of", "publisher", "graph already has a source")
	if err.Details["stage"] != "of" {
		t.Errorf("expected stage=of, got %v", err.Details["stage"])
	}
	if err.Details["shape"] != "publisher" {
		t.Errorf("expected shape=publisher, got %v", err.Details["shape"])
	}
	if !strings.Contains(err.Error(), "already has a source") {
		t.Errorf("expected reason in message, got %q", err.Error())
	}
}

func TestStreamError_StreamFailureUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := StreamFailure("map", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if !strings.Contains(err.Error(), "root cause") {
		t.Errorf("Error() should contain cause, got %q", err.Error())
	}
}

func TestPanicked(t *testing.T) {
	tests := []struct {
		name      string
		recovered any
		contains  string
	}{
		{"error value", fmt.Errorf("bad state"), "bad state"},
		{"string value", "oops", "panic: oops"},
		{"int value", 42, "panic: 42"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Panicked("peek", tc.recovered)
			if err.Code != ErrCodeStreamFailure {
				t.Errorf("expected STREAM_FAILURE, got %s", err.Code)
			}
			if !strings.Contains(err.Error(), tc.contains) {
				t.Errorf("expected %q in %q", tc.contains, err.Error())
			}
		})
	}
}

func TestStreamError_WithDetail(t *testing.T) {
	err := ContractViolation("request(n) requires n > 0").WithDetail("n", int64(-1))
	if err.Details["n"] != int64(-1) {
		t.Errorf("expected n=-1, got %v", err.Details["n"])
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(NullValue("fromCompletion")); got != ErrCodeNullValue {
		t.Errorf("expected NULL_VALUE, got %s", got)
	}
	if got := CodeOf(fmt.Errorf("plain")); got != "" {
		t.Errorf("expected empty code, got %s", got)
	}
}

func TestAsStreamError(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", EngineResolution("no engine registered"))
	se, ok := AsStreamError(wrapped)
	if !ok {
		t.Fatal("expected StreamError in chain")
	}
	if se.Code != ErrCodeEngineResolution {
		t.Errorf("expected ENGINE_RESOLUTION, got %s", se.Code)
	}
	if IsStreamError(fmt.Errorf("plain")) {
		t.Error("plain error should not be a StreamError")
	}
}

func TestIsProgrammerCode(t *testing.T) {
	if !IsProgrammerCode(ErrCodeIllegalShape) {
		t.Error("ILLEGAL_SHAPE is a programmer defect")
	}
	if IsProgrammerCode(ErrCodeStreamFailure) {
		t.Error("STREAM_FAILURE is a data failure")
	}
}
