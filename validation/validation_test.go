package validation

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/kbukum/reactive/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("name", "inproc")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("name", "")
	if !v2.HasErrors() {
		t.Error("expected error for empty required field")
	}

	v3 := New()
	v3.Required("name", "   ")
	if !v3.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"development", "staging", "production"}

	v := New()
	v.OneOf("environment", "staging", allowed)
	if v.HasErrors() {
		t.Error("expected no errors for allowed value")
	}

	v2 := New()
	v2.OneOf("environment", "qa", allowed)
	if !v2.HasErrors() {
		t.Error("expected error for value not in allowed list")
	}

	v3 := New()
	v3.OneOf("environment", "", allowed)
	if v3.HasErrors() {
		t.Error("empty value should be left to Required")
	}
}

func TestValidatorCustom(t *testing.T) {
	v := New()
	v.Custom(false, "engine", "unknown engine")
	if !v.HasErrors() || v.Errors()[0].Message != "unknown engine" {
		t.Errorf("unexpected errors: %v", v.Errors())
	}
}

func TestValidatorValidate(t *testing.T) {
	v := New()
	if err := v.Validate(); err != nil {
		t.Errorf("expected nil for no errors, got %v", err)
	}

	v.Required("name", "").Custom(false, "prefetch", "must be positive")
	err := v.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !stderrors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
	if !strings.Contains(err.Error(), "name: is required") || !strings.Contains(err.Error(), "prefetch") {
		t.Errorf("message should list both fields, got %q", err.Error())
	}
	se, ok := errors.AsStreamError(err)
	if !ok {
		t.Fatal("expected *StreamError")
	}
	fields, _ := se.Details["fields"].([]FieldError)
	if len(fields) != 2 {
		t.Errorf("expected 2 field errors in details, got %v", se.Details["fields"])
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Required("name", "inproc").OneOf("format", "json", []string{"json"}).Custom(true, "prefetch", "")
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

func TestStructValidateValid(t *testing.T) {
	type EngineConfig struct {
		Name     string `mapstructure:"name" validate:"required"`
		Prefetch int    `mapstructure:"prefetch" validate:"min=1,max=65536"`
	}

	if err := Validate(EngineConfig{Name: "inproc", Prefetch: 16}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	type EngineConfig struct {
		Name     string `mapstructure:"name" validate:"required"`
		Prefetch int    `mapstructure:"prefetch" validate:"min=1,max=65536"`
	}

	err := Validate(EngineConfig{Prefetch: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !stderrors.Is(err, errors.ErrInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %v", err)
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "name: is required") {
		t.Errorf("expected error to mention 'name', got %q", errStr)
	}
	if !strings.Contains(errStr, "prefetch: must be at least 1") {
		t.Errorf("expected numeric min message, got %q", errStr)
	}
}

func TestStructValidateStringLength(t *testing.T) {
	type Input struct {
		Code string `validate:"required,min=3,max=10"`
	}

	if err := Validate(Input{Code: "abc"}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}

	err := Validate(Input{Code: "ab"})
	if err == nil {
		t.Fatal("expected error for code too short")
	}
	if !strings.Contains(err.Error(), "code: must be at least 3 characters") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("MaxPrefetch"); got != "max_prefetch" {
		t.Errorf("toSnakeCase = %q", got)
	}
}
