package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/fanin/errors"
)

func TestValidatorRequired(t *testing.T) {
	if New().Required("key", "a").HasErrors() {
		t.Error("expected no errors for valid input")
	}
	if !New().Required("key", "").HasErrors() {
		t.Error("expected error for empty required field")
	}
	if !New().Required("key", "   ").HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorNotNil(t *testing.T) {
	if New().NotNil("start", true).HasErrors() {
		t.Error("expected no error when value is present")
	}
	v := New().NotNil("start", false)
	if !v.HasErrors() || v.Errors()[0].Message != "must not be nil" {
		t.Errorf("expected nil error, got %v", v.Errors())
	}
}

func TestValidatorUnique(t *testing.T) {
	seen := map[string]struct{}{}
	v := New()
	v.Unique("tasks[0].key", "a", seen)
	v.Unique("tasks[1].key", "b", seen)
	if v.HasErrors() {
		t.Fatalf("expected no errors for distinct keys, got %v", v.Errors())
	}
	v.Unique("tasks[2].key", "a", seen)
	if !v.HasErrors() {
		t.Fatal("expected error for repeated key")
	}
	if v.Errors()[0].Field != "tasks[2].key" {
		t.Errorf("expected error on tasks[2].key, got %s", v.Errors()[0].Field)
	}
}

func TestValidatorUnique_IgnoresEmpty(t *testing.T) {
	seen := map[string]struct{}{}
	v := New().Unique("k", "", seen).Unique("k", "", seen)
	if v.HasErrors() {
		t.Error("empty values should be left to Required")
	}
}

func TestValidatorHTTPURL(t *testing.T) {
	if New().HTTPURL("url", "http://localhost:8080/a").HasErrors() {
		t.Error("expected http URL to be valid")
	}
	for _, bad := range []string{"", "localhost:8080", "ftp://host/x", "/relative"} {
		if !New().HTTPURL("url", bad).HasErrors() {
			t.Errorf("expected %q to be rejected", bad)
		}
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"fail_fast", "collect_all"}
	if New().OneOf("mode", "collect_all", allowed).HasErrors() {
		t.Error("expected no error for allowed value")
	}
	if !New().OneOf("mode", "first", allowed).HasErrors() {
		t.Error("expected error for disallowed value")
	}
	if New().OneOf("mode", "", allowed).HasErrors() {
		t.Error("expected empty value to be skipped")
	}
}

func TestValidatorCustom(t *testing.T) {
	if !New().Custom(false, "timeout", "must be positive").HasErrors() {
		t.Error("expected error for failed condition")
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Validate() != nil {
		t.Error("expected nil for a validator without errors")
	}

	v := New()
	v.Required("tasks[0].key", "")
	v.NotNil("tasks[0].start", false)
	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected an AppError")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "tasks[0].key: is required") {
		t.Errorf("expected message to list the field, got %q", appErr.Message)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected two field errors in details, got %v", appErr.Details["fields"])
	}
}

type runConfig struct {
	Name        string        `mapstructure:"name" validate:"required"`
	Mode        string        `mapstructure:"mode" validate:"oneof=fail_fast collect_all"`
	TaskTimeout time.Duration `mapstructure:"task_timeout" validate:"gte=0"`
}

type request struct {
	TargetURL string `json:"target_url" validate:"required,http_url"`
}

func TestValidate_Valid(t *testing.T) {
	if err := Validate(runConfig{Name: "x", Mode: "fail_fast"}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestValidate_UsesMapstructureNames(t *testing.T) {
	err := Validate(runConfig{Mode: "whatever", TaskTimeout: -time.Second})
	if err == nil {
		t.Fatal("expected validation error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	for _, want := range []string{"name: is required", "mode: must be one of", "task_timeout: must be greater than or equal to 0"} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected %q in %q", want, appErr.Message)
		}
	}
}

func TestValidate_UsesJSONNames(t *testing.T) {
	err := Validate(request{TargetURL: "not a url"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "target_url: must be a valid URL") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestValidate_NonStruct(t *testing.T) {
	err := Validate("not a struct")
	if err == nil {
		t.Fatal("expected error for non-struct input")
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"TaskTimeout": "task_timeout",
		"Name":        "name",
		"already":     "already",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
