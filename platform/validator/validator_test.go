package validator

import (
	"errors"
	"testing"
)

type sample struct {
	Country string `json:"country" validate:"required,max=5"`
	City    string `json:"city,omitempty" validate:"omitempty,max=3"`
}

func TestFieldErrorsUsesJSONNames(t *testing.T) {
	val := New()

	err := val.Struct(sample{City: "Berlin"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	fields := FieldErrors(err)
	if fields["country"] != "required" {
		t.Fatalf("expected country=required, got %v", fields)
	}
	if fields["city"] != "max=3" {
		t.Fatalf("expected city=max=3, got %v", fields)
	}
}

func TestFieldErrorsIgnoresOtherErrors(t *testing.T) {
	if FieldErrors(errors.New("boom")) != nil {
		t.Fatal("expected nil for non-validation errors")
	}
}
