package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "price", Message: "price must be greater than zero", Err: ErrInvalidPrice}
	if err.Error() != "price must be greater than zero" {
		t.Errorf("Error() = %q, want %q", err.Error(), "price must be greater than zero")
	}
}

func TestValidationError_UnwrapsToSentinel(t *testing.T) {
	var err error = &ValidationError{Field: "quantity", Message: "bad", Err: ErrInvalidQuantity}
	wrapped := fmt.Errorf("place order: %w", err)

	if !errors.Is(wrapped, ErrInvalidQuantity) {
		t.Error("errors.Is(wrapped, ErrInvalidQuantity) = false, want true")
	}
	var ve *ValidationError
	if !errors.As(wrapped, &ve) {
		t.Fatal("errors.As(wrapped, *ValidationError) = false, want true")
	}
	if ve.Field != "quantity" {
		t.Errorf("Field = %q, want %q", ve.Field, "quantity")
	}
}

func TestSentinelErrors_AreDistinct(t *testing.T) {
	errs := []error{
		ErrMarketNotFound,
		ErrInvalidSide,
		ErrInvalidPrice,
		ErrInvalidQuantity,
		ErrInvalidSymbol,
	}
	for i := 0; i < len(errs); i++ {
		for j := i + 1; j < len(errs); j++ {
			if errors.Is(errs[i], errs[j]) {
				t.Errorf("errors %v and %v should be distinct", errs[i], errs[j])
			}
		}
	}
}
