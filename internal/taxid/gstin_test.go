package taxid

import (
	"errors"
	"testing"
)

func TestValidateGSTINAccepted(t *testing.T) {
	if err := ValidateGSTIN("27AAPFU0939F1ZV"); err != nil {
		t.Fatalf("expected valid gstin, got %v", err)
	}
	if err := ValidateGSTIN(" 27aapfu0939f1zv "); err != nil {
		t.Fatalf("expected normalization to accept, got %v", err)
	}
	if err := ValidateGSTIN(""); err != nil {
		t.Fatalf("expected empty gstin to be accepted, got %v", err)
	}
}

func TestValidateGSTINBadCheckDigit(t *testing.T) {
	err := ValidateGSTIN("27AAPFU0939F1ZW")
	if !errors.Is(err, ErrInvalidGSTIN) {
		t.Fatalf("expected ErrInvalidGSTIN, got %v", err)
	}
}

func TestValidateGSTINBadFormat(t *testing.T) {
	cases := []string{
		"27AAPFU0939F1V",   // too short
		"27AAPFU0939F1XV",  // missing Z marker
		"2AAAPFU0939F1ZV",  // state code not numeric
		"27AAPFU09399F1ZV", // too long
	}
	for _, value := range cases {
		if err := ValidateGSTIN(value); !errors.Is(err, ErrInvalidGSTIN) {
			t.Fatalf("expected ErrInvalidGSTIN for %q, got %v", value, err)
		}
	}
}
