package security

import (
	"errors"
	"testing"
)

func TestMinLengthRule(t *testing.T) {
	rule := MinLengthRule(8)

	if err := rule.Validate("short"); err == nil {
		t.Fatal("expected error for password shorter than minimum")
	}
	if err := rule.Validate("longenough"); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}

func TestRequirePasswordStrengthRule(t *testing.T) {
	rule := RequirePasswordStrengthRule(2)

	if err := rule.Validate("password1"); err == nil {
		t.Fatal("expected dictionary password to be rejected")
	}
	if err := rule.Validate("Tr0ub4dour&Horse-Staple!"); err != nil {
		t.Fatalf("expected strong password to pass, got %v", err)
	}
}

func TestStrengthRulePenalizesUserInputs(t *testing.T) {
	rule := RequirePasswordStrengthRule(3, "john.smith@example.com", "John Smith")

	if err := rule.Validate("john.smith@example.com"); err == nil {
		t.Fatal("expected password matching user email to be rejected")
	}
}

func TestValidatorReturnsFirstViolation(t *testing.T) {
	validator := NewPasswordValidator(MinLengthRule(8), RequirePasswordStrengthRule(2))

	err := validator.Validate("ab")
	var verr *PasswordValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected PasswordValidationError, got %v", err)
	}
	if verr.Code != "min_length" {
		t.Fatalf("expected min_length violation first, got %s", verr.Code)
	}
}
