package validator

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Target   string `validate:"required,max=254"`
	Code     string `validate:"required,otpcode"`
	Password string `validate:"required,password"`
	Phone    string `validate:"omitempty,irphone"`
}

func newValidator(t *testing.T) *V10Validator {
	t.Helper()

	v, err := NewV10Validator()
	if err != nil {
		t.Fatalf("build validator: %v", err)
	}
	return v
}

func TestV10Validator(t *testing.T) {
	valid := sample{
		Target:   "user@example.com",
		Code:     "482913",
		Password: "correct horse",
		Phone:    "+989123456789",
	}

	t.Run("Valid", func(t *testing.T) {
		v := newValidator(t)

		if err := v.Validate(valid); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("FieldKeysAreSnakeCase", func(t *testing.T) {
		v := newValidator(t)

		in := valid
		in.Target = ""
		err := v.Validate(in)

		var verr V10ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected a V10ValidationError, got %v", err)
		}
		if _, ok := verr.Values()["target"]; !ok {
			t.Fatalf("expected a target entry, got %v", verr.Values())
		}
	})

	t.Run("OTPCode", func(t *testing.T) {
		v := newValidator(t)

		for _, code := range []string{"123", "123456789", "48291a", "48 29 13"} {
			in := valid
			in.Code = code
			if err := v.Validate(in); err == nil {
				t.Fatalf("code %q must be rejected", code)
			}
		}

		for _, code := range []string{"4829", "482913", "48291384"} {
			in := valid
			in.Code = code
			if err := v.Validate(in); err != nil {
				t.Fatalf("code %q must be accepted, got %v", code, err)
			}
		}
	})

	t.Run("Password", func(t *testing.T) {
		v := newValidator(t)

		in := valid
		in.Password = "short"
		if err := v.Validate(in); err == nil {
			t.Fatalf("a seven character password must be rejected")
		}

		in.Password = strings.Repeat("p", 73)
		if err := v.Validate(in); err == nil {
			t.Fatalf("a password over bcrypt's input limit must be rejected")
		}
	})

	t.Run("IranPhone", func(t *testing.T) {
		v := newValidator(t)

		for _, phone := range []string{"+989123456789", "09123456789"} {
			in := valid
			in.Phone = phone
			if err := v.Validate(in); err != nil {
				t.Fatalf("phone %q must be accepted, got %v", phone, err)
			}
		}

		in := valid
		in.Phone = "+442071234567"
		if err := v.Validate(in); err == nil {
			t.Fatalf("a foreign number must be rejected")
		}
	})
}
