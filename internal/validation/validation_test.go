package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "admin@corp.com", false},
		{"subdomain", "jo.bloggs@mail.example.co.uk", false},
		{"surrounding whitespace trimmed", "  admin@corp.com ", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"no at", "admin.corp.com", true},
		{"no domain dot", "admin@corp", true},
		{"two ats", "a@b@corp.com", true},
		{"inner space", "ad min@corp.com", true},
		{"too long", strings.Repeat("a", 250) + "@x.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateEmail(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				assertField(t, err, "email")
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"exactly six", "abcdef", false},
		{"long", "correct horse battery staple", false},
		{"multibyte counted by rune", "pässwö", false},
		{"empty", "", true},
		{"five", "abcde", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePassword(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				assertField(t, err, "password")
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Kitchen Light", false},
		{"two letters", "Jo", false},
		{"accented", "Zoë Ångström", false},
		{"empty", "", true},
		{"spaces only", "    ", true},
		{"one letter", "J", true},
		{"one letter padded", "  J  ", true},
		{"digits", "Light 1", true},
		{"punctuation", "Kitchen (Main)", true},
		{"too long", strings.Repeat("a", MaxNameLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				assertField(t, err, "name")
			}
		})
	}
}

func TestValidateBrightness(t *testing.T) {
	for v := -5; v <= 105; v++ {
		err := ValidateBrightness(v)
		wantErr := v < 0 || v > 100
		if (err != nil) != wantErr {
			t.Fatalf("ValidateBrightness(%d) error = %v, wantErr %v", v, err, wantErr)
		}
	}

	err := ValidateBrightness(150)
	if err.Error() != "Brightness must be between 0 and 100." {
		t.Errorf("message = %q", err.Error())
	}
	assertField(t, err, "brightness")
}

func assertField(t *testing.T, err error, field string) {
	t.Helper()
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("errors.Is(%v, ErrInvalid) = false", err)
	}
	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("error %T is not *validation.Error", err)
	}
	if verr.Field != field {
		t.Errorf("Field = %q, want %q", verr.Field, field)
	}
	if verr.Reason == "" {
		t.Error("Reason should not be empty")
	}
}
