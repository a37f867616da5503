// Package validation holds the input rules applied at every HomeGuard
// boundary before a device or user is constructed or mutated.
//
// Each rule is a pure function returning nil for valid input or an *Error
// naming the offending field:
//
//	if err := validation.ValidateBrightness(v); err != nil {
//	    var verr *validation.Error
//	    errors.As(err, &verr) // verr.Field == "brightness"
//	}
//
// All returned errors match ErrInvalid with errors.Is.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	MinNameLength     = 2
	MaxNameLength     = 100
	MinBrightness     = 0
	MaxBrightness     = 100

	maxEmailLength = 254
)

// ErrInvalid is matched by every *Error.
var ErrInvalid = errors.New("validation: invalid input")

// local@domain.tld, no whitespace, one @.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Error describes why a single field was rejected.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

// Is reports ErrInvalid as a match so callers need not know the field.
func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

func invalid(field, reason string) error {
	return &Error{Field: field, Reason: reason}
}

// ValidateEmail checks that email is non-empty and shaped like local@domain.tld.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		return invalid("email", "Email cannot be empty.")
	case len(email) > maxEmailLength:
		return invalid("email", fmt.Sprintf("Email must be at most %d characters.", maxEmailLength))
	case !emailRegex.MatchString(email):
		return invalid("email", "Invalid email format.")
	}
	return nil
}

// ValidatePassword checks that password has at least MinPasswordLength characters.
func ValidatePassword(password string) error {
	if password == "" {
		return invalid("password", "Password cannot be empty.")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid("password", fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	}
	return nil
}

// ValidateName checks a person or device name: letters and spaces only,
// at least MinNameLength characters once trimmed.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("name", "Name cannot be empty.")
	}

	n := utf8.RuneCountInString(trimmed)
	if n < MinNameLength {
		return invalid("name", fmt.Sprintf("Name must be at least %d characters.", MinNameLength))
	}
	if n > MaxNameLength {
		return invalid("name", fmt.Sprintf("Name must be at most %d characters.", MaxNameLength))
	}

	for _, r := range trimmed {
		if !unicode.IsLetter(r) && r != ' ' {
			return invalid("name", "Name can only contain letters and spaces.")
		}
	}
	return nil
}

// ValidateBrightness checks that value lies in [MinBrightness, MaxBrightness].
func ValidateBrightness(value int) error {
	if value < MinBrightness || value > MaxBrightness {
		return invalid("brightness", "Brightness must be between 0 and 100.")
	}
	return nil
}
