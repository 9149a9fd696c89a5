// Package client mirrors the browser widget: form field validation, the
// attachment list controller and the HTTP client that submits applications.
// It runs the same file rules as the server, minus the signature check when
// the caller opts out.
package client

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/johnie/joina/internal/formx"
)

// Swedish form validation messages.
const (
	MsgNameTooShort    = "Namnet måste vara minst 2 tecken"
	MsgInvalidEmail    = "Ogiltig e-postadress"
	MsgPhoneTooShort   = "Telefonnummer måste vara minst 10 tecken"
	MsgInvalidPhone    = "Ogiltigt telefonnummerformat"
	MsgResumeMissing   = "Vänligen ladda upp ditt CV"
	MsgCoverMissing    = "Vänligen ladda upp ditt personliga brev"
	MsgSubmitFailed    = "Det gick inte att skicka ansökan"
	MsgApplicationSent = "Ansökan skickad!"
)

// FieldError attributes a message to a form field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string { return e.Field + ": " + e.Message }

// ValidateName requires at least two characters.
func ValidateName(name string) *FieldError {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < formx.MinNameLength {
		return &FieldError{Field: "name", Message: MsgNameTooShort}
	}
	return nil
}

// ValidateEmail requires a syntactically valid address.
func ValidateEmail(email string) *FieldError {
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return &FieldError{Field: "email", Message: MsgInvalidEmail}
	}
	return nil
}

// ValidatePhone requires at least ten characters of digits, spaces and
// common phone punctuation. Length is checked before format so a short
// digit string reports the length message.
func ValidatePhone(phone string) *FieldError {
	phone = strings.TrimSpace(phone)
	if utf8.RuneCountInString(phone) < formx.MinPhoneLength {
		return &FieldError{Field: "phone", Message: MsgPhoneTooShort}
	}
	if !formx.PhonePattern.MatchString(phone) {
		return &FieldError{Field: "phone", Message: MsgInvalidPhone}
	}
	return nil
}

// ValidateForm runs all field validators and collects every failure.
func ValidateForm(name, email, phone string) []FieldError {
	var errs []FieldError
	if e := ValidateName(name); e != nil {
		errs = append(errs, *e)
	}
	if e := ValidateEmail(email); e != nil {
		errs = append(errs, *e)
	}
	if e := ValidatePhone(phone); e != nil {
		errs = append(errs, *e)
	}
	return errs
}
