// Package formx holds the form field rules shared by the intake endpoint
// and the client widget. The endpoint is the authoritative enforcement
// point; the widget mirrors the rules for early feedback.
package formx

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Minimum field lengths, in runes.
const (
	MinNameLength  = 2
	MinPhoneLength = 10
)

// PhonePattern accepts digits, spaces and common phone punctuation.
var PhonePattern = regexp.MustCompile(`^[0-9+\s\-()]+$`)

// ValidPhone reports whether phone meets the length and character rules.
func ValidPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	return utf8.RuneCountInString(phone) >= MinPhoneLength && PhonePattern.MatchString(phone)
}
