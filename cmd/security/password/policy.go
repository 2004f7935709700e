package password

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// commonPasswords are rejected outright when RejectVeryWeak is on.
var commonPasswords = map[string]struct{}{
	"123456": {}, "1234567": {}, "12345678": {}, "123456789": {}, "111111": {},
	"password": {}, "password1": {}, "password123": {}, "qwerty": {}, "qwerty123": {},
	"abc123": {}, "letmein": {}, "iloveyou": {}, "foodie": {}, "yummy123": {},
}

// Validate checks the password against the policy. Length counts runes.
// Failures are *PolicyError values wrapping one of the rule kinds.
func (c Config) Validate(password string) error {
	n := utf8.RuneCountInString(password)
	switch {
	case n < c.Policy.MinLength:
		return &PolicyError{Rule: ErrPasswordTooShort, Limit: c.Policy.MinLength}
	case n > c.Policy.MaxLength:
		return &PolicyError{Rule: ErrPasswordTooLong, Limit: c.Policy.MaxLength}
	case c.Policy.RejectVeryWeak && isTrivial(password):
		return &PolicyError{Rule: ErrWeakPassword}
	}
	return nil
}

// isTrivial flags a handful of obviously guessable shapes. It is not an entropy estimator.
func isTrivial(pw string) bool {
	s := strings.ToLower(strings.TrimSpace(pw))
	if s == "" {
		return true
	}
	if _, ok := commonPasswords[s]; ok {
		return true
	}
	if first, _ := utf8.DecodeRuneInString(s); strings.Trim(s, string(first)) == "" {
		return true
	}
	return utf8.RuneCountInString(s) < 12 && strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
}
