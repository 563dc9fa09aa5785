package service

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/sakif/mesto/internal/apperror"
)

// Field limits of the places API.
const (
	MinTextLength     = 2
	MaxTextLength     = 30
	MinPasswordLength = 2
)

// validateText trims s and checks it is between MinTextLength and
// MaxTextLength characters (runes, not bytes).
func validateText(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < MinTextLength || n > MaxTextLength {
		return "", apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be between %d and %d characters", field, MinTextLength, MaxTextLength))
	}
	return s, nil
}

// validateLink accepts absolute http(s) URLs with a host.
func validateLink(field, link string) (string, error) {
	link = strings.TrimSpace(link)
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperror.ValidationFailed(field, fmt.Sprintf("%s must be an http(s) URL", field))
	}
	return link, nil
}

// validateEmail returns the normalised (trimmed, lower-case) address.
func validateEmail(email string) (string, error) {
	email = normaliseEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperror.ValidationFailed("email", "email must be a valid address")
	}
	return email, nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	return nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
