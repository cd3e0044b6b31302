// Package validate contains client-side input checks that run before
// any network call.
package validate

import (
	"errors"
	"regexp"
	"strings"
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)

// Loose on purpose: the server is the authority, this only catches
// obvious typos before a round trip.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Username validates a username for length and allowed characters.
func Username(s string) error {
	if !usernameRe.MatchString(s) {
		return errors.New("invalid username")
	}
	return nil
}

// Email validates the shape of an email address.
func Email(s string) error {
	if !emailRe.MatchString(strings.TrimSpace(s)) {
		return errors.New("invalid email address")
	}
	return nil
}

// Password enforces a minimum length only; composition rules are the
// server's call.
func Password(s string) error {
	if len(s) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}
