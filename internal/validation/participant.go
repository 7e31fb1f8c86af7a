// Package validation checks participant-supplied profile fields.
package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxUsernameLength bounds the display name shown next to comments.
const MaxUsernameLength = 64

// NormalizeUsername trims surrounding whitespace.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// ValidateUsername validates a normalized participant display name.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if !utf8.ValidString(username) {
		return fmt.Errorf("username must be valid UTF-8")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	for _, r := range username {
		if unicode.IsControl(r) {
			return fmt.Errorf("username cannot contain control characters")
		}
	}
	return nil
}

// ValidateAvatarURL accepts an empty avatar or an absolute http(s) URL.
func ValidateAvatarURL(avatar string) error {
	if avatar == "" {
		return nil
	}
	u, err := url.Parse(avatar)
	if err != nil {
		return fmt.Errorf("avatar must be a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("avatar URL must use http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("avatar URL must include a host")
	}
	return nil
}
