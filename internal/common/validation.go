package common

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// ValidateContent rejects blank messages, text the database cannot store
// and messages longer than maxLen runes.
func ValidateContent(content string, maxLen int) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("message content cannot be empty: %w", ErrValidation)
	}
	if !utf8.ValidString(content) || strings.ContainsRune(content, 0) {
		return fmt.Errorf("message content is not valid UTF-8 text: %w", ErrValidation)
	}
	if maxLen > 0 && utf8.RuneCountInString(content) > maxLen {
		return fmt.Errorf("message content exceeds %d characters: %w", maxLen, ErrValidation)
	}
	return nil
}

func ValidateID(name, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s is required: %w", name, ErrValidation)
	}
	return nil
}

func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format: %w", ErrValidation)
	}
	return nil
}
