package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateContent(t *testing.T) {
	assert.ErrorIs(t, ValidateContent("", 10), ErrValidation)
	assert.ErrorIs(t, ValidateContent("   ", 10), ErrValidation)
	assert.ErrorIs(t, ValidateContent("\n\t", 10), ErrValidation)
	assert.ErrorIs(t, ValidateContent(strings.Repeat("a", 11), 10), ErrValidation)
	assert.NoError(t, ValidateContent("hello", 10))
	// runes, not bytes
	assert.NoError(t, ValidateContent("éééééééééé", 10))
	// postgres rejects these on insert
	assert.ErrorIs(t, ValidateContent("caf\xe9", 10), ErrValidation)
	assert.ErrorIs(t, ValidateContent("a\x00b", 10), ErrValidation)
	// zero disables the length bound
	assert.NoError(t, ValidateContent(strings.Repeat("a", 100), 0))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("Mayor@Buea.cm"))
	assert.ErrorIs(t, ValidateEmail("not-an-email"), ErrValidation)
	assert.ErrorIs(t, ValidateEmail(""), ErrValidation)
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("conversation ID", "c-1"))
	err := ValidateID("conversation ID", " ")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "conversation ID is required")
}
