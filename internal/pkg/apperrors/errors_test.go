package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewImportError_MatchesBothSentinels(t *testing.T) {
	err := NewImportError(ErrUnsupportedFileType, "roster.txt rejected")

	assert.True(t, errors.Is(err, ErrImportFailed))
	assert.True(t, errors.Is(err, ErrUnsupportedFileType))
	assert.False(t, errors.Is(err, ErrMalformedFile))
	assert.Equal(t, "roster.txt rejected", err.Error())
}

func TestIs_AnyOf(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrStudentNotFound)

	assert.True(t, Is(wrapped, ErrInvalidIDNo, ErrStudentNotFound))
	assert.False(t, Is(wrapped, ErrInvalidIDNo, ErrInvalidCredentials))
}

func TestCustomError_Fallbacks(t *testing.T) {
	assert.Equal(t, "upload failed", (&CustomError{Err: ErrImportFailed}).Error())
	assert.Equal(t, "unknown error", (&CustomError{}).Error())
}
