package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_CheckSize(t *testing.T) {
	v := NewValidator(100)

	assert.ErrorIs(t, v.CheckSize(0), ErrEmptyFile)
	assert.ErrorIs(t, v.CheckSize(101), ErrFileTooLarge)
	assert.NoError(t, v.CheckSize(100))

	// Zero disables the upper bound.
	assert.NoError(t, NewValidator(0).CheckSize(1<<40))
}

func TestValidator_Validate(t *testing.T) {
	v := NewValidator(testMaxFileSize)

	info, err := v.Validate(buildPDF(reportRuns()))
	require.NoError(t, err)
	assert.Equal(t, 1, info.Pages)
	assert.False(t, info.Encrypted)
	assert.Equal(t, "1.4", info.Version)
}

func TestValidator_ValidateHeader(t *testing.T) {
	v := NewValidator(testMaxFileSize)

	_, err := v.Validate([]byte("GIF89a"))
	assert.ErrorIs(t, err, ErrNotPDF)

	// Leading whitespace before the header is tolerated.
	_, err = v.Validate(append([]byte("\r\n"), buildPDF(reportRuns())...))
	assert.NotErrorIs(t, err, ErrNotPDF)
}
