package otp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(6)
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9', "unexpected rune %q", r)
	}
}

func TestGenerateCodeRejectsNonPositiveLength(t *testing.T) {
	_, err := GenerateCode(0)
	assert.Error(t, err)

	_, err = GenerateCode(-3)
	assert.Error(t, err)
}
