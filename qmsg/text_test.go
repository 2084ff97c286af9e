package qmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTextPassesThroughValidUTF8(t *testing.T) {
	s, err := DecodeText([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func TestDecodeTextFallsBackToLatin1(t *testing.T) {
	// 0xE9 is 'é' in Latin-1 but not a valid standalone UTF-8 byte.
	s, err := DecodeText([]byte{'c', 0xE9})
	require.NoError(t, err)
	assert.Equal(t, "cé", s)
}
