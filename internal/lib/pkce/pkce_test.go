package pkce

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerifier(t *testing.T) {
	v1, err := NewVerifier()
	require.NoError(t, err)
	v2, err := NewVerifier()
	require.NoError(t, err)

	// 96 байт в base64url без выравнивания - 128 символов
	assert.Len(t, v1, 128)
	assert.NotEqual(t, v1, v2)

	// verifier должен декодироваться как base64url
	raw, err := base64.RawURLEncoding.DecodeString(v1)
	require.NoError(t, err)
	assert.Len(t, raw, 96)
}

func TestChallengeS256(t *testing.T) {
	v, err := NewVerifier()
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(v))
	want := base64.RawURLEncoding.EncodeToString(sum[:])

	assert.Equal(t, want, ChallengeS256(v))
	// challenge детерминирован
	assert.Equal(t, ChallengeS256(v), ChallengeS256(v))
}
