// Package pkce реализует генерацию пары verifier/challenge для OAuth2 PKCE
// (метод S256).
//
// Verifier генерируется из 96 байт криптографической энтропии в кодировке
// base64url — больше, чем минимально требует RFC 7636, чтобы совпадать с
// параметрами, на которые рассчитан провайдер. Challenge — SHA-256 дайджест
// verifier-а в той же кодировке.
package pkce

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
)

// verifierEntropyBytes количество байт энтропии в code verifier.
const verifierEntropyBytes = 96

// NewVerifier возвращает новый code verifier: base64url от 96 случайных байт.
func NewVerifier() (string, error) {
	const op = "pkce.NewVerifier"
	buf := make([]byte, verifierEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ChallengeS256 возвращает code challenge для метода S256.
func ChallengeS256(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}
