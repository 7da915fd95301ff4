package auth

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/google/uuid"
)

func RandomString(n int) (string, error) {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b), nil
}

// NewSessionToken returns an opaque, unguessable bearer credential. The
// token is stored and looked up verbatim; it carries no claims and never
// expires on its own.
func NewSessionToken() (string, error) {
	secret, err := RandomString(32)
	if err != nil {
		return "", err
	}

	raw := uuid.New().String() + ":" + secret
	return base64.RawURLEncoding.EncodeToString([]byte(raw)), nil
}
