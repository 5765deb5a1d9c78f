package security

import (
	"github.com/matthewhartstonge/argon2"
)

var argon = argon2.DefaultConfig()

// HashPassword hashes a plaintext secret with argon2id and returns the
// encoded representation.
func HashPassword(password string) (string, error) {
	encoded, err := argon.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword compares a plaintext secret against an encoded argon2 hash.
func VerifyPassword(password, encodedHash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encodedHash))
}
