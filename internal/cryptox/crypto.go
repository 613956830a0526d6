// Package cryptox derives login verifiers from passwords. The password never
// leaves the client: the server stores a random salt and the verifier.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of a fresh registration salt.
const SaltSize = 32

func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}

func DeriveMasterKey(password []byte, salt []byte) []byte {
	x := argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
	return x
}

// NewSalt returns n random bytes.
func NewSalt(n int) []byte {
	b := make([]byte, n)
	// crypto/rand.Read never returns an error
	_, _ = rand.Read(b)
	return b
}

// Verifier derives the verifier sent to the server for password and salt.
func Verifier(password, salt []byte) []byte {
	return MakeVerifier(DeriveMasterKey(password, salt))
}

// RandomHex returns size random bytes, hex encoded.
func RandomHex(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
