// Package credential handles password secrets for person records: hashing,
// verification, throwaway secrets, and memorable passphrase generation.
//
// Plaintext secrets never leave this package except as the return value of
// the generators; nothing here logs or persists them.
package credential

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MB
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16

	// algorithm identifies the hash scheme inside the token. A verifier
	// needs nothing beyond the token itself.
	algorithm = "argon2id"
)

// Hash derives a self-describing token from a plaintext secret:
//
//	argon2id$<base64 salt>$<base64 digest>
//
// A fresh random salt is generated per call, so hashing the same secret
// twice yields different tokens.
func Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("credential: generate salt: %w", err)
	}

	digest := argon2.IDKey([]byte(plaintext), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("%s$%s$%s",
		algorithm,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(digest),
	), nil
}

// Verify checks a plaintext candidate against a stored token in constant
// time. Tokens with an unknown algorithm identifier are rejected.
func Verify(plaintext, token string) (bool, error) {
	parts := strings.SplitN(token, "$", 3)
	if len(parts) != 3 {
		return false, fmt.Errorf("credential: invalid hash format")
	}
	if parts[0] != algorithm {
		return false, fmt.Errorf("credential: unknown hash algorithm %q", parts[0])
	}

	salt, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, fmt.Errorf("credential: decode salt: %w", err)
	}
	expected, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, fmt.Errorf("credential: decode digest: %w", err)
	}

	computed := argon2.IDKey([]byte(plaintext), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return subtle.ConstantTimeCompare(expected, computed) == 1, nil
}

// RandomSecret returns a throwaway secret for records saved without a
// password. The caller hashes and discards it; nobody ever sees it.
func RandomSecret() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("credential: generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// passphraseWords is the number of words in a generated passphrase.
const passphraseWords = 4

// GeneratePassphrase returns a human-memorable passphrase of random words
// joined by hyphens, e.g. "maple-ticket-orbit-canyon".
func GeneratePassphrase() (string, error) {
	words := make([]string, passphraseWords)
	max := big.NewInt(int64(len(wordlist)))
	for i := range words {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("credential: pick passphrase word: %w", err)
		}
		words[i] = wordlist[n.Int64()]
	}
	return strings.Join(words, "-"), nil
}
