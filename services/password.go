package services

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. These must match the identity provisioning pipeline
// that writes the stored credentials; this service only verifies them.
const (
	argonMemory      = 64 * 1024
	argonIterations  = 3
	argonParallelism = 2
	argonKeyLength   = 32
)

// VerifyPassword checks a plain-text password against a stored credential in
// "salt$hash" form, both parts raw-std base64.
func VerifyPassword(storedCredential, password string) (bool, error) {
	parts := strings.Split(storedCredential, "$")
	if len(parts) != 2 {
		return false, errors.New("invalid stored credential format")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[0])
	if err != nil {
		return false, err
	}

	storedHash, err := base64.RawStdEncoding.DecodeString(parts[1])
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	return subtle.ConstantTimeCompare(computed, storedHash) == 1, nil
}

// ComparePasswords is VerifyPassword with errors folded into a refusal. A
// malformed stored credential rejects the login rather than reporting why.
func ComparePasswords(storedCredential, password string) bool {
	match, err := VerifyPassword(storedCredential, password)
	if err != nil {
		return false
	}
	return match
}
