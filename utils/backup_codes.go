package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

const (
	BackupCodeLength = 8
	NumBackupCodes   = 8
)

// GenerateBackupCodes generates single-use recovery codes: 4 random bytes
// rendered as 8 uppercase hex characters each.
func GenerateBackupCodes() ([]string, error) {
	codes := make([]string, NumBackupCodes)

	for i := 0; i < NumBackupCodes; i++ {
		bytes := make([]byte, BackupCodeLength/2)
		if _, err := rand.Read(bytes); err != nil {
			return nil, err
		}
		codes[i] = strings.ToUpper(hex.EncodeToString(bytes))
	}

	return codes, nil
}

// HashBackupCode hashes a single code for storage. Codes are uppercased
// before hashing so verification is case-insensitive.
func HashBackupCode(code string) string {
	sum := sha256.Sum256([]byte(strings.ToUpper(code)))
	return hex.EncodeToString(sum[:])
}

// HashBackupCodes hashes a full code set for storage.
func HashBackupCodes(codes []string) []string {
	hashedCodes := make([]string, len(codes))
	for i, code := range codes {
		hashedCodes[i] = HashBackupCode(code)
	}
	return hashedCodes
}
