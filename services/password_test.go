package services

import (
	"encoding/base64"
	"testing"

	"golang.org/x/crypto/argon2"
)

func testCredential(password string) string {
	salt := []byte("0123456789abcdef")
	hash := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)
	return base64.RawStdEncoding.EncodeToString(salt) + "$" + base64.RawStdEncoding.EncodeToString(hash)
}

func TestVerifyPassword(t *testing.T) {
	credential := testCredential("p4ss!word")

	match, err := VerifyPassword(credential, "p4ss!word")
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !match {
		t.Error("correct password did not match")
	}

	match, err = VerifyPassword(credential, "wrong")
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if match {
		t.Error("wrong password matched")
	}
}

func TestVerifyPasswordMalformedCredential(t *testing.T) {
	tests := []struct {
		name       string
		credential string
	}{
		{"no separator", "deadbeef"},
		{"too many parts", "a$b$c"},
		{"bad salt encoding", "!!!$" + base64.RawStdEncoding.EncodeToString([]byte("hash"))},
		{"bad hash encoding", base64.RawStdEncoding.EncodeToString([]byte("salt")) + "$!!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := VerifyPassword(tt.credential, "anything"); err == nil {
				t.Error("VerifyPassword() error = nil, want error")
			}
			if ComparePasswords(tt.credential, "anything") {
				t.Error("ComparePasswords() = true on malformed credential")
			}
		})
	}
}

func TestComparePasswords(t *testing.T) {
	credential := testCredential("p4ss!word")

	if !ComparePasswords(credential, "p4ss!word") {
		t.Error("correct password rejected")
	}
	if ComparePasswords(credential, "p4ss!word ") {
		t.Error("trailing-space password accepted")
	}
}
