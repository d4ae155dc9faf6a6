package utils

import (
	"strings"
	"testing"
)

func TestGenerateBackupCodes(t *testing.T) {
	codes, err := GenerateBackupCodes()
	if err != nil {
		t.Fatalf("GenerateBackupCodes() error = %v", err)
	}

	if len(codes) != NumBackupCodes {
		t.Fatalf("generated %d codes, want %d", len(codes), NumBackupCodes)
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		if len(code) != BackupCodeLength {
			t.Errorf("code %q length = %d, want %d", code, len(code), BackupCodeLength)
		}
		if code != strings.ToUpper(code) {
			t.Errorf("code %q not uppercase", code)
		}
		for _, r := range code {
			if !strings.ContainsRune("0123456789ABCDEF", r) {
				t.Errorf("code %q contains non-hex character %q", code, r)
			}
		}
		if seen[code] {
			t.Errorf("duplicate code %q in one set", code)
		}
		seen[code] = true
	}
}

func TestHashBackupCodeCaseInsensitive(t *testing.T) {
	if HashBackupCode("a1b2c3d4") != HashBackupCode("A1B2C3D4") {
		t.Error("hash differs across case, want case-insensitive hashing")
	}
	if HashBackupCode("A1B2C3D4") == HashBackupCode("A1B2C3D5") {
		t.Error("different codes produced the same hash")
	}
}

func TestHashBackupCodes(t *testing.T) {
	codes := []string{"AAAA1111", "BBBB2222"}
	hashed := HashBackupCodes(codes)

	if len(hashed) != len(codes) {
		t.Fatalf("hashed %d codes, want %d", len(hashed), len(codes))
	}
	for i, h := range hashed {
		if len(h) != 64 {
			t.Errorf("hash %d length = %d, want 64 hex chars", i, len(h))
		}
		if h == codes[i] {
			t.Errorf("hash %d equals the plain code", i)
		}
	}
}

func TestValidateTOTPFormat(t *testing.T) {
	tests := []struct {
		token string
		want  bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"12 456", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidateTOTPFormat(tt.token); got != tt.want {
			t.Errorf("ValidateTOTPFormat(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
}
