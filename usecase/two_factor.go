package usecase

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"main/config"
	"main/model"
	"main/utils"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// DefaultTOTPWindow accepts codes one 30-second step either side of now.
const DefaultTOTPWindow = 1

// TwoFactorSetup is what a user needs to enroll an authenticator: the
// base32 secret, a QR rendering of the otpauth URI, and single-use backup
// codes in plain text. The codes are shown exactly once; only their hashes
// are ever stored.
type TwoFactorSetup struct {
	Secret      string   `json:"secret"`
	QRCode      string   `json:"qr_code"`
	BackupCodes []string `json:"backup_codes"`
	OtpauthURL  string   `json:"otpauth_url"`
}

// TwoFactorManager implements TOTP secret generation and verification plus
// backup-code handling. It never touches storage; callers persist the
// credential transitions it validates.
type TwoFactorManager struct {
	cfg   config.TwoFactorConfig
	audit SecurityLogger
}

func NewTwoFactorManager(cfg config.TwoFactorConfig, audit SecurityLogger) *TwoFactorManager {
	return &TwoFactorManager{cfg: cfg, audit: audit}
}

// GenerateSecret creates a fresh TOTP key and backup-code set for the given
// identity. Each call produces new material; re-running setup replaces any
// pending secret.
func (t *TwoFactorManager) GenerateSecret(identity, displayName string) (*TwoFactorSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.cfg.Issuer,
		AccountName: fmt.Sprintf("%s (%s)", t.cfg.AppName, identity),
		SecretSize:  32,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP secret: %w", err)
	}

	var buf bytes.Buffer
	img, err := key.Image(200, 200)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	backupCodes, err := utils.GenerateBackupCodes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate backup codes: %w", err)
	}

	t.audit.LogSecurity(model.SecurityEvent{
		UserID:      identity,
		EventType:   "2fa_setup_initiated",
		Description: "2FA setup initiated for user",
		Severity:    model.SeverityInfo,
		Metadata:    map[string]any{"display_name": displayName},
	})

	return &TwoFactorSetup{
		Secret:      key.Secret(),
		QRCode:      "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		BackupCodes: backupCodes,
		OtpauthURL:  key.URL(),
	}, nil
}

// VerifyToken checks a 6-digit code against the secret with the given skew
// window (window=1 accepts the previous and next 30-second step). Empty or
// malformed tokens are rejected without error.
func (t *TwoFactorManager) VerifyToken(secret, token string, window uint) bool {
	if secret == "" || token == "" {
		return false
	}

	valid, err := totp.ValidateCustom(token, secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      window,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return valid
}

// ValidateSetup verifies the confirmation token during enrollment and logs
// the outcome. The caller promotes tempSecret to secret only on true.
func (t *TwoFactorManager) ValidateSetup(secret, token, identity string) bool {
	isValid := t.VerifyToken(secret, token, DefaultTOTPWindow)

	if isValid {
		t.audit.LogSecurity(model.SecurityEvent{
			UserID:      identity,
			EventType:   "2fa_enabled",
			Description: "2FA successfully enabled for user",
			Severity:    model.SeverityInfo,
		})
	} else {
		t.audit.LogSecurity(model.SecurityEvent{
			UserID:      identity,
			EventType:   "2fa_setup_failed",
			Description: "2FA setup validation failed - invalid token",
			Severity:    model.SeverityWarning,
		})
	}

	return isValid
}

// VerifyBackupCode checks a backup code against the stored hashes. On a
// match it returns the hash list with that single entry removed; the caller
// must persist the returned list to make the consumption durable. On a miss
// the list is returned unchanged.
func (t *TwoFactorManager) VerifyBackupCode(providedCode string, hashedCodes []string) (bool, []string) {
	if providedCode == "" || len(hashedCodes) == 0 {
		return false, hashedCodes
	}

	hashed := utils.HashBackupCode(providedCode)

	for i, stored := range hashedCodes {
		if stored == hashed {
			remaining := make([]string, 0, len(hashedCodes)-1)
			remaining = append(remaining, hashedCodes[:i]...)
			remaining = append(remaining, hashedCodes[i+1:]...)
			return true, remaining
		}
	}

	return false, hashedCodes
}

// LogFailedAttempt records a failed 2FA verification.
func (t *TwoFactorManager) LogFailedAttempt(userID, ipAddress string) {
	utils.TrackAuthAttempt("failure", "2fa")
	t.audit.LogSecurity(model.SecurityEvent{
		UserID:      userID,
		EventType:   "2fa_failed",
		Description: "Failed 2FA verification attempt",
		Severity:    model.SeverityWarning,
		Metadata:    map[string]any{"ip_address": ipAddress},
	})
}

// LogSuccessfulVerification records a successful 2FA verification.
func (t *TwoFactorManager) LogSuccessfulVerification(userID string, usedBackupCode bool) {
	utils.TrackAuthAttempt("success", "2fa")
	description := "2FA verified successfully"
	if usedBackupCode {
		description = "2FA verified using backup code"
	}
	t.audit.LogSecurity(model.SecurityEvent{
		UserID:      userID,
		EventType:   "2fa_verified",
		Description: description,
		Severity:    model.SeverityInfo,
		Metadata:    map[string]any{"used_backup_code": usedBackupCode},
	})
}
