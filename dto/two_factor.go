package dto

import (
	"time"

	"main/model"
)

type VerifySetupRequest struct {
	Token string `json:"token" binding:"required,totp"`
}

// VerifyTwoFactorRequest carries either a TOTP token or a backup code,
// never both.
type VerifyTwoFactorRequest struct {
	Token      string `json:"token,omitempty"`
	BackupCode string `json:"backupCode,omitempty"`
}

type DisableTwoFactorRequest struct {
	Password string `json:"password" binding:"required"`
	Token    string `json:"token" binding:"required,totp"`
}

type RegenerateBackupCodesRequest struct {
	Token string `json:"token" binding:"required,totp"`
}

type TwoFactorStatusResponse struct {
	Enabled              bool       `json:"enabled"`
	EnabledAt            *time.Time `json:"enabled_at,omitempty"`
	BackupCodesRemaining int        `json:"backup_codes_remaining"`
}

func ToTwoFactorStatusResponse(cred model.TwoFactorCredential) TwoFactorStatusResponse {
	return TwoFactorStatusResponse{
		Enabled:              cred.Enabled,
		EnabledAt:            cred.EnabledAt,
		BackupCodesRemaining: len(cred.BackupCodes),
	}
}
