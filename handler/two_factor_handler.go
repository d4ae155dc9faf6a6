package handler

import (
	"context"
	"log"

	"main/dto"
	"main/model"
	"main/services"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// UserStore is the user persistence surface the 2FA endpoints need.
type UserStore interface {
	FindUser(ctx context.Context, userID string) (*model.User, error)
	BeginTwoFactorSetup(ctx context.Context, userID, tempSecret string, hashedCodes []string) error
	EnableTwoFactor(ctx context.Context, userID, secret string) error
	UpdateBackupCodes(ctx context.Context, userID string, hashedCodes []string) error
	DisableTwoFactor(ctx context.Context, userID string) error
}

// TwoFactorHandler serves the TOTP enrollment, verification, and teardown
// endpoints. Setup is two-phase: a pending secret is stored on setup and
// promoted only after the user proves possession with a valid code.
type TwoFactorHandler struct {
	twoFactor *usecase.TwoFactorManager
	users     UserStore
	audit     usecase.SecurityLogger
}

func NewTwoFactorHandler(twoFactor *usecase.TwoFactorManager, users UserStore, audit usecase.SecurityLogger) *TwoFactorHandler {
	return &TwoFactorHandler{
		twoFactor: twoFactor,
		users:     users,
		audit:     audit,
	}
}

func (h *TwoFactorHandler) currentUser(c *gin.Context) *model.User {
	userID := c.GetString("user_id")
	user, err := h.users.FindUser(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Error fetching user %s: %v", userID, err)
		utils.InternalError(c, "Failed to fetch user")
		return nil
	}
	if user == nil {
		utils.NotFound(c, "User not found")
		return nil
	}
	return user
}

// Setup starts enrollment: generates a secret, QR code, and backup codes,
// and stores the secret as pending. Re-running setup before confirmation
// replaces the pending material.
func (h *TwoFactorHandler) Setup(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	if user.TwoFactor.Enabled {
		utils.BadRequest(c, "2FA is already enabled")
		return
	}

	setup, err := h.twoFactor.GenerateSecret(user.UserID, user.DisplayName)
	if err != nil {
		log.Printf("Error generating 2FA secret for user %s: %v", user.UserID, err)
		utils.InternalError(c, "Failed to generate 2FA secret")
		return
	}

	hashedCodes := utils.HashBackupCodes(setup.BackupCodes)
	if err := h.users.BeginTwoFactorSetup(c.Request.Context(), user.UserID, setup.Secret, hashedCodes); err != nil {
		log.Printf("Error storing pending 2FA setup for user %s: %v", user.UserID, err)
		utils.InternalError(c, "Failed to store 2FA setup")
		return
	}

	utils.Success(c, gin.H{
		"secret":       setup.Secret,
		"qr_code":      setup.QRCode,
		"otpauth_url":  setup.OtpauthURL,
		"backup_codes": setup.BackupCodes,
		"warning":      "Save these backup codes securely. They will not be shown again.",
	})
}

// VerifySetup confirms enrollment with a code from the authenticator and
// promotes the pending secret.
func (h *TwoFactorHandler) VerifySetup(c *gin.Context) {
	var req dto.VerifySetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "A 6-digit verification token is required")
		return
	}

	user := h.currentUser(c)
	if user == nil {
		return
	}

	if user.TwoFactor.Enabled {
		utils.BadRequest(c, "2FA is already enabled")
		return
	}
	if user.TwoFactor.TempSecret == "" {
		utils.BadRequest(c, "2FA setup has not been initiated")
		return
	}

	if !h.twoFactor.ValidateSetup(user.TwoFactor.TempSecret, req.Token, user.UserID) {
		utils.Unauthorized(c, "Invalid verification code")
		return
	}

	if err := h.users.EnableTwoFactor(c.Request.Context(), user.UserID, user.TwoFactor.TempSecret); err != nil {
		log.Printf("Error enabling 2FA for user %s: %v", user.UserID, err)
		utils.InternalError(c, "Failed to enable 2FA")
		return
	}

	utils.Success(c, gin.H{"message": "2FA enabled successfully"})
}

// Verify checks a TOTP token or a single-use backup code for the current
// user. Running low on backup codes produces a non-fatal warning.
func (h *TwoFactorHandler) Verify(c *gin.Context) {
	var req dto.VerifyTwoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Token == "" && req.BackupCode == "") {
		utils.BadRequest(c, "A token or backup code is required")
		return
	}

	user := h.currentUser(c)
	if user == nil {
		return
	}

	if !user.TwoFactor.Enabled {
		utils.BadRequest(c, "2FA is not enabled")
		return
	}

	if req.Token != "" {
		if !utils.ValidateTOTPFormat(req.Token) {
			utils.BadRequest(c, "Token must be 6 digits")
			return
		}
		if !h.twoFactor.VerifyToken(user.TwoFactor.Secret, req.Token, usecase.DefaultTOTPWindow) {
			h.twoFactor.LogFailedAttempt(user.UserID, c.ClientIP())
			utils.Unauthorized(c, "Invalid verification code")
			return
		}

		h.twoFactor.LogSuccessfulVerification(user.UserID, false)
		utils.Success(c, gin.H{"verified": true, "method": "totp"})
		return
	}

	ok, remaining := h.twoFactor.VerifyBackupCode(req.BackupCode, user.TwoFactor.BackupCodes)
	if !ok {
		h.twoFactor.LogFailedAttempt(user.UserID, c.ClientIP())
		utils.Unauthorized(c, "Invalid backup code")
		return
	}

	if err := h.users.UpdateBackupCodes(c.Request.Context(), user.UserID, remaining); err != nil {
		log.Printf("Error consuming backup code for user %s: %v", user.UserID, err)
		utils.InternalError(c, "Failed to update backup codes")
		return
	}

	h.twoFactor.LogSuccessfulVerification(user.UserID, true)

	response := gin.H{
		"verified":               true,
		"method":                 "backup_code",
		"backup_codes_remaining": len(remaining),
	}
	if len(remaining) <= 2 {
		response["warning"] = "You are running low on backup codes. Regenerate a new set soon."
	}
	utils.Success(c, response)
}

// Disable turns 2FA off. Requires both the account password and a currently
// valid TOTP token so a stolen session alone cannot downgrade the account.
func (h *TwoFactorHandler) Disable(c *gin.Context) {
	var req dto.DisableTwoFactorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Password and a 6-digit token are required")
		return
	}

	user := h.currentUser(c)
	if user == nil {
		return
	}

	if !user.TwoFactor.Enabled {
		utils.BadRequest(c, "2FA is not enabled")
		return
	}

	if !services.ComparePasswords(user.PasswordHash, req.Password) {
		h.audit.LogSecurity(model.SecurityEvent{
			UserID:      user.UserID,
			UserRole:    user.Role,
			EventType:   "2fa_disable_failed",
			Description: "2FA disable attempt with wrong password",
			Severity:    model.SeverityWarning,
			Metadata:    map[string]any{"ip_address": c.ClientIP()},
		})
		utils.Unauthorized(c, "Invalid password")
		return
	}

	if !h.twoFactor.VerifyToken(user.TwoFactor.Secret, req.Token, usecase.DefaultTOTPWindow) {
		h.twoFactor.LogFailedAttempt(user.UserID, c.ClientIP())
		utils.Unauthorized(c, "Invalid verification code")
		return
	}

	if err := h.users.DisableTwoFactor(c.Request.Context(), user.UserID); err != nil {
		log.Printf("Error disabling 2FA for user %s: %v", user.UserID, err)
		utils.InternalError(c, "Failed to disable 2FA")
		return
	}

	h.audit.LogSecurity(model.SecurityEvent{
		UserID:      user.UserID,
		UserRole:    user.Role,
		EventType:   "2fa_disabled",
		Description: "2FA disabled for user",
		Severity:    model.SeverityWarning,
		Metadata:    map[string]any{"ip_address": c.ClientIP()},
	})

	utils.Success(c, gin.H{"message": "2FA disabled successfully"})
}

// Status reports whether 2FA is enabled and how many backup codes remain.
func (h *TwoFactorHandler) Status(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	utils.Success(c, dto.ToTwoFactorStatusResponse(user.TwoFactor))
}

// RegenerateBackupCodes replaces the backup code set. Requires a valid TOTP
// token; the old codes stop working immediately.
func (h *TwoFactorHandler) RegenerateBackupCodes(c *gin.Context) {
	var req dto.RegenerateBackupCodesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "A 6-digit verification token is required")
		return
	}

	user := h.currentUser(c)
	if user == nil {
		return
	}

	if !user.TwoFactor.Enabled {
		utils.BadRequest(c, "2FA is not enabled")
		return
	}

	if !h.twoFactor.VerifyToken(user.TwoFactor.Secret, req.Token, usecase.DefaultTOTPWindow) {
		h.twoFactor.LogFailedAttempt(user.UserID, c.ClientIP())
		utils.Unauthorized(c, "Invalid verification code")
		return
	}

	codes, err := utils.GenerateBackupCodes()
	if err != nil {
		log.Printf("Error generating backup codes for user %s: %v", user.UserID, err)
		utils.InternalError(c, "Failed to generate backup codes")
		return
	}

	if err := h.users.UpdateBackupCodes(c.Request.Context(), user.UserID, utils.HashBackupCodes(codes)); err != nil {
		log.Printf("Error storing backup codes for user %s: %v", user.UserID, err)
		utils.InternalError(c, "Failed to store backup codes")
		return
	}

	h.audit.LogSecurity(model.SecurityEvent{
		UserID:      user.UserID,
		UserRole:    user.Role,
		EventType:   "2fa_backup_codes_regenerated",
		Description: "Backup code set regenerated",
		Severity:    model.SeverityInfo,
	})

	utils.Success(c, gin.H{
		"backup_codes": codes,
		"warning":      "Save these backup codes securely. Your previous codes no longer work.",
	})
}
