package model

import "time"

// TwoFactorCredential holds per-user second-factor state. Either Enabled is
// false, or Enabled is true with Secret set and TempSecret empty; the setup
// flow moves TempSecret to Secret exactly once. BackupCodes are stored only
// as SHA-256 hex digests.
type TwoFactorCredential struct {
	TempSecret  string     `bson:"temp_secret,omitempty" json:"-"`
	Secret      string     `bson:"secret,omitempty" json:"-"`
	Enabled     bool       `bson:"enabled" json:"enabled"`
	BackupCodes []string   `bson:"backup_codes,omitempty" json:"-"`
	SetupAt     *time.Time `bson:"setup_at,omitempty" json:"setup_at,omitempty"`
	EnabledAt   *time.Time `bson:"enabled_at,omitempty" json:"enabled_at,omitempty"`
	DisabledAt  *time.Time `bson:"disabled_at,omitempty" json:"disabled_at,omitempty"`
}

type User struct {
	UserID       string              `bson:"user_id" json:"user_id"`
	Email        string              `bson:"email" json:"email" validate:"required,email"`
	DisplayName  string              `bson:"display_name" json:"display_name"`
	Role         Role                `bson:"role" json:"role"`
	PasswordHash string              `bson:"password_hash" json:"-"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	TwoFactor    TwoFactorCredential `bson:"two_factor" json:"two_factor"`
}
