package model

import (
	"fmt"
	"time"
)

// Invalidation reasons recorded on terminated sessions.
const (
	ReasonLogout                 = "logout"
	ReasonLogoutAll              = "logout_all"
	ReasonManualInvalidation     = "manual_invalidation"
	ReasonConcurrentSessionLimit = "concurrent_session_limit"
	ReasonAbsoluteTimeout        = "absolute_timeout"
	ReasonIdleTimeout            = "idle_timeout"
)

// DeviceInfo is a best-effort classification of the client's User-Agent.
type DeviceInfo struct {
	Browser string `bson:"browser" json:"browser"`
	OS      string `bson:"os" json:"os"`
	Device  string `bson:"device" json:"device"`
}

// DisplayName renders a label for session listings, e.g. "Chrome on Windows".
func (d DeviceInfo) DisplayName() string {
	return fmt.Sprintf("%s on %s", d.Browser, d.OS)
}

// Session is one authenticated device session. ExpiresAt is fixed at creation
// and never extended; LastActivityAt only moves forward. Once IsActive is
// false the session is terminal and must not be reactivated.
type Session struct {
	SessionID          string     `bson:"session_id" json:"session_id"`
	UserID             string     `bson:"user_id" json:"user_id"`
	UserRole           Role       `bson:"user_role" json:"user_role"`
	IPAddress          string     `bson:"ip_address" json:"ip_address"`
	UserAgent          string     `bson:"user_agent" json:"user_agent"`
	DeviceInfo         DeviceInfo `bson:"device_info" json:"device_info"`
	CreatedAt          time.Time  `bson:"created_at" json:"created_at"`
	LastActivityAt     time.Time  `bson:"last_activity_at" json:"last_activity_at"`
	ExpiresAt          time.Time  `bson:"expires_at" json:"expires_at"`
	IsActive           bool       `bson:"is_active" json:"is_active"`
	InvalidatedAt      *time.Time `bson:"invalidated_at,omitempty" json:"invalidated_at,omitempty"`
	InvalidationReason string     `bson:"invalidation_reason,omitempty" json:"invalidation_reason,omitempty"`
}

// SessionSummary is the client-facing shape used by session listings.
type SessionSummary struct {
	SessionID      string     `json:"session_id"`
	CreatedAt      time.Time  `json:"created_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`
	IPAddress      string     `json:"ip_address"`
	DeviceInfo     DeviceInfo `json:"device_info"`
	DisplayName    string     `json:"display_name"`
}

func (s *Session) Summary() SessionSummary {
	return SessionSummary{
		SessionID:      s.SessionID,
		CreatedAt:      s.CreatedAt,
		LastActivityAt: s.LastActivityAt,
		IPAddress:      s.IPAddress,
		DeviceInfo:     s.DeviceInfo,
		DisplayName:    s.DeviceInfo.DisplayName(),
	}
}
