package dto

import (
	"time"

	"main/model"
)

type CreateSessionResponse struct {
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionResponse struct {
	SessionID      string           `json:"session_id"`
	CreatedAt      time.Time        `json:"created_at"`
	LastActivityAt time.Time        `json:"last_activity_at"`
	ExpiresAt      time.Time        `json:"expires_at"`
	IPAddress      string           `json:"ip_address"`
	DeviceInfo     model.DeviceInfo `json:"device_info"`
	Current        bool             `json:"current"`
}

func ToSessionResponse(session *model.Session, currentID string) SessionResponse {
	return SessionResponse{
		SessionID:      session.SessionID,
		CreatedAt:      session.CreatedAt,
		LastActivityAt: session.LastActivityAt,
		ExpiresAt:      session.ExpiresAt,
		IPAddress:      session.IPAddress,
		DeviceInfo:     session.DeviceInfo,
		Current:        session.SessionID == currentID,
	}
}

type SessionConfigResponse struct {
	IdleTimeoutMinutes    int `json:"idle_timeout_minutes"`
	AbsoluteTimeoutHours  int `json:"absolute_timeout_hours"`
	MaxConcurrentSessions int `json:"max_concurrent_sessions"`
	TokenRotationMinutes  int `json:"token_rotation_minutes"`
}
