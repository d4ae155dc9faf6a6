package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"main/config"
	"main/model"
	"main/utils"
)

// Session validation failure reasons. All of them translate to "requires
// login" at the HTTP boundary; the distinction exists for telemetry.
const (
	ReasonNoSessionID     = "no_session_id"
	ReasonSessionNotFound = "session_not_found"
	ReasonUserMismatch    = "user_mismatch"
	ReasonSessionInactive = "session_inactive"
	ReasonAbsoluteTimeout = model.ReasonAbsoluteTimeout
	ReasonIdleTimeout     = model.ReasonIdleTimeout
	ReasonValidationError = "validation_error"
)

// SessionStore is the persistence contract the manager depends on. The
// MongoDB repository implements it; tests use an in-memory fake.
type SessionStore interface {
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	UpdateSession(ctx context.Context, session *model.Session) error
	CountActiveSessions(ctx context.Context, userID string) (int, error)
	GetUserActiveSessions(ctx context.Context, userID string) ([]*model.Session, error)
	GetAllActiveSessions(ctx context.Context) ([]*model.Session, error)
}

// SecurityLogger is the audit sink contract. Implementations must never
// block or fail the caller.
type SecurityLogger interface {
	LogSecurity(event model.SecurityEvent)
}

// ValidationResult reports the outcome of a session check.
type ValidationResult struct {
	Valid   bool           `json:"valid"`
	Reason  string         `json:"reason,omitempty"`
	Session *model.Session `json:"session_data,omitempty"`
}

// SessionManager owns the session lifecycle: creation under the concurrency
// cap, lazy timeout detection, invalidation, and rotation signaling. Expiry
// is a predicate evaluated on access, not a timer; every read path applies
// the same two deadlines.
type SessionManager struct {
	store SessionStore
	audit SecurityLogger
	cfg   config.SessionConfig
}

func NewSessionManager(store SessionStore, audit SecurityLogger, cfg config.SessionConfig) *SessionManager {
	return &SessionManager{
		store: store,
		audit: audit,
		cfg:   cfg,
	}
}

func (m *SessionManager) Config() config.SessionConfig {
	return m.cfg
}

// CreateSession opens a new session for the user, first evicting the oldest
// active sessions so the active count after creation is at most the
// configured maximum.
//
// The count-then-evict-then-create sequence is not transactional: two
// concurrent logins for one user can transiently exceed the cap. The excess
// is shed on the next creation or sweep.
func (m *SessionManager) CreateSession(ctx context.Context, userID string, role model.Role, ipAddress, userAgent string) (*model.Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}

	if err := m.enforceSessionLimit(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &model.Session{
		UserID:         userID,
		UserRole:       role,
		IPAddress:      ipAddress,
		UserAgent:      userAgent,
		DeviceInfo:     utils.ParseUserAgent(userAgent),
		CreatedAt:      now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(m.cfg.AbsoluteTimeout),
		IsActive:       true,
	}

	if err := m.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	utils.TrackSessionCreated()
	m.audit.LogSecurity(model.SecurityEvent{
		UserID:      userID,
		UserRole:    role,
		EventType:   "session_created",
		Description: "New session created",
		Severity:    model.SeverityInfo,
		Metadata: map[string]any{
			"session_id":  session.SessionID,
			"ip_address":  ipAddress,
			"device_info": session.DeviceInfo,
		},
	})

	return session, nil
}

// ValidateSession checks a session against ownership, active state, and both
// deadlines, in that order. A valid session has its activity timestamp
// refreshed as a side effect; an expired one is invalidated in place.
func (m *SessionManager) ValidateSession(ctx context.Context, sessionID, userID string) ValidationResult {
	if sessionID == "" {
		return ValidationResult{Valid: false, Reason: ReasonNoSessionID}
	}

	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		log.Printf("Error validating session: %v", err)
		return ValidationResult{Valid: false, Reason: ReasonValidationError}
	}
	if session == nil {
		return ValidationResult{Valid: false, Reason: ReasonSessionNotFound}
	}

	if session.UserID != userID {
		// Cross-user session probing is suspicious enough to record
		m.audit.LogSecurity(model.SecurityEvent{
			UserID:      userID,
			UserRole:    session.UserRole,
			EventType:   "session_mismatch",
			Description: "Session user ID mismatch",
			Severity:    model.SeverityWarning,
			Metadata: map[string]any{
				"session_id":       sessionID,
				"expected_user_id": userID,
				"actual_user_id":   session.UserID,
			},
		})
		return ValidationResult{Valid: false, Reason: ReasonUserMismatch}
	}

	if !session.IsActive {
		return ValidationResult{Valid: false, Reason: ReasonSessionInactive}
	}

	now := time.Now()
	if reason := m.expiryReason(session, now); reason != "" {
		m.InvalidateSession(ctx, sessionID, reason)
		return ValidationResult{Valid: false, Reason: reason}
	}

	// Session is valid - refresh activity
	session.LastActivityAt = now
	if err := m.store.UpdateSession(ctx, session); err != nil {
		log.Printf("Warning: failed to refresh session activity: %v", err)
	}

	return ValidationResult{Valid: true, Session: session}
}

// UpdateActivity re-derives the same absolute and idle deadline checks as
// ValidateSession on purpose; both call sites enforce the deadlines
// independently. Returns false for missing, inactive, or expired sessions.
func (m *SessionManager) UpdateActivity(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}

	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		log.Printf("Error updating session activity: %v", err)
		return false
	}
	if session == nil || !session.IsActive {
		return false
	}

	now := time.Now()
	if reason := m.expiryReason(session, now); reason != "" {
		m.InvalidateSession(ctx, sessionID, reason)
		return false
	}

	session.LastActivityAt = now
	if err := m.store.UpdateSession(ctx, session); err != nil {
		log.Printf("Error updating session activity: %v", err)
		return false
	}

	return true
}

// InvalidateSession terminates a session with the given reason. Returns
// false for a missing or already-inactive session; termination is one-way.
func (m *SessionManager) InvalidateSession(ctx context.Context, sessionID, reason string) bool {
	if sessionID == "" {
		return false
	}

	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil {
		log.Printf("Error invalidating session: %v", err)
		return false
	}
	if session == nil || !session.IsActive {
		return false
	}

	now := time.Now()
	session.IsActive = false
	session.InvalidatedAt = &now
	session.InvalidationReason = reason

	if err := m.store.UpdateSession(ctx, session); err != nil {
		log.Printf("Error invalidating session: %v", err)
		return false
	}

	utils.TrackSessionInvalidated(reason)

	severity := model.SeverityWarning
	if reason == model.ReasonAbsoluteTimeout || reason == model.ReasonIdleTimeout {
		severity = model.SeverityInfo
	}
	m.audit.LogSecurity(model.SecurityEvent{
		UserID:      session.UserID,
		UserRole:    session.UserRole,
		EventType:   "session_invalidated",
		Description: fmt.Sprintf("Session invalidated: %s", reason),
		Severity:    severity,
		Metadata:    map[string]any{"session_id": sessionID, "reason": reason},
	})

	return true
}

// InvalidateAllUserSessions terminates every active session for the user and
// returns how many were invalidated.
func (m *SessionManager) InvalidateAllUserSessions(ctx context.Context, userID, reason string) int {
	sessions, err := m.store.GetUserActiveSessions(ctx, userID)
	if err != nil {
		log.Printf("Error invalidating all user sessions: %v", err)
		return 0
	}

	count := 0
	for _, session := range sessions {
		if m.InvalidateSession(ctx, session.SessionID, reason) {
			count++
		}
	}

	return count
}

// GetUserSessions lists the user's active sessions. Sessions past a deadline
// are excluded (same predicate as validation) but left for the next
// validation or sweep to materialize.
func (m *SessionManager) GetUserSessions(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	sessions, err := m.store.GetUserActiveSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user sessions: %w", err)
	}

	now := time.Now()
	summaries := make([]model.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		if m.expiryReason(session, now) != "" {
			continue
		}
		summaries = append(summaries, session.Summary())
	}

	return summaries, nil
}

// GetSession fetches a session by id without validating it. Used for
// ownership checks before targeted invalidation.
func (m *SessionManager) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return m.store.GetSession(ctx, sessionID)
}

// ShouldRotateToken reports whether the external identity token backing this
// session is due for a refresh. Advisory only; nothing is rotated here.
func (m *SessionManager) ShouldRotateToken(ctx context.Context, sessionID string) bool {
	if sessionID == "" {
		return false
	}

	session, err := m.store.GetSession(ctx, sessionID)
	if err != nil || session == nil {
		return false
	}

	return time.Since(session.LastActivityAt) > m.cfg.TokenRotationInterval
}

// CleanupExpiredSessions eagerly materializes the lazy expiry transition for
// every active session past a deadline, and returns how many were reclaimed.
func (m *SessionManager) CleanupExpiredSessions(ctx context.Context) int {
	sessions, err := m.store.GetAllActiveSessions(ctx)
	if err != nil {
		log.Printf("Error cleaning up expired sessions: %v", err)
		return 0
	}

	now := time.Now()
	count := 0
	for _, session := range sessions {
		reason := m.expiryReason(session, now)
		if reason == "" {
			continue
		}
		if m.InvalidateSession(ctx, session.SessionID, reason) {
			count++
		}
	}

	return count
}

// expiryReason is the single deadline predicate shared by every read path.
// The absolute deadline wins when both have passed.
func (m *SessionManager) expiryReason(session *model.Session, now time.Time) string {
	if now.After(session.ExpiresAt) {
		return model.ReasonAbsoluteTimeout
	}
	if now.After(session.LastActivityAt.Add(m.cfg.IdleTimeout)) {
		return model.ReasonIdleTimeout
	}
	return ""
}

// enforceSessionLimit invalidates the oldest active sessions so that after
// the imminent creation the user holds at most MaxConcurrentSessions. The
// count applies the absolute deadline, so a session already past it does not
// hold a slot; it is reclaimed by validation or the sweep instead.
func (m *SessionManager) enforceSessionLimit(ctx context.Context, userID string) error {
	count, err := m.store.CountActiveSessions(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to enforce session limit: %w", err)
	}
	if count < m.cfg.MaxConcurrentSessions {
		return nil
	}

	sessions, err := m.store.GetUserActiveSessions(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to enforce session limit: %w", err)
	}

	if len(sessions) < m.cfg.MaxConcurrentSessions {
		return nil
	}

	// Store returns sessions oldest first
	toInvalidate := len(sessions) - m.cfg.MaxConcurrentSessions + 1
	for i := 0; i < toInvalidate; i++ {
		m.InvalidateSession(ctx, sessions[i].SessionID, model.ReasonConcurrentSessionLimit)
	}

	return nil
}
