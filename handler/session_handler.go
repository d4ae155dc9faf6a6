package handler

import (
	"log"

	"main/dto"
	"main/middleware"
	"main/model"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// SessionHandler serves the session lifecycle endpoints. Identity is
// established upstream by the auth middleware; these handlers only manage
// the session attached to that identity.
type SessionHandler struct {
	sessions *usecase.SessionManager
}

func NewSessionHandler(sessions *usecase.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CreateSession opens a session for the authenticated user. Runs after auth
// but before the session gate, since there is no session to validate yet.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	userID := c.GetString("user_id")
	role := model.Role(c.GetString("user_role"))

	session, err := h.sessions.CreateSession(
		c.Request.Context(),
		userID,
		role,
		c.ClientIP(),
		c.Request.UserAgent(),
	)
	if err != nil {
		log.Printf("Error creating session for user %s: %v", userID, err)
		utils.InternalError(c, "Failed to create session")
		return
	}

	c.SetCookie(middleware.SessionCookieName, session.SessionID, int(h.sessions.Config().AbsoluteTimeout.Seconds()), "/", "", true, true)

	utils.Created(c, dto.CreateSessionResponse{
		SessionID: session.SessionID,
		ExpiresAt: session.ExpiresAt,
	})
}

// GetCurrentSession returns the validated session attached by the gate.
func (h *SessionHandler) GetCurrentSession(c *gin.Context) {
	value, exists := c.Get("session")
	if !exists {
		utils.Unauthorized(c, "No active session")
		return
	}
	session := value.(*model.Session)

	utils.Success(c, gin.H{
		"valid":        true,
		"session":      dto.ToSessionResponse(session, session.SessionID),
		"rotation_due": h.sessions.ShouldRotateToken(c.Request.Context(), session.SessionID),
	})
}

// RefreshSession bumps the activity timestamp of the current session. The
// absolute deadline is untouched; only the idle window restarts.
func (h *SessionHandler) RefreshSession(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	if !h.sessions.UpdateActivity(c.Request.Context(), sessionID) {
		utils.Unauthorized(c, "Session expired or invalid")
		return
	}

	utils.Success(c, gin.H{"message": "Session refreshed"})
}

// Logout ends the current session.
func (h *SessionHandler) Logout(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	if !h.sessions.InvalidateSession(c.Request.Context(), sessionID, model.ReasonLogout) {
		utils.NotFound(c, "Session not found")
		return
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", true, true)
	utils.Success(c, gin.H{"message": "Logged out successfully"})
}

// LogoutAll ends every active session of the user, current one included.
func (h *SessionHandler) LogoutAll(c *gin.Context) {
	userID := c.GetString("user_id")

	count := h.sessions.InvalidateAllUserSessions(c.Request.Context(), userID, model.ReasonLogoutAll)

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", true, true)
	utils.Success(c, gin.H{
		"message":             "Successfully logged out of all sessions",
		"sessionsInvalidated": count,
	})
}

// ListSessions returns the user's active sessions in summary form.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	userID := c.GetString("user_id")

	summaries, err := h.sessions.GetUserSessions(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Error listing sessions for user %s: %v", userID, err)
		utils.InternalError(c, "Failed to fetch sessions")
		return
	}

	currentID := middleware.SessionID(c)
	for i := range summaries {
		if summaries[i].SessionID == currentID {
			// Move the current session first for display
			summaries[0], summaries[i] = summaries[i], summaries[0]
			break
		}
	}

	utils.Success(c, gin.H{
		"sessions": summaries,
		"count":    len(summaries),
	})
}

// DeleteSession terminates one of the user's own sessions by id. Targeting
// another user's session is a 403, not a 404, so enumeration is still
// unrewarding but auditable.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	userID := c.GetString("user_id")
	targetID := c.Param("id")

	session, err := h.sessions.GetSession(c.Request.Context(), targetID)
	if err != nil {
		log.Printf("Error fetching session %s: %v", targetID, err)
		utils.InternalError(c, "Failed to fetch session")
		return
	}
	if session == nil {
		utils.NotFound(c, "Session not found")
		return
	}
	if session.UserID != userID {
		utils.Forbidden(c, "Cannot terminate another user's session")
		return
	}

	if !h.sessions.InvalidateSession(c.Request.Context(), targetID, model.ReasonManualInvalidation) {
		utils.NotFound(c, "Session already inactive")
		return
	}

	utils.Success(c, gin.H{"message": "Session terminated"})
}

// GetConfig exposes the session policy so clients can schedule refreshes.
func (h *SessionHandler) GetConfig(c *gin.Context) {
	cfg := h.sessions.Config()
	utils.Success(c, dto.SessionConfigResponse{
		IdleTimeoutMinutes:    int(cfg.IdleTimeout.Minutes()),
		AbsoluteTimeoutHours:  int(cfg.AbsoluteTimeout.Hours()),
		MaxConcurrentSessions: cfg.MaxConcurrentSessions,
		TokenRotationMinutes:  int(cfg.TokenRotationInterval.Minutes()),
	})
}
