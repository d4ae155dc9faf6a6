package handler

import (
	"log"

	"main/model"
	"main/usecase"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// StatsHandler serves the security dashboard summary for the current user.
type StatsHandler struct {
	sessions *usecase.SessionManager
	users    UserStore
}

func NewStatsHandler(sessions *usecase.SessionManager, users UserStore) *StatsHandler {
	return &StatsHandler{
		sessions: sessions,
		users:    users,
	}
}

func (h *StatsHandler) GetSecurityStats(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := h.users.FindUser(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Error fetching user %s: %v", userID, err)
		utils.InternalError(c, "Failed to fetch user details")
		return
	}
	if user == nil {
		utils.NotFound(c, "User not found")
		return
	}

	summaries, err := h.sessions.GetUserSessions(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Error fetching sessions for user %s: %v", userID, err)
		utils.InternalError(c, "Failed to fetch sessions")
		return
	}

	var stats model.SecurityStats

	stats.SessionStats.Active = len(summaries)
	for i, s := range summaries {
		if i == 0 || s.LastActivityAt.After(stats.SessionStats.LastActivity) {
			stats.SessionStats.LastActivity = s.LastActivityAt
		}
		if stats.SessionStats.OldestCreatedAt == nil || s.CreatedAt.Before(*stats.SessionStats.OldestCreatedAt) {
			createdAt := s.CreatedAt
			stats.SessionStats.OldestCreatedAt = &createdAt
		}
	}

	stats.TwoFactorStats.Enabled = user.TwoFactor.Enabled
	stats.TwoFactorStats.EnabledAt = user.TwoFactor.EnabledAt
	stats.TwoFactorStats.BackupCodesRemaining = len(user.TwoFactor.BackupCodes)

	stats.SystemStats.CPUUsagePercent = utils.GetCPUUsage()
	stats.SystemStats.MemoryUsageMB = utils.GetMemoryUsageMB()
	stats.SystemStats.UptimeSeconds = utils.GetUptimeSeconds()

	utils.Success(c, gin.H{
		"stats": stats,
	})
}
