package config

import (
	"fmt"
	"time"

	"main/utils"
)

// SessionConfig holds the session lifecycle policy. ExpiresAt on every session
// is derived from AbsoluteTimeout at creation; IdleTimeout is re-checked on
// each access.
type SessionConfig struct {
	IdleTimeout           time.Duration `json:"idle_timeout"`
	AbsoluteTimeout       time.Duration `json:"absolute_timeout"`
	MaxConcurrentSessions int           `json:"max_concurrent_sessions"`
	TokenRotationInterval time.Duration `json:"token_rotation_interval"`
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		IdleTimeout:           30 * time.Minute,
		AbsoluteTimeout:       12 * time.Hour,
		MaxConcurrentSessions: 3,
		TokenRotationInterval: 15 * time.Minute,
	}
}

func LoadSessionConfig() (SessionConfig, error) {
	def := DefaultSessionConfig()
	cfg := SessionConfig{
		IdleTimeout:           utils.GetEnvAsDuration("SESSION_IDLE_TIMEOUT", def.IdleTimeout),
		AbsoluteTimeout:       utils.GetEnvAsDuration("SESSION_ABSOLUTE_TIMEOUT", def.AbsoluteTimeout),
		MaxConcurrentSessions: utils.GetEnvAsInt("SESSION_MAX_CONCURRENT", def.MaxConcurrentSessions),
		TokenRotationInterval: utils.GetEnvAsDuration("SESSION_TOKEN_ROTATION_INTERVAL", def.TokenRotationInterval),
	}
	return cfg, cfg.Validate()
}

func (c SessionConfig) Validate() error {
	if c.IdleTimeout <= 0 {
		return fmt.Errorf("idle timeout must be positive, got %s", c.IdleTimeout)
	}
	if c.AbsoluteTimeout <= c.IdleTimeout {
		return fmt.Errorf("absolute timeout (%s) must exceed idle timeout (%s)", c.AbsoluteTimeout, c.IdleTimeout)
	}
	if c.MaxConcurrentSessions < 1 {
		return fmt.Errorf("max concurrent sessions must be at least 1, got %d", c.MaxConcurrentSessions)
	}
	if c.TokenRotationInterval <= 0 {
		return fmt.Errorf("token rotation interval must be positive, got %s", c.TokenRotationInterval)
	}
	return nil
}
