package config

import (
	"testing"
	"time"
)

func TestDefaultSessionConfig(t *testing.T) {
	cfg := DefaultSessionConfig()

	if cfg.IdleTimeout != 30*time.Minute {
		t.Errorf("IdleTimeout = %v, want 30m", cfg.IdleTimeout)
	}
	if cfg.AbsoluteTimeout != 12*time.Hour {
		t.Errorf("AbsoluteTimeout = %v, want 12h", cfg.AbsoluteTimeout)
	}
	if cfg.MaxConcurrentSessions != 3 {
		t.Errorf("MaxConcurrentSessions = %d, want 3", cfg.MaxConcurrentSessions)
	}
	if cfg.TokenRotationInterval != 15*time.Minute {
		t.Errorf("TokenRotationInterval = %v, want 15m", cfg.TokenRotationInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults = %v, want nil", err)
	}
}

func TestSessionConfigValidate(t *testing.T) {
	base := DefaultSessionConfig()

	tests := []struct {
		name    string
		mutate  func(*SessionConfig)
		wantErr bool
	}{
		{"defaults pass", func(*SessionConfig) {}, false},
		{"zero idle timeout", func(c *SessionConfig) { c.IdleTimeout = 0 }, true},
		{"absolute below idle", func(c *SessionConfig) { c.AbsoluteTimeout = 10 * time.Minute }, true},
		{"absolute equals idle", func(c *SessionConfig) { c.AbsoluteTimeout = c.IdleTimeout }, true},
		{"zero session cap", func(c *SessionConfig) { c.MaxConcurrentSessions = 0 }, true},
		{"zero rotation interval", func(c *SessionConfig) { c.TokenRotationInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
