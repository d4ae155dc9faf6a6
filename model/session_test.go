package model

import (
	"testing"
	"time"
)

func TestDeviceInfoDisplayName(t *testing.T) {
	info := DeviceInfo{Browser: "Chrome", OS: "Windows", Device: "Desktop"}
	if got := info.DisplayName(); got != "Chrome on Windows" {
		t.Errorf("DisplayName() = %q, want %q", got, "Chrome on Windows")
	}
}

func TestSessionSummaryCarriesDisplayName(t *testing.T) {
	session := &Session{
		SessionID:      "s-1",
		UserID:         "user-1",
		DeviceInfo:     DeviceInfo{Browser: "Safari", OS: "iOS", Device: "Mobile"},
		CreatedAt:      time.Now(),
		LastActivityAt: time.Now(),
		IsActive:       true,
	}

	summary := session.Summary()
	if summary.DisplayName != "Safari on iOS" {
		t.Errorf("summary display name = %q, want %q", summary.DisplayName, "Safari on iOS")
	}
	if summary.SessionID != session.SessionID {
		t.Errorf("summary session id = %q, want %q", summary.SessionID, session.SessionID)
	}
}
