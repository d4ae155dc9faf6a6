package utils

import "testing"

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		name        string
		userAgent   string
		wantBrowser string
		wantOS      string
		wantDevice  string
	}{
		{
			name:        "Chrome on Windows",
			userAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.131 Safari/537.36",
			wantBrowser: "Chrome",
			wantOS:      "Windows",
			wantDevice:  "Desktop",
		},
		{
			name:        "Safari on iPhone",
			userAgent:   "Mozilla/5.0 (iPhone; CPU iPhone OS 14_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Mobile/15E148 Safari/604.1",
			wantBrowser: "Safari",
			wantOS:      "iOS",
			wantDevice:  "Mobile",
		},
		{
			name:        "Safari on iPad",
			userAgent:   "Mozilla/5.0 (iPad; CPU OS 14_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Mobile/15E148 Safari/604.1",
			wantBrowser: "Safari",
			wantOS:      "iOS",
			wantDevice:  "Tablet",
		},
		{
			name:        "empty user agent",
			userAgent:   "",
			wantBrowser: "Unknown",
			wantOS:      "Unknown",
			wantDevice:  "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseUserAgent(tt.userAgent)

			if info.Browser != tt.wantBrowser {
				t.Errorf("ParseUserAgent() browser = %q, want %q", info.Browser, tt.wantBrowser)
			}
			if info.OS != tt.wantOS {
				t.Errorf("ParseUserAgent() os = %q, want %q", info.OS, tt.wantOS)
			}
			if info.Device != tt.wantDevice {
				t.Errorf("ParseUserAgent() device = %q, want %q", info.Device, tt.wantDevice)
			}
		})
	}
}
