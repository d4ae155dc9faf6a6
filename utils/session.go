package utils

import (
	"strings"

	"main/model"

	ua "github.com/mileusna/useragent"
)

// ParseUserAgent extracts a best-effort device classification from a
// User-Agent string. Unparseable or empty input yields "Unknown" fields.
func ParseUserAgent(userAgent string) model.DeviceInfo {
	if strings.TrimSpace(userAgent) == "" {
		return model.DeviceInfo{Browser: "Unknown", OS: "Unknown", Device: "Unknown"}
	}

	parsedUA := ua.Parse(userAgent)

	info := model.DeviceInfo{
		Browser: strings.TrimSpace(parsedUA.Name),
		OS:      strings.TrimSpace(parsedUA.OS),
		Device:  "Desktop",
	}
	if info.Browser == "" {
		info.Browser = "Unknown"
	}
	if info.OS == "" {
		info.OS = "Unknown"
	}

	if parsedUA.Tablet {
		info.Device = "Tablet"
	} else if parsedUA.Mobile {
		info.Device = "Mobile"
	}

	return info
}
