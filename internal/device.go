package internal

import "strings"

// ClassifyUserAgent extracts a coarse (deviceType, os, browser) triple
// from a User-Agent header. Informational only, so a rough token match
// beats carrying a full UA database.
func ClassifyUserAgent(ua string) (deviceType, os, browser string) {
	lower := strings.ToLower(ua)

	deviceType = "desktop"
	switch {
	case lower == "":
		deviceType = "unknown"
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		deviceType = "tablet"
	case strings.Contains(lower, "mobi") || strings.Contains(lower, "android") ||
		strings.Contains(lower, "iphone"):
		deviceType = "mobile"
	}

	switch {
	case strings.Contains(lower, "android"):
		os = "Android"
	case strings.Contains(lower, "iphone"), strings.Contains(lower, "ipad"):
		os = "iOS"
	case strings.Contains(lower, "windows"):
		os = "Windows"
	case strings.Contains(lower, "mac os"):
		os = "macOS"
	case strings.Contains(lower, "linux"):
		os = "Linux"
	default:
		os = "unknown"
	}

	// Order matters: Chrome UAs claim Safari, Edge UAs claim Chrome.
	switch {
	case strings.Contains(lower, "edg/"):
		browser = "Edge"
	case strings.Contains(lower, "opr/"), strings.Contains(lower, "opera"):
		browser = "Opera"
	case strings.Contains(lower, "chrome/"):
		browser = "Chrome"
	case strings.Contains(lower, "firefox/"):
		browser = "Firefox"
	case strings.Contains(lower, "safari/"):
		browser = "Safari"
	default:
		browser = "unknown"
	}

	return deviceType, os, browser
}
