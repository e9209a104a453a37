package util

import (
	"regexp"
	"strings"
)

var androidModelRe = regexp.MustCompile(`Android[^;]*;\s*([^);]+)\)`)

// DeviceNameFromUserAgent derives a best-effort human readable label for a
// newly registered authenticator from the client User-Agent.
func DeviceNameFromUserAgent(ua string) string {
	switch {
	case strings.Contains(ua, "iPhone"):
		return "iPhone"
	case strings.Contains(ua, "iPad"):
		return "iPad"
	case strings.Contains(ua, "iPod"):
		return "iPod"
	case strings.Contains(ua, "Macintosh"):
		return "Mac"
	case strings.Contains(ua, "Android"):
		if m := androidModelRe.FindStringSubmatch(ua); m != nil {
			return strings.TrimSpace(m[1])
		}
		return "Android"
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	}
	return "Unknown Device"
}
