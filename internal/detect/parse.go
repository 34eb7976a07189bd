// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package detect holds the four stateful alert detectors (spec §4.6-4.9)
// and the Detector capability interface that the Event Monitor dispatches
// through. This file is grounded on
// original_source/core/helpers/parsing.py: it ports the regex-based
// extraction of channel number/name, device, IP, resolution, and stream
// source from a raw activity string to Go's regexp package.
package detect

import (
	"net"
	"regexp"
	"strings"
)

var (
	reChannelNumber = regexp.MustCompile(`(?i)ch(?:annel)?\s*(\d+\.\d+|\d+)`)
	reChannelName   = regexp.MustCompile(`(?i)ch(?:annel)?\s*(?:\d+\.\d+|\d+)\s+([^()]+?)\s+from`)
	reResolution    = regexp.MustCompile(`(\d+[pi])`)
	reFrom          = regexp.MustCompile(`from\s+([^:()]+)`)
	reParenIP       = regexp.MustCompile(`\(([\d.]+)\)`)
	reHexSource     = regexp.MustCompile(`(?i)^[0-9a-f]+$`)
)

// IsValidIP reports whether s parses as an IPv4 or IPv6 address.
func IsValidIP(s string) bool {
	if s == "" {
		return false
	}
	return net.ParseIP(s) != nil
}

// ExtractChannelNumber pulls the leading channel number out of an
// activity value ("Watching ch7.1 ABC from ..." -> "7.1").
func ExtractChannelNumber(value string) (string, bool) {
	m := reChannelNumber.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractChannelName pulls the channel name between the channel number
// and "from".
func ExtractChannelName(value string) (string, bool) {
	m := reChannelName.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if name == "" {
		return "", false
	}
	return name, true
}

// ExtractResolution returns the first "<digits>p"/"<digits>i" token.
func ExtractResolution(value string) (string, bool) {
	m := reResolution.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractDeviceName returns the text after "from " when it is not
// itself an IP address.
func ExtractDeviceName(value string) (string, bool) {
	m := reFrom.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	name := strings.TrimSpace(m[1])
	if name == "" || IsValidIP(name) {
		return "", false
	}
	return name, true
}

// ExtractIPAddress returns the device IP, preferring the parenthetical
// form ("... (192.168.1.10) ...") and falling back to the "from " token
// when that itself is an IP.
func ExtractIPAddress(value string) (string, bool) {
	if m := reParenIP.FindStringSubmatch(value); m != nil {
		if IsValidIP(m[1]) {
			return m[1], true
		}
	}
	if m := reFrom.FindStringSubmatch(value); m != nil {
		candidate := strings.TrimSpace(m[1])
		if IsValidIP(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// ExtractSourceFromSessionID classifies the stream source descriptor
// embedded in a session id of the form "<n>-stream-<TYPE>-<DETAIL>"
// (spec §4.6 step 1).
func ExtractSourceFromSessionID(sessionID string) string {
	parts := strings.Split(sessionID, "-")
	if len(parts) >= 3 && strings.Contains(parts[1], "stream") {
		sourceType := parts[2]
		switch {
		case strings.HasPrefix(sourceType, "M3U"):
			if len(parts) > 3 {
				return parts[3]
			}
			return "M3U"
		case strings.HasPrefix(sourceType, "TVE"):
			if len(parts) > 3 {
				provider := strings.SplitN(parts[3], "_", 2)[0]
				return "TVE (" + capitalize(provider) + ")"
			}
			return "TVE"
		case reHexSource.MatchString(sourceType):
			return "Tuner (" + sourceType + ")"
		default:
			return sourceType
		}
	}
	return "Unknown source"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// IsWatchingValue reports whether an activities.set Value represents
// live channel viewing (spec §4.6).
func IsWatchingValue(value string) bool {
	if value == "" {
		return false
	}
	if strings.Contains(value, "Watching ch") {
		return true
	}
	lower := strings.ToLower(value)
	return strings.Contains(lower, "channel") && strings.Contains(lower, "watching")
}
