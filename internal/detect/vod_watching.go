// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chanwatch/sidecar/internal/alertbus"
	"github.com/chanwatch/sidecar/internal/dvrclient"
	"github.com/chanwatch/sidecar/internal/logging"
)

// vodMetadataSource resolves a file id to its catalog metadata.
// *cache.VODCache satisfies this; tests use a lightweight stub.
type vodMetadataSource interface {
	Lookup(ctx context.Context, fileID string) (dvrclient.VODItem, bool)
}

// vodSession is the VOD Session record (spec §3).
type vodSession struct {
	timestamp         string
	lastUpdate        time.Time
	lastNotification  time.Time
	device            string
	fileID            string
	ip                string
	sessionIdentifier string
}

// VODWatchingOptions mirrors the spec's vod_* config toggles (§6).
type VODWatchingOptions struct {
	ShowDevice           bool
	ShowIP               bool
	ShowSummary          bool
	ShowCast             bool
	AlertCooldown        time.Duration
	SignificantThreshold time.Duration
}

// VODWatching is the VOD-Watching Detector (spec §4.7), grounded on
// original_source/core/alerts/vod_watching.py.
type VODWatching struct {
	mu sync.Mutex

	vod  vodMetadataSource
	bus  *alertbus.Bus
	opts VODWatchingOptions

	sessions      map[string]*vodSession // sessionKey -> session
	identifierIPs map[string]string      // sessionIdentifier -> last known IP
}

func NewVODWatching(vod vodMetadataSource, bus *alertbus.Bus, opts VODWatchingOptions) *VODWatching {
	return &VODWatching{
		vod:           vod,
		bus:           bus,
		opts:          opts,
		sessions:      make(map[string]*vodSession),
		identifierIPs: make(map[string]string),
	}
}

func (d *VODWatching) Name() string { return "VOD-Watching" }

func (d *VODWatching) ShouldHandle(ev Event) bool {
	if ev.Type != "activities.set" {
		return false
	}
	isFileEvent := strings.HasPrefix(ev.Name, "6-file-") ||
		strings.HasPrefix(ev.Name, "7-file") ||
		(strings.HasPrefix(ev.Name, "7-") && strings.Contains(ev.Name, "file"))
	if !isFileEvent {
		return false
	}
	if ev.Value == "" {
		return true
	}
	hasKeyword := strings.Contains(ev.Value, "Watching") || strings.Contains(ev.Value, "Streaming")
	return hasKeyword && strings.Contains(ev.Value, "at")
}

var (
	reVODFileID     = regexp.MustCompile(`file-?(\d+)`)
	reVODIdentifier = regexp.MustCompile(`file\d+-([a-zA-Z0-9.\-]+)`)
)

// parseEventName splits a VOD activities.set Name into fileId and
// sessionIdentifier (spec §4.7). The primary path splits on "-"; when a
// Name doesn't split cleanly into the expected tokens (e.g. a historical
// variant that embeds other "-"-separated segments before "file"), it
// falls back to regex extraction, grounded on
// original_source/core/alerts/vod_watching.py's file_match/id_match
// fallbacks.
func parseVODEventName(name string) (fileID, sessionIdentifier string, ok bool) {
	parts := strings.Split(name, "-")
	if len(parts) >= 3 {
		if parts[1] == "file" {
			fileID = parts[2]
			if len(parts) > 3 {
				sessionIdentifier = strings.Join(parts[3:], "-")
			}
		} else if strings.HasPrefix(parts[1], "file") {
			fileID = parts[1][4:]
			if len(parts) > 2 {
				sessionIdentifier = strings.Join(parts[2:], "-")
			}
		}
	}

	if fileID == "" {
		if m := reVODFileID.FindStringSubmatch(name); m != nil {
			fileID = m[1]
		}
	}
	if sessionIdentifier == "" {
		if m := reVODIdentifier.FindStringSubmatch(name); m != nil {
			sessionIdentifier = m[1]
		}
	}

	return fileID, sessionIdentifier, fileID != "" && sessionIdentifier != ""
}

func extractCleanDeviceName(value string) (string, bool) {
	idx := strings.Index(value, " from ")
	if idx < 0 {
		return "", false
	}
	devicePart := strings.TrimSpace(value[idx+len(" from "):])
	if at := strings.Index(devicePart, " at "); at >= 0 {
		devicePart = strings.TrimSpace(devicePart[:at])
	}
	devicePart = strings.TrimPrefix(devicePart, "(")
	devicePart = strings.TrimSuffix(devicePart, ")")
	if IsValidIP(devicePart) {
		return "", false
	}
	return devicePart, devicePart != ""
}

var reBareIP = regexp.MustCompile(`\d+\.\d+\.\d+\.\d+`)

func extractVODIPAddress(value string) string {
	if idx := strings.Index(value, " from "); idx >= 0 {
		rest := value[idx+len(" from "):]
		if at := strings.Index(rest, " at "); at >= 0 {
			rest = rest[:at]
		}
		rest = strings.TrimSpace(rest)
		if reBareIP.MatchString(rest) && reBareIP.FindString(rest) == rest {
			return rest
		}
	}
	if open := strings.LastIndex(value, "("); open >= 0 {
		if close := strings.LastIndex(value, ")"); close > open {
			candidate := strings.TrimSpace(value[open+1 : close])
			if reBareIP.MatchString(candidate) && reBareIP.FindString(candidate) == candidate {
				return candidate
			}
		}
	}
	return reBareIP.FindString(value)
}

// parseTimestampToSeconds parses "1h15m42s" or "1:15:42"-style timestamps.
func parseTimestampToSeconds(ts string) int {
	if ts == "" {
		return 0
	}
	if strings.ContainsAny(ts, "hms") {
		var h, m, s int
		fmt.Sscanf(ts, "%dh%dm%ds", &h, &m, &s)
		if h == 0 && !strings.Contains(ts, "h") {
			fmt.Sscanf(ts, "%dm%ds", &m, &s)
		}
		if h == 0 && m == 0 && !strings.Contains(ts, "m") {
			fmt.Sscanf(ts, "%ds", &s)
		}
		return h*3600 + m*60 + s
	}
	parts := strings.Split(ts, ":")
	switch len(parts) {
	case 3:
		h, _ := strconv.Atoi(parts[0])
		m, _ := strconv.Atoi(parts[1])
		s, _ := strconv.Atoi(parts[2])
		return h*3600 + m*60 + s
	case 2:
		m, _ := strconv.Atoi(parts[0])
		s, _ := strconv.Atoi(parts[1])
		return m*60 + s
	default:
		v, _ := strconv.Atoi(parts[0])
		return v
	}
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", h, m, s)
	}
	return fmt.Sprintf("%dm %02ds", m, s)
}

func (d *VODWatching) Handle(ctx context.Context, ev Event) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fileID, sessionIdentifier, ok := parseVODEventName(ev.Name)
	if !ok {
		return false, nil
	}
	sessionKey := fmt.Sprintf("vod%s-%s", fileID, sessionIdentifier)

	// Cross-file switch: drop any other session with the same identifier
	// but a different file id (spec §4.7).
	if ev.Value != "" {
		for key, s := range d.sessions {
			if s.sessionIdentifier == sessionIdentifier && s.fileID != fileID {
				delete(d.sessions, key)
			}
		}
	}

	if ev.Value == "" {
		delete(d.sessions, sessionKey)
		return false, nil
	}

	deviceName, hasDevice := extractCleanDeviceName(ev.Value)
	ip := extractVODIPAddress(ev.Value)

	if strings.Contains(ev.Value, "Streaming") && !strings.Contains(ev.Value, " at ") {
		existing, ok := d.sessions[sessionKey]
		if !ok {
			d.sessions[sessionKey] = &vodSession{
				timestamp:         "Streaming",
				lastUpdate:        time.Now(),
				device:            deviceOrUnknown(deviceName, hasDevice),
				fileID:            fileID,
				ip:                ipOrUnknown(ip),
				sessionIdentifier: sessionIdentifier,
			}
		} else {
			existing.timestamp = "Streaming"
			existing.lastUpdate = time.Now()
		}
		return false, nil
	}

	at := strings.Index(ev.Value, " at ")
	if at < 0 {
		return false, nil
	}
	currentTimestamp := strings.TrimSpace(ev.Value[at+len(" at "):])

	existing, found := d.sessions[sessionKey]
	now := time.Now()

	// A seek or chapter jump crosses the significant-progress threshold
	// and is worth a fresh notification even mid-cooldown (spec §4.7).
	bypassCooldown := false
	if found && d.opts.SignificantThreshold > 0 {
		lastSeconds := parseTimestampToSeconds(existing.timestamp)
		curSeconds := parseTimestampToSeconds(currentTimestamp)
		delta := curSeconds - lastSeconds
		if delta < 0 {
			delta = -delta
		}
		if time.Duration(delta)*time.Second >= d.opts.SignificantThreshold {
			bypassCooldown = true
		}
	}

	if found && !bypassCooldown && now.Sub(existing.lastNotification) < d.opts.AlertCooldown {
		existing.timestamp = currentTimestamp
		existing.lastUpdate = now
		return false, nil
	}

	sent, ipToStore, err := d.emit(ctx, fileID, sessionIdentifier, deviceName, hasDevice, ip, currentTimestamp)
	if err != nil {
		return false, err
	}
	if sent {
		d.sessions[sessionKey] = &vodSession{
			timestamp:         currentTimestamp,
			lastUpdate:        now,
			lastNotification:  now,
			device:            deviceOrUnknown(deviceName, hasDevice),
			fileID:            fileID,
			ip:                ipOrUnknown(ip),
			sessionIdentifier: sessionIdentifier,
		}
		if ipToStore != "" {
			d.identifierIPs[sessionIdentifier] = ipToStore
		}
	} else if existing != nil {
		existing.lastUpdate = now
	}
	return sent, nil
}

func deviceOrUnknown(name string, ok bool) string {
	if ok {
		return name
	}
	return "Unknown"
}

func ipOrUnknown(ip string) string {
	if ip == "" {
		return "Unknown"
	}
	return ip
}

func (d *VODWatching) emit(ctx context.Context, fileID, sessionIdentifier, deviceName string, hasDevice bool, ip, currentTimestamp string) (bool, string, error) {
	item, ok := d.vod.Lookup(ctx, fileID)
	if !ok {
		logging.Debug().Str("file_id", fileID).Msg("vod metadata not found")
		return false, "", nil
	}

	finalDevice := "Unknown Device"
	if d.opts.ShowDevice && hasDevice && deviceName != "" {
		finalDevice = deviceName
	}

	preferredIP := ip
	if preferredIP == "" && IsValidIP(sessionIdentifier) {
		preferredIP = sessionIdentifier
	}
	if preferredIP == "" {
		preferredIP = d.identifierIPs[sessionIdentifier]
	}
	finalIP := "Unknown IP"
	if d.opts.ShowIP && preferredIP != "" {
		finalIP = preferredIP
	}
	ipToStore := ""
	if finalIP != "Unknown IP" {
		ipToStore = finalIP
	}

	titleLine := item.Title
	if item.Year > 0 {
		titleLine = fmt.Sprintf("%s (%d)", titleLine, item.Year)
	}
	if item.EpisodeTitle != "" {
		titleLine = fmt.Sprintf("%s - %s", titleLine, item.EpisodeTitle)
	}

	var parts []string
	if titleLine != "" {
		parts = append(parts, titleLine)
	}
	if item.Duration > 0 {
		progress := formatDuration(parseTimestampToSeconds(currentTimestamp))
		total := formatDuration(int(item.Duration))
		parts = append(parts, fmt.Sprintf("Duration: %s / %s", progress, total))
	}
	if d.opts.ShowDevice {
		parts = append(parts, "Device Name: "+finalDevice)
	}
	if d.opts.ShowIP {
		parts = append(parts, "Device IP: "+finalIP)
	}
	if d.opts.ShowSummary && item.Summary != "" {
		parts = append(parts, "\n"+item.Summary+"\n")
	}

	var info []string
	var ratingGenre []string
	if item.Rating != "" {
		ratingGenre = append(ratingGenre, "Rating: "+item.Rating)
	}
	if len(item.Genres) > 0 {
		ratingGenre = append(ratingGenre, "Genres: "+strings.Join(item.Genres, ", "))
	}
	if len(ratingGenre) > 0 {
		info = append(info, strings.Join(ratingGenre, " · "))
	}
	if d.opts.ShowCast && len(item.Cast) > 0 {
		castStr := strings.Join(item.Cast[:min(3, len(item.Cast))], ", ")
		if len(item.Cast) > 3 {
			castStr += ", ..."
		}
		info = append(info, "Cast: "+castStr)
	}
	if len(info) > 0 {
		parts = append(parts, strings.Join(info, "\n"))
	}

	message := strings.Join(parts, "\n")

	if d.bus != nil {
		if err := d.bus.Publish(alertbus.Alert{
			Kind:     "watching_vod",
			Subject:  item.Title,
			Device:   finalDevice,
			Title:    "Channels DVR - Watching DVR Content",
			Body:     message,
			ImageURL: item.ImageURL,
			Icon:     "film",
		}); err != nil {
			return false, "", fmt.Errorf("vod-watching: publish alert: %w", err)
		}
	}
	return true, ipToStore, nil
}

// Cleanup removes sessions idle > 1h and stale identifier->IP cache
// entries (spec §4.7).
func (d *VODWatching) Cleanup(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	keys := make([]string, 0, len(d.sessions))
	for key := range d.sessions {
		keys = append(keys, key)
	}

	cutoff := time.Now().Add(-time.Hour)
	activeIdentifiers := make(map[string]bool)
	for _, key := range boundedProbe(keys) {
		s := d.sessions[key]
		if s.lastUpdate.Before(cutoff) {
			delete(d.sessions, key)
			continue
		}
		activeIdentifiers[s.sessionIdentifier] = true
	}
	for _, s := range d.sessions {
		activeIdentifiers[s.sessionIdentifier] = true
	}
	for id := range d.identifierIPs {
		if !activeIdentifiers[id] {
			delete(d.identifierIPs, id)
		}
	}
}
