// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package streamtracker implements the Stream Tracker (spec §4.4): a
// unique-device stream counter driven by raw activity strings, writing
// the live count to a shared file that is the integration surface with
// an external UI/API layer. The atomic write pattern (temp file in the
// same directory, then rename) is grounded on the teacher pack's
// internal/indexer/fetch.FetchState.saveLocked.
package streamtracker

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

// stream is one tracked session (spec §4.4: "active_streams : sessionId
// -> {activity, device, last_seen}").
type stream struct {
	activity string
	device   string
	lastSeen time.Time
}

// Tracker maintains the unique-device stream count and mirrors it to
// disk. All state lives behind a single mutex (spec §8: "The Stream
// Tracker ... have independent mutexes").
type Tracker struct {
	mu            sync.Mutex
	activeStreams map[string]*stream // sessionId -> stream
	deviceSessions map[string]string // device -> sessionId
	path          string
}

// New creates a Tracker that mirrors its count to countFilePath.
func New(countFilePath string) *Tracker {
	return &Tracker{
		activeStreams:  make(map[string]*stream),
		deviceSessions: make(map[string]string),
		path:           countFilePath,
	}
}

// ProcessActivity records activity for sessionId under device, or — when
// value is empty — removes the session (spec §4.4). It returns whether
// the unique-device count changed, and persists stream_count.txt when it
// does.
func (t *Tracker) ProcessActivity(value, sessionID, device string) (changed bool, err error) {
	t.mu.Lock()
	before := t.uniqueDeviceCountLocked()

	if value == "" {
		t.removeLocked(sessionID)
	} else {
		t.activeStreams[sessionID] = &stream{activity: value, device: device, lastSeen: time.Now()}
		// A device switching devices (same sessionId reused with a new
		// device label) should not double count; re-point the mapping.
		if prevDevice, ok := t.deviceOf(sessionID); ok && prevDevice != device {
			t.unmapDeviceIfMatches(prevDevice, sessionID)
		}
		t.deviceSessions[device] = sessionID
	}

	after := t.uniqueDeviceCountLocked()
	t.mu.Unlock()

	if before == after {
		return false, nil
	}
	return true, t.writeCount(after)
}

// deviceOf returns the device currently mapped to sessionId, if any.
// Caller must hold t.mu.
func (t *Tracker) deviceOf(sessionID string) (string, bool) {
	for device, sid := range t.deviceSessions {
		if sid == sessionID {
			return device, true
		}
	}
	return "", false
}

// unmapDeviceIfMatches removes device's mapping if it still points at
// sessionId. Caller must hold t.mu.
func (t *Tracker) unmapDeviceIfMatches(device, sessionID string) {
	if t.deviceSessions[device] == sessionID {
		delete(t.deviceSessions, device)
	}
}

// removeLocked drops sessionId from both maps. Caller must hold t.mu.
func (t *Tracker) removeLocked(sessionID string) {
	if s, ok := t.activeStreams[sessionID]; ok {
		t.unmapDeviceIfMatches(s.device, sessionID)
		delete(t.activeStreams, sessionID)
	}
}

// uniqueDeviceCountLocked returns len(deviceSessions). Caller must hold
// t.mu.
func (t *Tracker) uniqueDeviceCountLocked() int {
	return len(t.deviceSessions)
}

// Count returns the current unique-device stream count.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.uniqueDeviceCountLocked()
}

// CleanupStaleSessions removes sessions whose last_seen predates maxAge,
// rewriting stream_count.txt if the count changed (spec §4.4).
func (t *Tracker) CleanupStaleSessions(maxAge time.Duration) (changed bool, err error) {
	cutoff := time.Now().Add(-maxAge)

	t.mu.Lock()
	before := t.uniqueDeviceCountLocked()
	for sid, s := range t.activeStreams {
		if s.lastSeen.Before(cutoff) {
			t.removeLocked(sid)
		}
	}
	after := t.uniqueDeviceCountLocked()
	t.mu.Unlock()

	if before == after {
		return false, nil
	}
	return true, t.writeCount(after)
}

// writeCount atomically rewrites the count file with n (spec §8: "write
// full content, close").
func (t *Tracker) writeCount(n int) error {
	if t.path == "" {
		return nil
	}
	dir := filepath.Dir(filepath.Clean(t.path))
	tmp, err := os.CreateTemp(dir, ".stream_count-*.tmp")
	if err != nil {
		return fmt.Errorf("stream tracker: create temp: %w", err)
	}
	name := tmp.Name()
	_, werr := tmp.WriteString(strconv.Itoa(n))
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(name)
		if werr != nil {
			return fmt.Errorf("stream tracker: write: %w", werr)
		}
		return fmt.Errorf("stream tracker: close: %w", cerr)
	}
	if err := os.Rename(name, t.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("stream tracker: rename: %w", err)
	}
	return nil
}
