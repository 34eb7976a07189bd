// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the Session Store (spec §3, §4.3): a single
// mutex protecting active live-viewing sessions, in-flight event
// tracking keys (the reentrancy guard), and notification cooldown
// history. Ownership is exclusive: no other package reaches into these
// maps directly.
package session

import (
	"sync"
	"time"
)

// Session is a live viewing session (spec §3).
type Session struct {
	ID             string // the event Name this session is keyed by
	ChannelNumber  string
	ChannelName    string
	Device         string
	IP             string
	Source         string
	Resolution     string
	ProgramTitle   string
	ImageURL       string
	StreamCount    int
	LastTouch      time.Time
}

// Store is the Session Store. All three maps share one mutex, matching
// spec §4.3 ("A single mutex protects three maps").
type Store struct {
	mu                   sync.Mutex
	activeSessions       map[string]*Session // sessionId -> session
	processingEvents     map[string]time.Time // trackingKey -> ts
	notificationHistory  map[string]time.Time // notificationKey -> ts
}

func New() *Store {
	return &Store{
		activeSessions:      make(map[string]*Session),
		processingEvents:    make(map[string]time.Time),
		notificationHistory: make(map[string]time.Time),
	}
}

// Get returns the session for id, if any.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.activeSessions[id]
	return sess, ok
}

// Upsert stores sess under sess.ID, touching LastTouch.
func (s *Store) Upsert(sess *Session) {
	sess.LastTouch = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeSessions[sess.ID] = sess
}

// Touch refreshes the last-touch timestamp for an existing session
// without otherwise changing it (spec §4.6 step 4: "no-op progress
// update — refresh the timestamp and exit").
func (s *Store) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.activeSessions[id]; ok {
		sess.LastTouch = time.Now()
	}
}

// Remove deletes the session for id, returning it if present.
func (s *Store) Remove(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.activeSessions[id]
	if ok {
		delete(s.activeSessions, id)
	}
	return sess, ok
}

// FindByDevice returns the active session for device, if one exists,
// scanning the active set. Used by Channel-Watching to enforce "at most
// one active session per device" (spec §3 invariant).
func (s *Store) FindByDevice(device string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.activeSessions {
		if sess.Device == device {
			return sess, true
		}
	}
	return nil, false
}

// SweepStale removes sessions whose LastTouch is older than maxAge,
// returning the removed sessions (spec §4.3 TTL sweep, §8 invariant "(b)
// removed by the cleanup sweep after TTL").
func (s *Store) SweepStale(maxAge time.Duration) []*Session {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []*Session
	for id, sess := range s.activeSessions {
		if sess.LastTouch.Before(cutoff) {
			removed = append(removed, sess)
			delete(s.activeSessions, id)
		}
	}
	return removed
}

// MarkEventProcessing implements the reentrancy guard (spec §4.3): it
// returns false if trackingKey is already marked in-flight, true if this
// call claimed it. Callers that get false must return without emitting.
func (s *Store) MarkEventProcessing(trackingKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, inFlight := s.processingEvents[trackingKey]; inFlight {
		return false
	}
	s.processingEvents[trackingKey] = time.Now()
	return true
}

// CompleteEventProcessing releases the reentrancy guard for trackingKey.
func (s *Store) CompleteEventProcessing(trackingKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processingEvents, trackingKey)
}

// WasNotificationSent reports whether key was notified within the last
// `within` duration (spec §4.3, §4.5 should_send_notification).
func (s *Store) WasNotificationSent(key string, within time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	last, ok := s.notificationHistory[key]
	if !ok {
		return false
	}
	return time.Since(last) < within
}

// RecordNotification stamps key with the current time.
func (s *Store) RecordNotification(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notificationHistory[key] = time.Now()
}

// LastNotified returns the last notification time for key, if any.
func (s *Store) LastNotified(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.notificationHistory[key]
	return t, ok
}

// SweepNotificationHistory drops notification-history entries older than
// maxAge, bounding unbounded growth of the cooldown map.
func (s *Store) SweepNotificationHistory(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, t := range s.notificationHistory {
		if t.Before(cutoff) {
			delete(s.notificationHistory, k)
			n++
		}
	}
	return n
}

// SweepProcessingEvents drops stale in-flight markers that were never
// completed (e.g. a detector panicked mid-handle); a marker older than
// maxAge is almost certainly abandoned.
func (s *Store) SweepProcessingEvents(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, t := range s.processingEvents {
		if t.Before(cutoff) {
			delete(s.processingEvents, k)
			n++
		}
	}
	return n
}

// Count returns the number of active sessions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeSessions)
}
