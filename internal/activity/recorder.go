// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package activity implements the Activity Recorder (spec §4.11): an
// append-only JSON log of emitted alerts, read by an external UI. The
// atomic-write pattern is the same one used by internal/streamtracker,
// grounded on the teacher pack's internal/indexer/fetch.FetchState.
package activity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxEntries = 500

// Record is one append-only activity log item (spec §3).
type Record struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Icon      string     `json:"icon"`
}

type dedupKey struct {
	recordType string
	subject    string
	device     string
}

// Recorder appends Records to a JSON array file, bounding it to
// maxEntries and applying a per-entity dedup window (spec §4.11).
type Recorder struct {
	mu       sync.Mutex
	path     string
	dedupTTL time.Duration
	lastSeen map[dedupKey]time.Time
}

func New(path string, dedupWindow time.Duration) *Recorder {
	return &Recorder{
		path:     path,
		dedupTTL: dedupWindow,
		lastSeen: make(map[dedupKey]time.Time),
	}
}

// Record appends a new activity entry unless it is a duplicate of one
// recorded within the dedup window for the same (type, subject,
// device). Returns the written Record, or the zero Record and false if
// deduplicated.
func (r *Recorder) Record(recordType, subject, device, title, message, icon string) (Record, bool, error) {
	key := dedupKey{recordType: recordType, subject: subject, device: device}
	now := time.Now()

	r.mu.Lock()
	if last, ok := r.lastSeen[key]; ok && now.Sub(last) < r.dedupTTL {
		r.mu.Unlock()
		return Record{}, false, nil
	}
	r.lastSeen[key] = now
	r.mu.Unlock()

	rec := Record{
		ID:        uuid.NewString(),
		Type:      recordType,
		Title:     title,
		Message:   message,
		Timestamp: now,
		Icon:      icon,
	}

	if err := r.append(rec); err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

func (r *Recorder) append(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.readLocked()
	if err != nil {
		return err
	}
	records = append(records, rec)
	if len(records) > maxEntries {
		records = records[len(records)-maxEntries:]
	}
	return r.writeLocked(records)
}

func (r *Recorder) readLocked() ([]Record, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("activity recorder: read: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("activity recorder: unmarshal: %w", err)
	}
	return records, nil
}

func (r *Recorder) writeLocked(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("activity recorder: marshal: %w", err)
	}

	dir := filepath.Dir(filepath.Clean(r.path))
	tmp, err := os.CreateTemp(dir, ".activity_history-*.json.tmp")
	if err != nil {
		return fmt.Errorf("activity recorder: create temp: %w", err)
	}
	name := tmp.Name()
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		os.Remove(name)
		if werr != nil {
			return fmt.Errorf("activity recorder: write: %w", werr)
		}
		return fmt.Errorf("activity recorder: close: %w", cerr)
	}
	if err := os.Rename(name, r.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("activity recorder: rename: %w", err)
	}
	return nil
}

// SweepDedup drops dedup-window entries older than the configured
// window, bounding the lastSeen map's growth.
func (r *Recorder) SweepDedup() {
	cutoff := time.Now().Add(-r.dedupTTL)
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.lastSeen {
		if t.Before(cutoff) {
			delete(r.lastSeen, k)
		}
	}
}
