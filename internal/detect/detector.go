// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import "context"

// Event is the upstream SSE message dispatched to every registered
// Detector (spec §3 Event). Type identifies the stream the message
// belongs to (e.g. "activities.set", "jobs.created"); Name is an opaque,
// type-specific key; Value carries the payload.
type Event struct {
	Type  string
	Name  string
	Value string
}

// Detector is the capability set every alert detector implements. The
// Event Monitor dispatches events to each registered Detector in
// registration order (spec §4.1), grounded on the teacher's
// internal/detection.Detector rule interface, generalized from a single
// Check call to the four-phase shape the spec's detectors need
// (should-handle / handle / on-end / periodic cleanup).
type Detector interface {
	// Name identifies the detector for logging and metrics.
	Name() string

	// ShouldHandle reports whether this detector processes ev at all.
	ShouldHandle(ev Event) bool

	// Handle processes ev. It returns true if a notification was sent.
	Handle(ctx context.Context, ev Event) (bool, error)

	// Cleanup performs the detector's periodic sweep of its own state
	// (spec §5 "four cleanup sweepers").
	Cleanup(ctx context.Context)
}
