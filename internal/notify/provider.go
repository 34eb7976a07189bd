// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify implements the Notification Manager (spec §4.10): an
// ordered registry of delivery providers, fanned out with per-provider
// error isolation. The Provider interface and the isolation pattern are
// grounded on the teacher's internal/detection.Notifier interface and
// its WebhookNotifier/DiscordNotifier implementations.
package notify

import "context"

// Message is what a detector asks the Notification Manager to deliver.
type Message struct {
	Title    string
	Body     string
	ImageURL string
	// Priority is a provider-defined urgency hint. Pushover maps it
	// directly to its own priority parameter (spec §4.10 supplement:
	// disk-space alerts send at priority 1, everything else at 0).
	Priority int
}

// Provider is a pluggable delivery backend (spec §4.10: "Every provider
// must implement: initialize, is_configured, send").
type Provider interface {
	Name() string
	IsConfigured() bool
	Send(ctx context.Context, msg Message) error
}

// Manager holds an ordered set of providers and fans a Message out to
// every configured one, isolating failures (spec §4.10).
type Manager struct {
	providers []Provider
}

func NewManager(providers ...Provider) *Manager {
	return &Manager{providers: providers}
}

// Register appends a provider, preserving send order.
func (m *Manager) Register(p Provider) {
	m.providers = append(m.providers, p)
}

// Result records the outcome of one provider's send attempt.
type Result struct {
	Provider string
	Err      error
}

// Send calls every configured provider in registration order. One
// failing provider does not prevent the others from running. It reports
// true iff at least one provider succeeded (spec §4.10: "Any success
// returns true").
func (m *Manager) Send(ctx context.Context, msg Message) (bool, []Result) {
	var results []Result
	anySuccess := false
	for _, p := range m.providers {
		if !p.IsConfigured() {
			continue
		}
		err := p.Send(ctx, msg)
		results = append(results, Result{Provider: p.Name(), Err: err})
		if err == nil {
			anySuccess = true
		}
	}
	return anySuccess, results
}
