// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics registers the Event Monitor's observability counters
// (spec §4.1: total, alert-hit, filtered, error) as Prometheus metrics.
// Per spec §6, the core exposes no network listener of its own; these
// counters are registered in-process for an operator to scrape through
// whatever supervising process embeds this package, and are also read
// back directly (via the prometheus testutil-free Get* helpers) by the
// Event Monitor for its own periodic log line.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	EventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chanwatch",
		Subsystem: "events",
		Name:      "total",
		Help:      "Total SSE events received from the DVR.",
	})
	EventsAlertHit = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chanwatch",
		Subsystem: "events",
		Name:      "alert_hit_total",
		Help:      "Events that caused at least one detector to emit a notification.",
	})
	EventsFiltered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chanwatch",
		Subsystem: "events",
		Name:      "filtered_total",
		Help:      "Events no detector chose to handle.",
	})
	EventsError = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chanwatch",
		Subsystem: "events",
		Name:      "error_total",
		Help:      "Events dropped due to malformed JSON or missing fields.",
	})
	ReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "chanwatch",
		Subsystem: "sse",
		Name:      "reconnects_total",
		Help:      "Number of SSE reconnect attempts.",
	})
	ActiveStreams = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "chanwatch",
		Subsystem: "streams",
		Name:      "active",
		Help:      "Unique devices currently streaming, per the Stream Tracker.",
	})
)

// Registry is the private registry this sidecar's metrics live in. A
// supervising process (or a future control-plane process) can mount this
// at /metrics; this core never does.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(EventsTotal, EventsAlertHit, EventsFiltered, EventsError, ReconnectsTotal, ActiveStreams)
}
