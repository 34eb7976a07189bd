// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package eventmonitor is the Event Monitor (spec §4.1): it owns the SSE
// connection to the DVR, reconnects with backoff, runs an independent
// keep-alive pinger, and dispatches each parsed event to every
// registered detector in registration order. Grounded on
// original_source/core/engine/event_monitor.py.
package eventmonitor

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/chanwatch/sidecar/internal/detect"
	"github.com/chanwatch/sidecar/internal/logging"
	"github.com/chanwatch/sidecar/internal/metrics"
)

// eventSource is the test seam for *dvrclient.Client.
type eventSource interface {
	SubscribeEvents(ctx context.Context) (io.ReadCloser, error)
	GetStatus(ctx context.Context) error
}

// Options mirrors the spec's reconnect/keep-alive constants (§4.1).
type Options struct {
	BackoffMin        time.Duration
	BackoffMax        time.Duration
	KeepAliveInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.BackoffMin == 0 {
		o.BackoffMin = 5 * time.Second
	}
	if o.BackoffMax == 0 {
		o.BackoffMax = 60 * time.Second
	}
	if o.KeepAliveInterval == 0 {
		o.KeepAliveInterval = 15 * time.Second
	}
	return o
}

// Monitor is the Event Monitor. Run and the keep-alive pinger are each
// meant to be registered as their own supervised service; Run already
// starts its own keep-alive goroutine per connection, so a supervisor
// only needs to run Monitor.Run itself (see internal/supervisor).
type Monitor struct {
	client    eventSource
	detectors []detect.Detector
	opts      Options
}

func New(client eventSource, detectors []detect.Detector, opts Options) *Monitor {
	return &Monitor{client: client, detectors: detectors, opts: opts.withDefaults()}
}

// Run is the reconnect loop (spec §4.1: "wait delay seconds (start 5,
// double up to 60), and retry"). Once a connection has stayed up longer
// than the maximum backoff, a subsequent failure resets the delay back
// to the minimum rather than continuing to escalate from wherever the
// previous failure streak left off — a deliberate correction of the
// original's unconditionally-monotonic backoff, which never resets and
// so treats a server that has been solid for days the same as one that
// is actively flapping.
func (m *Monitor) Run(ctx context.Context) error {
	delay := m.opts.BackoffMin
	for {
		if ctx.Err() != nil {
			return nil
		}

		uptime, err := m.connectAndRead(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			logging.Warn().Err(err).Msg("event stream connection error")
		}

		if uptime > m.opts.BackoffMax {
			delay = m.opts.BackoffMin
		}

		metrics.ReconnectsTotal.Inc()
		logging.Info().Dur("delay", delay).Msg("reconnecting to event stream")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		delay *= 2
		if delay > m.opts.BackoffMax {
			delay = m.opts.BackoffMax
		}
	}
}

// connectAndRead opens the SSE stream, runs its keep-alive pinger for
// the lifetime of the connection, and reads line by line until the
// stream ends or errors. It returns how long the connection stayed up.
func (m *Monitor) connectAndRead(ctx context.Context) (time.Duration, error) {
	body, err := m.client.SubscribeEvents(ctx)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	connectedAt := time.Now()
	logging.Info().Msg("connected to event stream")

	keepAliveCtx, cancelKeepAlive := context.WithCancel(ctx)
	defer cancelKeepAlive()
	go m.keepAlive(keepAliveCtx)

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return time.Since(connectedAt), nil
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		m.dispatchLine(ctx, line)
	}

	uptime := time.Since(connectedAt)
	if err := scanner.Err(); err != nil {
		return uptime, err
	}
	return uptime, errors.New("event stream closed by upstream")
}

// keepAlive issues GET /status every KeepAliveInterval until ctx is
// cancelled (spec §4.1: "failures are logged but do not themselves
// terminate the SSE loop").
func (m *Monitor) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(m.opts.KeepAliveInterval)
	defer ticker.Stop()
	streak := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.client.GetStatus(ctx); err != nil {
				logging.Warn().Err(err).Msg("keep-alive ping failed")
				streak = 0
				continue
			}
			streak++
			logging.Debug().Int("streak", streak).Msg("keep-alive ping ok")
		}
	}
}

// dispatchLine parses one line from the event stream and dispatches it,
// maintaining the observability counters (spec §4.1 "total, alert-hit,
// filtered, error").
func (m *Monitor) dispatchLine(ctx context.Context, line string) {
	ev, ok := parseLine(line)
	if !ok {
		metrics.EventsError.Inc()
		logging.Warn().Str("line", line).Msg("could not parse event line")
		return
	}
	metrics.EventsTotal.Inc()

	if ev.Type == "hello" {
		return
	}

	if m.dispatch(ctx, ev) {
		metrics.EventsAlertHit.Inc()
	} else {
		metrics.EventsFiltered.Inc()
	}
}

// dispatch fans ev out to every registered detector in registration
// order (spec §4.1, §5 ordering guarantee) and reports whether any
// detector sent a notification.
func (m *Monitor) dispatch(ctx context.Context, ev detect.Event) bool {
	alerted := false
	for _, d := range m.detectors {
		if !d.ShouldHandle(ev) {
			continue
		}
		sent, err := d.Handle(ctx, ev)
		if err != nil {
			metrics.EventsError.Inc()
			logging.Warn().Err(err).Str("detector", d.Name()).Msg("detector handling failed")
			continue
		}
		if sent {
			alerted = true
		}
	}
	return alerted
}
