// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/chanwatch/sidecar/internal/activity"
	"github.com/chanwatch/sidecar/internal/alertbus"
	"github.com/chanwatch/sidecar/internal/dvrclient"
	"github.com/chanwatch/sidecar/internal/logging"
)

// diskStatusSource is the test seam for *dvrclient.Client.
type diskStatusSource interface {
	GetDiskStatus(ctx context.Context) (dvrclient.DiskStatus, error)
}

var errDiskSpaceRestartRequested = errors.New("disk-space: restart requested by health checker")

// DiskSpaceOptions mirrors the spec's ds_* config toggles (§6).
type DiskSpaceOptions struct {
	PercentThreshold    float64
	GBThreshold         float64
	CheckInterval       time.Duration
	AlertCooldown       time.Duration
	HealthCheckInterval time.Duration
	LogInterval         time.Duration
}

func (o DiskSpaceOptions) withDefaults() DiskSpaceOptions {
	if o.CheckInterval == 0 {
		o.CheckInterval = 120 * time.Second
	}
	if o.AlertCooldown == 0 {
		o.AlertCooldown = time.Hour
	}
	if o.HealthCheckInterval == 0 {
		o.HealthCheckInterval = 30 * time.Minute
	}
	if o.LogInterval == 0 {
		o.LogInterval = 5 * time.Minute
	}
	return o
}

// DiskSpace is the Disk-Space Detector (spec §4.9). Unlike the other
// three detectors it never sees SSE events: it runs its own poll loop
// against /dvr, independent of the event stream, plus a health-check
// task that restarts the poll loop if it stalls. It still satisfies
// Detector so the Event Monitor can register and Cleanup it uniformly;
// ShouldHandle/Handle are no-ops for it. Grounded on
// original_source/core/alerts/disk_space.py.
type DiskSpace struct {
	mu sync.Mutex

	client   diskStatusSource
	recorder *activity.Recorder
	bus      *alertbus.Bus
	opts     DiskSpaceOptions

	startedAt           time.Time
	consecutiveErrors   int
	havePrevious        bool
	previousFree        int64
	previousPercent     float64
	lastCheckLogTime    time.Time
	alertSent           bool
	lastAlertTime       time.Time
	lastSuccessfulCheck time.Time

	restart chan struct{}
}

func NewDiskSpace(client diskStatusSource, recorder *activity.Recorder, bus *alertbus.Bus, opts DiskSpaceOptions) *DiskSpace {
	return &DiskSpace{
		client:    client,
		recorder:  recorder,
		bus:       bus,
		opts:      opts.withDefaults(),
		startedAt: time.Now(),
		restart:   make(chan struct{}, 1),
	}
}

func (d *DiskSpace) Name() string { return "Disk-Space" }

// ShouldHandle is always false: disk space is polled, not event-driven
// (spec §4.9 "own polling loop independent of the SSE stream").
func (d *DiskSpace) ShouldHandle(Event) bool { return false }

func (d *DiskSpace) Handle(context.Context, Event) (bool, error) { return false, nil }

// Cleanup has no state to sweep; disk space tracks only a handful of
// scalars already bounded by the poll loop itself.
func (d *DiskSpace) Cleanup(context.Context) {
	logging.Debug().Msg("disk-space cleanup: no action needed")
}

// Run is the poll loop (spec §4.9: 120s interval with jitter,
// exponential backoff capped at 30s on errors). It is meant to be run
// as a supervised background service; a non-nil return asks the
// supervisor to restart it fresh, which also resets the internal error
// backoff state.
func (d *DiskSpace) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-time.After(10 * time.Second):
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.restart:
			return errDiskSpaceRestartRequested
		default:
		}

		if _, err := d.Check(ctx); err != nil {
			d.mu.Lock()
			d.consecutiveErrors++
			n := d.consecutiveErrors
			d.mu.Unlock()
			logging.Warn().Err(err).Msg("error in disk space monitoring")

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoffDuration(n)):
			}
			continue
		}

		d.mu.Lock()
		d.consecutiveErrors = 0
		d.mu.Unlock()

		jitter := time.Duration(rand.Int63n(int64(500 * time.Millisecond)))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(d.opts.CheckInterval + jitter):
		}
	}
}

// backoffDuration ports min(30, 2**consecutive_errors) from the Python
// original, capping the shift so it never overflows.
func backoffDuration(consecutiveErrors int) time.Duration {
	n := consecutiveErrors
	if n > 5 {
		n = 5
	}
	secs := 1 << uint(n)
	if secs > 30 {
		secs = 30
	}
	return time.Duration(secs) * time.Second
}

// Watchdog is the health-check task (spec §4.9: "a separate health-check
// task every 30 min restarts the polling loop if it has stopped or
// produced no successful check in three intervals"). Run as its own
// supervised service alongside Run.
func (d *DiskSpace) Watchdog(ctx context.Context) error {
	ticker := time.NewTicker(d.opts.HealthCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.checkHealth()
		}
	}
}

// checkHealth signals a restart if no check has succeeded within three
// health-check intervals of the last success (or of startup, if there
// has never been one).
func (d *DiskSpace) checkHealth() {
	d.mu.Lock()
	reference := d.lastSuccessfulCheck
	if reference.IsZero() {
		reference = d.startedAt
	}
	stale := time.Since(reference) > d.opts.HealthCheckInterval*3
	d.mu.Unlock()

	if !stale {
		return
	}
	logging.Info().Msg("restarting disk space monitoring: no successful check recently")
	select {
	case d.restart <- struct{}{}:
	default:
	}
}

// Check performs a single poll-and-maybe-alert cycle. It returns true if
// a low-disk-space alert was published.
func (d *DiskSpace) Check(ctx context.Context) (bool, error) {
	status, err := d.client.GetDiskStatus(ctx)
	if err != nil {
		return false, fmt.Errorf("disk-space: fetch status: %w", err)
	}
	if status.Total == 0 {
		return false, nil
	}

	freePercent := status.PercentFree()
	now := time.Now()

	d.mu.Lock()
	significantChange := false
	if d.havePrevious {
		bytesChange := status.Free - d.previousFree
		if bytesChange < 0 {
			bytesChange = -bytesChange
		}
		percentChange := freePercent - d.previousPercent
		if percentChange < 0 {
			percentChange = -percentChange
		}
		significantChange = bytesChange > 1<<30 || percentChange > 1.0
	}
	shouldLog := d.lastCheckLogTime.IsZero() || now.Sub(d.lastCheckLogTime) >= d.opts.LogInterval || significantChange
	if shouldLog {
		d.lastCheckLogTime = now
	}
	d.previousFree = status.Free
	d.previousPercent = freePercent
	d.havePrevious = true
	d.lastSuccessfulCheck = now
	d.mu.Unlock()

	if shouldLog {
		logging.Debug().
			Str("free", formatBytes(status.Free)).
			Float64("percent_free", freePercent).
			Msg("DVR storage")
	}

	isPercentLow := freePercent < d.opts.PercentThreshold
	isGBLow := status.Free < int64(d.opts.GBThreshold*(1<<30))

	d.mu.Lock()
	defer d.mu.Unlock()

	if isPercentLow || isGBLow {
		if d.alertSent && now.Sub(d.lastAlertTime) < d.opts.AlertCooldown {
			return false, nil
		}

		logging.Warn().
			Str("free", formatBytes(status.Free)).
			Float64("percent_free", freePercent).
			Msg("low disk space")

		if err := d.publish(status, freePercent); err != nil {
			return false, err
		}

		d.alertSent = true
		d.lastAlertTime = now
		return true, nil
	}

	if d.alertSent {
		logging.Info().Msg("DVR storage returned to normal levels")
		d.alertSent = false
	}
	return false, nil
}

func (d *DiskSpace) publish(status dvrclient.DiskStatus, freePercent float64) error {
	path := status.Path
	if path == "" {
		path = "/shares/DVR"
	}

	title := "Low Disk Space Warning"
	body := fmt.Sprintf("Free Space: %s / %s (%.1f%%)\nUsed Space: %s\nDVR Path: %s",
		formatBytes(status.Free), formatBytes(status.Total), freePercent, formatBytes(status.Used), path)

	if d.bus != nil {
		if err := d.bus.Publish(alertbus.Alert{
			Kind:    "disk_space",
			Subject: path,
			Title:   title,
			Body:    body,
			Icon:    "disk",
		}); err != nil {
			return fmt.Errorf("disk-space: publish alert: %w", err)
		}
	}

	if d.recorder != nil {
		if _, _, err := d.recorder.Record("disk_space", path, "", title, body, "disk"); err != nil {
			logging.Warn().Err(err).Msg("disk-space: activity record failed")
		}
	}
	return nil
}

// formatBytes renders a byte count the way the Python original does:
// two decimal places, scaled to the largest unit under 1024.
func formatBytes(value int64) string {
	if value < 0 {
		return "0.00 B"
	}
	units := []string{"B", "KB", "MB", "GB", "TB", "PB"}
	v := float64(value)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", v, units[i])
}
