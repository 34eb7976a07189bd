// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chanwatch/sidecar/internal/alertbus"
	"github.com/chanwatch/sidecar/internal/cache"
	"github.com/chanwatch/sidecar/internal/format"
	"github.com/chanwatch/sidecar/internal/logging"
	"github.com/chanwatch/sidecar/internal/session"
	"github.com/chanwatch/sidecar/internal/streamtracker"
)

const channelWatchingCooldown = 5 * time.Second

// ChannelWatchingOptions mirrors the spec's cw_* config toggles (§6).
type ChannelWatchingOptions struct {
	format.DisplayOptions
	StreamCountEnabled bool
	ProgramEnabled     bool
	ImageSource        string // "CHANNEL" or "PROGRAM"
}

// ChannelWatching is the Channel-Watching Detector (spec §4.6): a
// detector-wide event lock serializes all work so that, per device, a
// channel switch always closes the previous session before opening the
// next (spec §5 ordering guarantee). Grounded on
// original_source/core/alerts/channel_watching.py.
type ChannelWatching struct {
	mu sync.Mutex

	sessions *session.Store
	channels *cache.ChannelCache
	programs *cache.ProgramCache
	tracker  *streamtracker.Tracker
	bus      *alertbus.Bus
	opts     ChannelWatchingOptions
}

func NewChannelWatching(sessions *session.Store, channels *cache.ChannelCache, programs *cache.ProgramCache, tracker *streamtracker.Tracker, bus *alertbus.Bus, opts ChannelWatchingOptions) *ChannelWatching {
	return &ChannelWatching{
		sessions: sessions,
		channels: channels,
		programs: programs,
		tracker:  tracker,
		bus:      bus,
		opts:     opts,
	}
}

func (d *ChannelWatching) Name() string { return "Channel-Watching" }

func (d *ChannelWatching) ShouldHandle(ev Event) bool {
	return ev.Type == "activities.set"
}

func (d *ChannelWatching) Handle(ctx context.Context, ev Event) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sessionID := ev.Name
	if ev.Value == "" {
		d.onEnd(sessionID)
		return false, nil
	}

	if !IsWatchingValue(ev.Value) {
		return false, nil
	}

	number, ok := ExtractChannelNumber(ev.Value)
	if !ok {
		return false, nil
	}

	deviceName, hasDevice := ExtractDeviceName(ev.Value)
	ip, hasIP := ExtractIPAddress(ev.Value)
	deviceIdentifier := deviceName
	if !hasDevice {
		if !hasIP {
			return false, nil
		}
		deviceIdentifier = ip
	}

	trackingKey := fmt.Sprintf("ch%s-%s", number, deviceIdentifier)

	if d.opts.StreamCountEnabled && d.tracker != nil {
		if _, err := d.tracker.ProcessActivity(ev.Value, sessionID, deviceIdentifier); err != nil {
			logging.Warn().Err(err).Msg("stream tracker update failed")
		}
	}

	if !d.sessions.MarkEventProcessing(trackingKey) {
		return false, nil
	}
	defer d.sessions.CompleteEventProcessing(trackingKey)

	if !format.ShouldSendNotification(d.sessions, trackingKey, channelWatchingCooldown) {
		return false, nil
	}

	// A no-op progress update for an already-open session on the same
	// channel just refreshes the timestamp (spec §4.6 step 4).
	if existing, ok := d.sessions.Get(sessionID); ok && existing.ChannelNumber == number {
		d.sessions.Touch(sessionID)
		return false, nil
	}

	// Channel switch on the same device: close the old session first
	// (spec §4.6 step 5). This must key on device, not on session ID —
	// a channel switch can reuse the same session Name as the session
	// it is replacing (spec.md §8 Scenario 2), and the close still has
	// to happen.
	if old, ok := d.sessions.FindByDevice(deviceIdentifier); ok && old.ChannelNumber != number {
		logging.Info().
			Str("channel", old.ChannelName).
			Str("device", old.Device).
			Msg("exited channel")
		d.sessions.Remove(old.ID)
	}

	sess := &session.Session{
		ID:            sessionID,
		ChannelNumber: number,
		Device:        deviceIdentifier,
		IP:            ip,
	}

	if name, ok := ExtractChannelName(ev.Value); ok {
		sess.ChannelName = name
	}
	if res, ok := ExtractResolution(ev.Value); ok {
		sess.Resolution = res
	}
	sess.Source = ExtractSourceFromSessionID(sessionID)

	var channelLogo string
	if ch, ok := d.channels.Lookup(ctx, number); ok {
		if sess.ChannelName == "" {
			sess.ChannelName = ch.Name
		}
		channelLogo = ch.LogoURL
	}
	if sess.ChannelName == "" {
		sess.ChannelName = "Unknown Channel"
	}

	var programImage string
	if d.opts.ProgramEnabled && d.programs != nil {
		if p, ok := d.programs.Current(ctx, number, time.Now()); ok {
			sess.ProgramTitle = p.Title
			programImage = p.Icon
		}
	}

	if d.opts.StreamCountEnabled && d.tracker != nil {
		sess.StreamCount = d.tracker.Count()
	}

	image := channelLogo
	if d.opts.ImageSource == "PROGRAM" {
		if programImage != "" {
			image = programImage
		}
	} else if image == "" {
		image = programImage
	}
	sess.ImageURL = image

	notification := format.Build("Channels DVR - Watching TV", format.Fields{
		ChannelName:   sess.ChannelName,
		ChannelNumber: sess.ChannelNumber,
		Program:       sess.ProgramTitle,
		Resolution:    sess.Resolution,
		Device:        sess.Device,
		Source:        sess.Source,
		TotalStreams:  sess.StreamCount,
		IP:            sess.IP,
	}, d.opts.DisplayOptions, image)

	if d.bus != nil {
		if err := d.bus.Publish(alertbus.Alert{
			Kind:     "watching_channel",
			Subject:  sess.ChannelName,
			Device:   sess.Device,
			Title:    notification.Title,
			Body:     notification.Body,
			ImageURL: notification.ImageURL,
			Icon:     "tv",
		}); err != nil {
			return false, fmt.Errorf("channel-watching: publish alert: %w", err)
		}
	}

	d.sessions.RecordNotification(trackingKey)
	d.sessions.Upsert(sess)
	return true, nil
}

// onEnd handles an empty-Value activities.set event: the session ends
// (spec §4.6 "On end event").
func (d *ChannelWatching) onEnd(sessionID string) {
	sess, ok := d.sessions.Remove(sessionID)
	if !ok {
		return
	}
	logging.Info().
		Str("channel", sess.ChannelName).
		Str("device", sess.Device).
		Msg("exited channel")

	if d.opts.StreamCountEnabled && d.tracker != nil {
		if _, err := d.tracker.ProcessActivity("", sessionID, sess.Device); err != nil {
			logging.Warn().Err(err).Msg("stream tracker update failed on session end")
		}
	}
}

// Cleanup removes stale sessions, stale processing markers, and stale
// notification history (spec §4.6 run_cleanup: 4h session TTL, 5min
// event TTL, 24h notification TTL).
func (d *ChannelWatching) Cleanup(ctx context.Context) {
	removed := d.sessions.SweepStale(4 * time.Hour)
	events := d.sessions.SweepProcessingEvents(5 * time.Minute)
	notifications := d.sessions.SweepNotificationHistory(24 * time.Hour)

	if d.opts.StreamCountEnabled && d.tracker != nil {
		if _, err := d.tracker.CleanupStaleSessions(300 * time.Second); err != nil {
			logging.Warn().Err(err).Msg("stream tracker stale sweep failed")
		}
	}

	logging.Debug().
		Int("sessions", len(removed)).
		Int("events", events).
		Int("notifications", notifications).
		Msg("channel-watching cleanup")
}
