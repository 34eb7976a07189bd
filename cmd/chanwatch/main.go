// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command chanwatch is the sidecar's entry point: it loads
// configuration, wires the DVR client, caches, detectors, and
// notification providers together, and runs the supervisor tree until
// the process receives a termination signal (spec §5, §7).
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/chanwatch/sidecar/internal/activity"
	"github.com/chanwatch/sidecar/internal/alertbus"
	"github.com/chanwatch/sidecar/internal/cache"
	"github.com/chanwatch/sidecar/internal/config"
	"github.com/chanwatch/sidecar/internal/detect"
	"github.com/chanwatch/sidecar/internal/dvrclient"
	"github.com/chanwatch/sidecar/internal/eventmonitor"
	"github.com/chanwatch/sidecar/internal/format"
	"github.com/chanwatch/sidecar/internal/logging"
	"github.com/chanwatch/sidecar/internal/notify"
	"github.com/chanwatch/sidecar/internal/session"
	"github.com/chanwatch/sidecar/internal/streamtracker"
	"github.com/chanwatch/sidecar/internal/supervisor"
)

// configStandbyInterval is how often main re-reads configuration while
// waiting out an invalid one (spec §7: "sleep and periodically re-read
// config; never crash-loop").
const configStandbyInterval = 30 * time.Second

// sweepInterval is the shared cadence for the three session/VOD/channel
// cleanup sweeps; the spec names no explicit value for these three (only
// Recording-Events' cadences are pinned at §4.8), so they share one
// conservative default recorded in DESIGN.md.
const sweepInterval = 10 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := waitForConfig(ctx)
	if cfg == nil {
		return
	}

	logging.Init(logging.Config{Level: logLevelName(cfg.LogLevel), Format: "json"})
	logging.Info().Str("dvr", cfg.DVRBaseURL()).Msg("starting chanwatch")

	if err := run(ctx, *cfg); err != nil {
		logging.Error().Err(err).Msg("chanwatch exited with error")
		os.Exit(1)
	}
}

// waitForConfig loads configuration, blocking in a standby loop on
// failure instead of crash-looping (spec §7 "Configuration error" row).
// It returns nil only if ctx is cancelled before a valid config appears.
func waitForConfig(ctx context.Context) *config.Config {
	for {
		cfg, err := config.Load()
		if err == nil {
			return &cfg
		}
		logging.Warn().Err(err).Msg("invalid configuration, entering standby")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(configStandbyInterval):
		}
	}
}

func logLevelName(level int) string {
	if level >= 2 {
		return "debug"
	}
	return "info"
}

func run(ctx context.Context, cfg config.Config) error {
	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return err
	}

	client := dvrclient.New(cfg.DVRBaseURL())

	channels := cache.NewChannelCache(client, cfg.ChannelCacheTTL)
	jobs := cache.NewJobCache(client, cfg.JobCacheTTL)
	vod := cache.NewVODCache(client, cfg.VODCacheTTL)
	loc, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		loc = time.UTC
	}
	programs := cache.NewProgramCache(client, loc, cfg.ProgramCacheTTL)

	sessions := session.New()
	tracker := streamtracker.New(filepath.Join(cfg.StateDir, "stream_count.txt"))
	recorder := activity.New(filepath.Join(cfg.StateDir, "activity_history.json"), 5*time.Second)
	bus := alertbus.New(nil)

	manager := buildNotifyManager(cfg)

	tree := supervisor.New(slog.Default(), supervisor.DefaultTreeConfig())

	var detectors []detect.Detector

	if cfg.AlertChannelWatching {
		cw := detect.NewChannelWatching(sessions, channels, programs, tracker, bus, detect.ChannelWatchingOptions{
			DisplayOptions: format.DisplayOptions{
				ChannelName:   cfg.CWChannelName,
				ChannelNumber: cfg.CWChannelNumber,
				Program:       cfg.CWProgram,
				Resolution:    cfg.CWResolution,
				Device:        cfg.CWDevice,
				Source:        cfg.CWSource,
				IP:            cfg.CWIP,
			},
			StreamCountEnabled: cfg.StreamCount,
			ProgramEnabled:     cfg.CWProgram,
			ImageSource:        cfg.CWImageSource,
		})
		detectors = append(detectors, cw)
		tree.Add("background", supervisor.NewFuncService("Channel-Watching-Cleanup", tickLoop(cw.Cleanup, sweepInterval)))
	}

	if cfg.AlertVODWatching {
		vw := detect.NewVODWatching(vod, bus, detect.VODWatchingOptions{
			ShowDevice:           cfg.VODDevice,
			ShowIP:               cfg.VODIP,
			ShowSummary:          cfg.VODSummary,
			ShowCast:             cfg.VODCast,
			AlertCooldown:        cfg.VODAlertCooldown,
			SignificantThreshold: cfg.VODSignificantThreshold,
		})
		detectors = append(detectors, vw)
		tree.Add("background", supervisor.NewFuncService("VOD-Watching-Cleanup", tickLoop(vw.Cleanup, sweepInterval)))
	}

	var re *detect.RecordingEvents
	if cfg.AlertRecordingEvents {
		re = detect.NewRecordingEvents(jobs, channels, client, tracker, sessions, bus, detect.RecordingEventsOptions{
			ShowProgramName:   true,
			ShowProgramDesc:   cfg.RDDetails,
			ShowDuration:      cfg.RDTime,
			ShowChannelName:   cfg.RDChannel,
			ShowChannelNumber: cfg.RDChannel,
			AlertScheduled:    cfg.RDAlertScheduled,
			AlertStarted:      cfg.RDAlertStarted,
			AlertCompleted:    cfg.RDAlertCompleted,
			AlertCancelled:    cfg.RDAlertCancelled,
			StreamCountEnabled: cfg.StreamCount,
			Location:          loc,
		})
		detectors = append(detectors, re)
		tree.Add("background", supervisor.NewFuncService("Recording-Events-Poll-Pending", tickLoop(re.PollPending, 2*time.Second)))
		tree.Add("background", supervisor.NewFuncService("Recording-Events-Watchdog", tickLoop(re.Watchdog, 5*time.Minute)))
		tree.Add("background", supervisor.NewFuncService("Recording-Events-Cleanup", tickLoop(re.Cleanup, time.Hour)))
	}

	if cfg.AlertDiskSpace {
		ds := detect.NewDiskSpace(client, recorder, bus, detect.DiskSpaceOptions{
			PercentThreshold: cfg.DSThresholdPercent,
			GBThreshold:      cfg.DSThresholdGB,
		})
		detectors = append(detectors, ds)
		tree.Add("background", supervisor.NewFuncService("Disk-Space", ds.Run))
		tree.Add("background", supervisor.NewFuncService("Disk-Space-Watchdog", ds.Watchdog))
	}

	tree.Add("background", supervisor.NewFuncService("Session-Sweep", tickLoop(func(context.Context) {
		sessions.SweepStale(30 * time.Minute)
		sessions.SweepNotificationHistory(time.Hour)
		sessions.SweepProcessingEvents(5 * time.Minute)
	}, sweepInterval)))

	tree.Add("background", supervisor.NewFuncService("Activity-Dedup-Sweep", tickLoop(func(context.Context) {
		recorder.SweepDedup()
	}, sweepInterval)))

	tree.Add("background", supervisor.NewFuncService("Notify-Consumer", func(ctx context.Context) error {
		return bus.Subscribe(ctx, func(ctx context.Context, alert alertbus.Alert) error {
			priority := 0
			if alert.Kind == "disk_space" {
				priority = 1
			}
			_, _ = manager.Send(ctx, notify.Message{
				Title:    alert.Title,
				Body:     alert.Body,
				ImageURL: alert.ImageURL,
				Priority: priority,
			})
			return nil
		})
	}))

	// Disk-Space already records its own activity entries directly
	// (it holds a *activity.Recorder itself, spec §4.9); every other
	// detector has no recorder of its own, so this consumer covers them
	// via the shared bus instead of threading a recorder into each one.
	tree.Add("background", supervisor.NewFuncService("Activity-Consumer", func(ctx context.Context) error {
		return bus.Subscribe(ctx, func(ctx context.Context, alert alertbus.Alert) error {
			if alert.Kind == "disk_space" {
				return nil
			}
			_, _, err := recorder.Record(alert.Kind, alert.Subject, alert.Device, alert.Title, alert.Body, alert.Icon)
			return err
		})
	}))

	monitor := eventmonitor.New(client, detectors, eventmonitor.Options{})
	tree.Add("transport", supervisor.NewFuncService("Event-Monitor", monitor.Run))

	return tree.Serve(ctx)
}

// buildNotifyManager registers every configured delivery provider in a
// fixed order (spec §4.10).
func buildNotifyManager(cfg config.Config) *notify.Manager {
	manager := notify.NewManager()

	if cfg.PushoverUserKey != "" && cfg.PushoverAPIToken != "" {
		manager.Register(notify.NewPushoverProvider(cfg.PushoverUserKey, cfg.PushoverAPIToken))
	}
	if cfg.AppriseDiscordWebhook != "" {
		manager.Register(notify.NewDiscordProvider(cfg.AppriseDiscordWebhook))
	}
	if len(cfg.AppriseServiceURLs) > 0 {
		manager.Register(notify.NewMultiServiceProvider(parseServiceURLs(cfg.AppriseServiceURLs), cfg.AppriseEmailTo))
	}
	return manager
}

func parseServiceURLs(raw []string) []notify.ServiceURL {
	services := make([]notify.ServiceURL, 0, len(raw))
	for _, r := range raw {
		scheme := r
		if u, err := url.Parse(r); err == nil && u.Scheme != "" {
			scheme = u.Scheme
		}
		services = append(services, notify.ServiceURL{Scheme: scheme, Raw: r})
	}
	return services
}

// tickLoop adapts a periodic method (PollPending, Watchdog, Cleanup, or a
// cleanup sweep) into a supervised service that invokes fn every
// interval until ctx is cancelled.
func tickLoop(fn func(ctx context.Context), interval time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				fn(ctx)
			}
		}
	}
}
