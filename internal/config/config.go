// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates the sidecar's configuration. Layering
// follows the teacher's koanf pattern: compiled-in defaults, an optional
// YAML file, then CHANWATCH_* environment overrides, in that priority order.
package config

import (
	"strconv"
	"time"
)

// Config is the full recognized configuration surface (spec §6).
type Config struct {
	ChannelsDVRHost string `koanf:"channels_dvr_host" validate:"required"`
	ChannelsDVRPort int    `koanf:"channels_dvr_port" validate:"required,gt=0,lte=65535"`

	TZ string `koanf:"tz" validate:"required"`

	LogLevel         int `koanf:"log_level" validate:"oneof=1 2"`
	LogRetentionDays int `koanf:"log_retention_days"`

	AlertChannelWatching  bool `koanf:"alert_channel_watching"`
	AlertVODWatching      bool `koanf:"alert_vod_watching"`
	AlertDiskSpace        bool `koanf:"alert_disk_space"`
	AlertRecordingEvents  bool `koanf:"alert_recording_events"`
	StreamCount           bool `koanf:"stream_count"`

	// Channel-Watching field toggles.
	CWChannelName   bool   `koanf:"cw_channel_name"`
	CWChannelNumber bool   `koanf:"cw_channel_number"`
	CWProgram       bool   `koanf:"cw_program"`
	CWResolution    bool   `koanf:"cw_resolution"`
	CWDevice        bool   `koanf:"cw_device"`
	CWSource        bool   `koanf:"cw_source"`
	CWIP            bool   `koanf:"cw_ip"`
	CWImageSource   string `koanf:"cw_image_source" validate:"oneof=CHANNEL PROGRAM"`

	// Recording-Events toggles.
	RDAlertScheduled bool `koanf:"rd_alert_scheduled"`
	RDAlertStarted   bool `koanf:"rd_alert_started"`
	RDAlertCompleted bool `koanf:"rd_alert_completed"`
	RDAlertCancelled bool `koanf:"rd_alert_cancelled"`
	RDChannel        bool `koanf:"rd_channel"`
	RDTime           bool `koanf:"rd_time"`
	RDDetails        bool `koanf:"rd_details"`

	// VOD-Watching toggles.
	VODDevice              bool          `koanf:"vod_device"`
	VODIP                  bool          `koanf:"vod_ip"`
	VODSummary             bool          `koanf:"vod_summary"`
	VODCast                bool          `koanf:"vod_cast"`
	VODAlertCooldown       time.Duration `koanf:"vod_alert_cooldown"`
	VODSignificantThreshold time.Duration `koanf:"vod_significant_threshold"`

	ChannelCacheTTL time.Duration `koanf:"channel_cache_ttl"`
	ProgramCacheTTL time.Duration `koanf:"program_cache_ttl"`
	JobCacheTTL     time.Duration `koanf:"job_cache_ttl"`
	VODCacheTTL     time.Duration `koanf:"vod_cache_ttl"`

	DSThresholdPercent float64 `koanf:"ds_threshold_percent" validate:"gte=0,lte=100"`
	DSThresholdGB      float64 `koanf:"ds_threshold_gb" validate:"gte=0"`

	PushoverUserKey  string `koanf:"pushover_user_key"`
	PushoverAPIToken string `koanf:"pushover_api_token"`

	AppriseDiscordWebhook string `koanf:"apprise_discord_webhook"`
	AppriseServiceURLs    []string `koanf:"apprise_service_urls"`
	AppriseEmailTo        string `koanf:"apprise_email_to"`

	StateDir string `koanf:"state_dir" validate:"required"`
}

// Default returns the compiled-in defaults (spec §4.2, §4.6-4.9).
func Default() Config {
	return Config{
		ChannelsDVRHost: "localhost",
		ChannelsDVRPort: 8089,
		TZ:              "America/New_York",
		LogLevel:        1,
		LogRetentionDays: 14,

		AlertChannelWatching: true,
		AlertVODWatching:     true,
		AlertDiskSpace:       true,
		AlertRecordingEvents: true,
		StreamCount:          true,

		CWChannelName:   true,
		CWChannelNumber: true,
		CWProgram:       true,
		CWResolution:    true,
		CWDevice:        true,
		CWSource:        true,
		CWIP:            true,
		CWImageSource:   "CHANNEL",

		RDAlertScheduled: true,
		RDAlertStarted:   true,
		RDAlertCompleted: true,
		RDAlertCancelled: true,
		RDChannel:        true,
		RDTime:           true,
		RDDetails:        true,

		VODDevice:               true,
		VODIP:                   true,
		VODSummary:              true,
		VODCast:                 true,
		VODAlertCooldown:        5 * time.Minute,
		VODSignificantThreshold: 5 * time.Minute,

		ChannelCacheTTL: 24 * time.Hour,
		ProgramCacheTTL: 24 * time.Hour,
		JobCacheTTL:     time.Hour,
		VODCacheTTL:     24 * time.Hour,

		DSThresholdPercent: 10,
		DSThresholdGB:      50,

		StateDir: "/var/lib/chanwatch",
	}
}

func (c Config) DVRBaseURL() string {
	return "http://" + c.ChannelsDVRHost + ":" + strconv.Itoa(c.ChannelsDVRPort)
}
