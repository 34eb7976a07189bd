// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format implements the stateless Alert Formatter (spec §4.5):
// it turns a structured set of fields plus a display-options config into
// a notification title/body/image, and exposes the cooldown check
// shared by every detector (should_send_notification).
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chanwatch/sidecar/internal/session"
)

// Notification is the output of a Build call: ready to hand to the
// Notification Manager.
type Notification struct {
	Title    string
	Body     string
	ImageURL string
}

// Fields carries the structured alert data a detector has assembled.
// Only non-zero fields are rendered, in the order spec §4.5 lists them.
type Fields struct {
	ChannelName   string
	ChannelNumber string
	Program       string
	Resolution    string
	Device        string
	Source        string
	TotalStreams  int // rendered only if > 0 and Source is also present
	IP            string
	Status        string
	Time          string
	Details       string
	Custom        map[string]string // label -> value, rendered in map order is unspecified; callers needing order should use Details
}

// DisplayOptions selects which fields are rendered for a given alert
// kind. The Channel-Watching config toggles (spec §6 cw_*) map directly
// onto this struct; other detectors construct their own subset.
type DisplayOptions struct {
	ChannelName   bool
	ChannelNumber bool
	Program       bool
	Resolution    bool
	Device        bool
	Source        bool
	IP            bool
	Status        bool
	Time          bool
	Details       bool
}

// Build renders title/body from f under opts (spec §4.5). image is
// chosen by the caller (the formatter does not know about image-source
// preference — that's a Channel-Watching concern, spec §4.6 step 7) and
// passed through verbatim.
func Build(title string, f Fields, opts DisplayOptions, image string) Notification {
	var lines []string

	if opts.ChannelName && f.ChannelName != "" {
		lines = append(lines, f.ChannelName)
	}
	if opts.ChannelNumber && f.ChannelNumber != "" {
		lines = append(lines, "Channel: "+f.ChannelNumber)
	}
	if opts.Program && f.Program != "" {
		lines = append(lines, "Program: "+f.Program)
	}
	if opts.Resolution && f.Resolution != "" {
		lines = append(lines, "Resolution: "+f.Resolution)
	}
	if opts.Device && f.Device != "" {
		lines = append(lines, "Device: "+f.Device)
	}
	if opts.Source && f.Source != "" {
		lines = append(lines, "Source: "+f.Source)
		if f.TotalStreams > 0 {
			lines = append(lines, "Total Streams: "+strconv.Itoa(f.TotalStreams))
		}
	}
	if opts.IP && f.IP != "" {
		lines = append(lines, "Device IP: "+f.IP)
	}
	if opts.Status && f.Status != "" {
		lines = append(lines, "Status: "+f.Status)
	}
	if opts.Time && f.Time != "" {
		lines = append(lines, "Time: "+f.Time)
	}
	if opts.Details && f.Details != "" {
		lines = append(lines, "Details: "+f.Details)
	}
	for label, v := range f.Custom {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}

	return Notification{
		Title:    title,
		Body:     strings.Join(lines, "\n"),
		ImageURL: image,
	}
}

// ShouldSendNotification reports whether a notification for key may be
// sent: it returns false (gated) if one was already sent within
// cooldown (spec §4.5).
func ShouldSendNotification(store *session.Store, key string, cooldown time.Duration) bool {
	return !store.WasNotificationSent(key, cooldown)
}

// TruncateCast renders up to n cast entries, appending an ellipsis
// marker when more were supplied (spec §4.7: "up to 3 cast entries with
// ellipsis").
func TruncateCast(cast []string, n int) string {
	if len(cast) == 0 {
		return ""
	}
	if len(cast) <= n {
		return strings.Join(cast, ", ")
	}
	return fmt.Sprintf("%s, …", strings.Join(cast[:n], ", "))
}
