// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chanwatch/sidecar/internal/alertbus"
	"github.com/chanwatch/sidecar/internal/dvrclient"
	"github.com/chanwatch/sidecar/internal/logging"
	"github.com/chanwatch/sidecar/internal/session"
	"github.com/chanwatch/sidecar/internal/streamtracker"
	"golang.org/x/time/rate"
)

const (
	recordingAlertCooldown   = 60 * time.Second
	recordingPendingMaxWait  = 10 * time.Minute
	recordingPendingMaxTries = 5
	recordingPendingBatch    = 10
)

var recordingStatusEmoji = map[string]string{
	"scheduled": "📅",
	"started":   "🔴",
	"completed": "✅",
	"cancelled": "🚫",
	"stopped":   "⏹️",
}

// jobSource resolves a job id to its upstream Job (spec §4.2 get_job).
type jobSource interface {
	Lookup(ctx context.Context, id string) (dvrclient.Job, bool)
}

// channelSource resolves a channel number to its Channel (spec §4.2
// list_channels).
type channelSource interface {
	Lookup(ctx context.Context, number string) (dvrclient.Channel, bool)
}

// recordingFetcher resolves a completed recording by file id (spec §4.2
// get_recording).
type recordingFetcher interface {
	GetRecording(ctx context.Context, fileID string) (dvrclient.Recording, error)
}

type scheduledJob struct {
	job       dvrclient.Job
	createdAt time.Time
}

type pendingRecording struct {
	firstSeen  time.Time
	lastCheck  time.Time
	checkCount int
}

// RecordingEventsOptions mirrors the spec's rd_* config toggles (§6).
type RecordingEventsOptions struct {
	ShowProgramName   bool
	ShowProgramDesc   bool
	ShowDuration      bool
	ShowChannelName   bool
	ShowChannelNumber bool

	AlertScheduled bool
	AlertStarted   bool
	AlertCompleted bool
	AlertCancelled bool

	StreamCountEnabled bool

	Location *time.Location
}

// RecordingEvents is the Recording-Events Detector (spec §4.8): the most
// intricate state machine, tracking jobs through scheduled -> active ->
// completed/cancelled/pending transitions. Grounded on
// original_source/core/alerts/recording_events.py.
type RecordingEvents struct {
	mu sync.Mutex

	scheduled map[string]*scheduledJob // job id -> scheduled entry
	active    map[string]dvrclient.Job // job id -> job
	pending   map[string]*pendingRecording // file id -> pending entry

	jobs     jobSource
	channels channelSource
	client   recordingFetcher
	tracker  *streamtracker.Tracker
	sessions *session.Store
	bus      *alertbus.Bus
	opts     RecordingEventsOptions

	// pendingLimiter paces get_recording retries against the pending
	// queue (spec §7 "Stale lookup ... retry with rate cap") so a large
	// backlog doesn't burst the DVR with recordingPendingBatch requests
	// all at once.
	pendingLimiter *rate.Limiter

	lastEventTime time.Time
	eventCounter  int
}

func NewRecordingEvents(jobs jobSource, channels channelSource, client recordingFetcher, tracker *streamtracker.Tracker, sessions *session.Store, bus *alertbus.Bus, opts RecordingEventsOptions) *RecordingEvents {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &RecordingEvents{
		scheduled:      make(map[string]*scheduledJob),
		active:         make(map[string]dvrclient.Job),
		pending:        make(map[string]*pendingRecording),
		jobs:           jobs,
		channels:       channels,
		client:         client,
		tracker:        tracker,
		sessions:       sessions,
		bus:            bus,
		opts:           opts,
		pendingLimiter: rate.NewLimiter(rate.Limit(recordingPendingBatch), recordingPendingBatch),
		lastEventTime:  time.Now(),
	}
}

func (d *RecordingEvents) Name() string { return "Recording-Events" }

func (d *RecordingEvents) ShouldHandle(ev Event) bool {
	switch ev.Type {
	case "jobs.created", "jobs.deleted":
		return ev.Name != ""
	case "programs.set":
		return strings.HasPrefix(ev.Value, "recording-") || strings.HasPrefix(ev.Value, "recorded-")
	default:
		return false
	}
}

func (d *RecordingEvents) Handle(ctx context.Context, ev Event) (bool, error) {
	d.touchLiveness()

	switch {
	case ev.Type == "jobs.created":
		return d.onJobCreated(ctx, ev.Name)
	case ev.Type == "jobs.deleted":
		return d.onJobDeleted(ctx, ev.Name)
	case ev.Type == "programs.set" && strings.HasPrefix(ev.Value, "recording-"):
		return d.onJobStarted(ctx, strings.TrimPrefix(ev.Value, "recording-"))
	case ev.Type == "programs.set" && strings.HasPrefix(ev.Value, "recorded-"):
		return d.onRecordingCompleted(ctx, strings.TrimPrefix(ev.Value, "recorded-"))
	}
	return false, nil
}

// touchLiveness stamps the watchdog's liveness bookkeeping. It is the only
// thing Handle does under d.mu directly; everything else acquires the lock
// only around the map mutation it needs, never across the HTTP lookups or
// the eventual emit (spec §4.8 "pre-fetch under no lock", spec §5 "all HTTP
// calls must be performed outside any detector's event lock").
func (d *RecordingEvents) touchLiveness() {
	d.mu.Lock()
	d.lastEventTime = time.Now()
	d.eventCounter++
	d.mu.Unlock()
}

func (d *RecordingEvents) onJobCreated(ctx context.Context, jobID string) (bool, error) {
	if !d.opts.AlertScheduled {
		return false, nil
	}
	job, ok := d.jobs.Lookup(ctx, jobID)
	if !ok {
		return false, nil
	}
	if time.Unix(job.StartTime, 0).Sub(time.Now()) <= 30*time.Second {
		return false, nil
	}
	channel, hasChannel := d.lookupJobChannel(ctx, job)

	d.mu.Lock()
	d.scheduled[jobID] = &scheduledJob{job: job, createdAt: time.Now()}
	d.mu.Unlock()

	key := fmt.Sprintf("recording-scheduled-%s", jobID)
	if !d.shouldSend(key) {
		return false, nil
	}

	lines := []string{recordingStatusEmoji["scheduled"] + " Scheduled"}
	if d.opts.ShowProgramName && job.Name != "" {
		lines = append(lines, "Program: "+job.Name)
	}
	lines = append(lines, "-----------------------")
	lines = append(lines, "Scheduled: "+d.formatDateTimeFriendly(job.StartTime))
	if d.opts.ShowDuration && job.Duration > 0 {
		lines = append(lines, "Duration:  "+formatRecordingDuration(job.Duration))
	}

	body := d.render(job, channel, hasChannel, lines)

	d.emit(jobID, "recording_scheduled", channel.Name, body, job.Item.ImageURL, key)
	return true, nil
}

func (d *RecordingEvents) onJobStarted(ctx context.Context, jobID string) (bool, error) {
	if !d.opts.AlertStarted {
		return false, nil
	}
	job, ok := d.jobs.Lookup(ctx, jobID)
	if !ok {
		return false, nil
	}
	channel, hasChannel := d.lookupJobChannel(ctx, job)

	d.mu.Lock()
	_, wasScheduled := d.scheduled[jobID]
	delete(d.scheduled, jobID)
	d.active[jobID] = job
	d.mu.Unlock()

	streamCount := 0
	if d.opts.StreamCountEnabled && d.tracker != nil && len(job.Channels) > 0 {
		activity := fmt.Sprintf("Recording ch%s %s from DVR_Recording_%s", job.Channels[0], channel.Name, jobID)
		if _, err := d.tracker.ProcessActivity(activity, jobID, "DVR_Recording_"+jobID); err != nil {
			logging.Warn().Err(err).Msg("stream tracker update failed")
		}
		streamCount = d.tracker.Count()
	}

	key := fmt.Sprintf("recording-started-%s", jobID)
	if !d.shouldSend(key) {
		return false, nil
	}

	recordingType := "(Manual)"
	if wasScheduled {
		recordingType = "(Scheduled)"
	}

	lines := []string{fmt.Sprintf("%s Recording %s", recordingStatusEmoji["started"], recordingType)}
	if d.opts.ShowProgramName && job.Name != "" {
		lines = append(lines, "Program: "+job.Name)
	}
	lines = append(lines, "-----------------------")
	lines = append(lines, "Recording: "+d.formatTimeOnly(time.Now().Unix()))
	if job.StartTime > 0 && absDuration(time.Unix(job.StartTime, 0).Sub(time.Now())) > time.Minute {
		lines = append(lines, "Program:   "+d.formatTimeOnly(job.StartTime))
	}
	if d.opts.ShowDuration && job.Duration > 0 {
		lines = append(lines, "Duration:  "+formatRecordingDuration(job.Duration))
	}
	if d.opts.StreamCountEnabled {
		lines = append(lines, fmt.Sprintf("Total Streams: %d", streamCount))
	}

	body := d.render(job, channel, hasChannel, lines)

	sent := d.emit(jobID, "recording_started", channel.Name, body, job.Item.ImageURL, key)
	return sent, nil
}

func (d *RecordingEvents) onRecordingCompleted(ctx context.Context, fileID string) (bool, error) {
	d.mu.Lock()
	_, isPending := d.pending[fileID]
	d.mu.Unlock()
	if isPending {
		return false, nil
	}

	recording, err := d.client.GetRecording(ctx, fileID)
	if err != nil {
		d.markPending(fileID)
		return false, nil
	}

	if !recording.Processed {
		d.markPending(fileID)
		return false, nil
	}

	return d.processCompletedRecording(ctx, fileID, recording)
}

func (d *RecordingEvents) markPending(fileID string) {
	d.mu.Lock()
	d.pending[fileID] = &pendingRecording{firstSeen: time.Now(), lastCheck: time.Now()}
	d.mu.Unlock()
}

// dropActive removes jobID from the active partition under d.mu. It is
// safe to call regardless of whether the caller already fetched its own
// data under the lock, since processCompletedRecording is invoked both
// from onRecordingCompleted (which holds no lock by the time it calls in)
// and from PollPending's background goroutine (same).
func (d *RecordingEvents) dropActive(jobID string) {
	if jobID == "" {
		return
	}
	d.mu.Lock()
	delete(d.active, jobID)
	d.mu.Unlock()
}

// processCompletedRecording must be called without d.mu held: it performs
// a channel-cache lookup that may fall through to a live HTTP call, and it
// takes d.mu itself, only briefly, around the d.active mutation.
func (d *RecordingEvents) processCompletedRecording(ctx context.Context, fileID string, recording dvrclient.Recording) (bool, error) {
	statusType, suffix := classifyCompletion(recording)
	if !d.opts.AlertCompleted && statusType == "completed" {
		return false, nil
	}
	if !d.opts.AlertCancelled && (statusType == "cancelled" || statusType == "stopped") {
		return false, nil
	}

	key := fmt.Sprintf("recording-%s-%s", statusType, fileID)
	if !d.shouldSend(key) {
		d.dropActive(recording.JobID)
		return true, nil
	}

	title := recording.Title
	if recording.EpisodeTitle != "" {
		title += " - " + recording.EpisodeTitle
	}

	statusLabel := map[string]string{"completed": "Completed", "cancelled": "Cancelled", "stopped": "Stopped"}[statusType]
	lines := []string{fmt.Sprintf("%s %s%s", recordingStatusEmoji[statusType], statusLabel, suffix)}
	if d.opts.ShowProgramName && title != "" {
		lines = append(lines, "Program: "+title)
	}
	lines = append(lines, "-----------------------")
	if d.opts.ShowDuration && recording.Duration > 0 {
		lines = append(lines, "Duration:  "+formatRecordingDuration(recording.Duration))
	}

	streamCount := 0
	if d.opts.StreamCountEnabled && d.tracker != nil {
		if recording.JobID != "" {
			if _, err := d.tracker.ProcessActivity("", recording.JobID, "DVR_Recording_"+recording.JobID); err != nil {
				logging.Warn().Err(err).Msg("stream tracker update failed")
			}
		}
		streamCount = d.tracker.Count()
		lines = append(lines, fmt.Sprintf("Total Streams: %d", streamCount))
	}

	var channel dvrclient.Channel
	hasChannel := false
	if recording.Channel != "" && d.channels != nil {
		channel, hasChannel = d.channels.Lookup(ctx, recording.Channel)
		if !hasChannel {
			channel = dvrclient.Channel{Number: recording.Channel, Name: "Channel " + recording.Channel}
			hasChannel = true
		}
	}
	body := d.renderLines(channel, hasChannel, lines)

	d.emit(fileID, "recording_"+statusType, channel.Name, body, recording.ImageURL, key)

	d.dropActive(recording.JobID)
	return true, nil
}

func classifyCompletion(r dvrclient.Recording) (status, suffix string) {
	switch {
	case r.Cancelled && r.Completed:
		return "stopped", ""
	case r.Cancelled && !r.Completed:
		return "cancelled", ""
	case r.Delayed:
		return "completed", " (Delayed)"
	case !r.Completed:
		return "completed", " (Interrupted)"
	default:
		return "completed", ""
	}
}

func (d *RecordingEvents) onJobDeleted(ctx context.Context, jobID string) (bool, error) {
	if !d.opts.AlertCancelled {
		return false, nil
	}

	d.mu.Lock()
	sj, wasScheduled := d.scheduled[jobID]
	if wasScheduled {
		delete(d.scheduled, jobID)
	}
	var activeJob dvrclient.Job
	var wasActive bool
	if !wasScheduled {
		activeJob, wasActive = d.active[jobID]
		if wasActive {
			delete(d.active, jobID)
		}
	}
	d.mu.Unlock()

	switch {
	case wasScheduled:
		return d.emitCancellation(ctx, jobID, sj.job, "")
	case wasActive:
		if d.opts.StreamCountEnabled && d.tracker != nil {
			if _, err := d.tracker.ProcessActivity("", jobID, "DVR_Recording_"+jobID); err != nil {
				logging.Warn().Err(err).Msg("stream tracker update failed")
			}
		}
		return d.emitCancellation(ctx, jobID, activeJob, " (Active)")
	default:
		return false, nil
	}
}

func (d *RecordingEvents) emitCancellation(ctx context.Context, jobID string, job dvrclient.Job, suffix string) (bool, error) {
	key := fmt.Sprintf("recording-cancelled-%s", jobID)
	if !d.shouldSend(key) {
		return false, nil
	}

	lines := []string{recordingStatusEmoji["cancelled"] + " Cancelled" + suffix}
	if d.opts.ShowProgramName && job.Name != "" {
		lines = append(lines, "Program: "+job.Name)
	}
	lines = append(lines, "-----------------------")
	lines = append(lines, "Scheduled: "+d.formatDateTimeFriendly(job.StartTime))
	if d.opts.ShowDuration && job.Duration > 0 {
		lines = append(lines, "Duration:  "+formatRecordingDuration(job.Duration))
	}

	channel, hasChannel := d.lookupJobChannel(ctx, job)
	body := d.render(job, channel, hasChannel, lines)

	sent := d.emit(jobID, "recording_cancelled", channel.Name, body, job.Item.ImageURL, key)
	return sent, nil
}

func (d *RecordingEvents) lookupJobChannel(ctx context.Context, job dvrclient.Job) (dvrclient.Channel, bool) {
	if len(job.Channels) == 0 || d.channels == nil {
		return dvrclient.Channel{}, false
	}
	number := job.Channels[0]
	if ch, ok := d.channels.Lookup(ctx, number); ok {
		return ch, true
	}
	return dvrclient.Channel{Number: number, Name: "Channel " + number}, true
}

func (d *RecordingEvents) render(job dvrclient.Job, channel dvrclient.Channel, hasChannel bool, lines []string) string {
	if d.opts.ShowProgramDesc && job.Item.Summary != "" {
		lines = append(lines, job.Item.Summary)
	}
	return d.renderLines(channel, hasChannel, lines)
}

func (d *RecordingEvents) renderLines(channel dvrclient.Channel, hasChannel bool, lines []string) string {
	var header []string
	if hasChannel {
		if d.opts.ShowChannelNumber {
			header = append(header, channel.Number)
		}
		if d.opts.ShowChannelName {
			header = append(header, channel.Name)
		}
	}
	if len(header) > 0 {
		return strings.Join(header, " - ") + "\n" + strings.Join(lines, "\n")
	}
	return strings.Join(lines, "\n")
}

func (d *RecordingEvents) shouldSend(key string) bool {
	if d.sessions.WasNotificationSent(key, recordingAlertCooldown) {
		return false
	}
	d.sessions.RecordNotification(key)
	return true
}

func (d *RecordingEvents) emit(subjectID, kind, subject, body, imageURL, key string) bool {
	if d.bus == nil {
		return true
	}
	if err := d.bus.Publish(alertbus.Alert{
		Kind:     kind,
		Subject:  subject,
		Title:    "Channels DVR - Recording Event",
		Body:     body,
		ImageURL: imageURL,
		Icon:     "recording",
	}); err != nil {
		logging.Warn().Err(err).Str("job_id", subjectID).Msg("failed to publish recording alert")
		return false
	}
	return true
}

// PollPending is the bounded-rate retry worker for recordings that
// arrived before the upstream flipped processed=true (spec §4.8
// "Pending queue"). It snapshots candidate keys under the lock, then
// performs the HTTP re-fetches outside it.
func (d *RecordingEvents) PollPending(ctx context.Context) {
	type item struct {
		fileID string
		info   *pendingRecording
	}

	d.mu.Lock()
	var batch []item
	now := time.Now()
	for fileID, info := range d.pending {
		if len(batch) >= recordingPendingBatch {
			break
		}
		if now.Sub(info.lastCheck) < 2*time.Second {
			continue
		}
		info.checkCount++
		info.lastCheck = now
		batch = append(batch, item{fileID, info})
	}
	d.mu.Unlock()

	for _, it := range batch {
		if err := d.pendingLimiter.Wait(ctx); err != nil {
			return
		}
		recording, err := d.client.GetRecording(ctx, it.fileID)

		d.mu.Lock()
		cur, stillPending := d.pending[it.fileID]
		if !stillPending {
			d.mu.Unlock()
			continue
		}

		switch {
		case err != nil:
			if time.Since(cur.firstSeen) > recordingPendingMaxWait || cur.checkCount >= recordingPendingMaxTries {
				delete(d.pending, it.fileID)
			}
			d.mu.Unlock()
		case !recording.Processed:
			if time.Since(cur.firstSeen) > recordingPendingMaxWait || cur.checkCount >= recordingPendingMaxTries {
				delete(d.pending, it.fileID)
			}
			d.mu.Unlock()
		default:
			delete(d.pending, it.fileID)
			d.mu.Unlock()
			if _, err := d.processCompletedRecording(ctx, it.fileID, recording); err != nil {
				logging.Warn().Err(err).Str("file_id", it.fileID).Msg("pending recording processing failed")
			}
		}
	}
}

// Watchdog is the recovery task described in spec §4.8: if no recording
// event has been handled in 30 minutes, it logs a warning, triggers
// cleanup, and resets the pending queue. Unlike the original
// implementation, it never needs to forcibly replace its lock: the
// detector never holds d.mu across a blocking I/O call, so a wedge of
// that kind cannot occur here; the only realistic stall is an upstream
// that stops emitting events altogether, which this still detects and
// logs.
func (d *RecordingEvents) Watchdog(ctx context.Context) {
	d.mu.Lock()
	idle := time.Since(d.lastEventTime)
	count := d.eventCounter
	d.mu.Unlock()

	if idle <= 30*time.Minute || count == 0 {
		return
	}

	logging.Warn().
		Dur("idle", idle).
		Int("events_processed", count).
		Msg("no recording events processed recently, running recovery cleanup")

	d.Cleanup(ctx)

	d.mu.Lock()
	d.pending = make(map[string]*pendingRecording)
	d.lastEventTime = time.Now()
	d.mu.Unlock()
}

// Cleanup verifies scheduled/active jobs still exist upstream and drops
// stale pending entries (spec §4.8 "Cleanup", bounded at
// cleanupProbeLimit probes per partition per pass).
func (d *RecordingEvents) Cleanup(ctx context.Context) {
	d.mu.Lock()
	scheduledIDs := make([]string, 0, len(d.scheduled))
	for id := range d.scheduled {
		scheduledIDs = append(scheduledIDs, id)
	}
	activeIDs := make([]string, 0, len(d.active))
	for id := range d.active {
		activeIDs = append(activeIDs, id)
	}
	d.mu.Unlock()

	now := time.Now()
	var staleScheduled, staleActive []string

	for _, id := range boundedProbe(scheduledIDs) {
		d.mu.Lock()
		sj, ok := d.scheduled[id]
		d.mu.Unlock()
		if !ok {
			continue
		}
		if _, exists := d.jobs.Lookup(ctx, id); !exists || now.Sub(sj.createdAt) > 24*time.Hour {
			staleScheduled = append(staleScheduled, id)
		}
	}

	for _, id := range boundedProbe(activeIDs) {
		if _, exists := d.jobs.Lookup(ctx, id); !exists {
			staleActive = append(staleActive, id)
		}
	}

	d.mu.Lock()
	for _, id := range staleScheduled {
		delete(d.scheduled, id)
	}
	for _, id := range staleActive {
		delete(d.active, id)
	}
	removedPending := 0
	for id, info := range d.pending {
		if now.Sub(info.firstSeen) > 6*time.Hour || info.checkCount >= recordingPendingMaxTries {
			delete(d.pending, id)
			removedPending++
		}
	}
	d.mu.Unlock()

	if d.opts.StreamCountEnabled && d.tracker != nil {
		if _, err := d.tracker.CleanupStaleSessions(300 * time.Second); err != nil {
			logging.Warn().Err(err).Msg("stream tracker stale sweep failed")
		}
	}

	logging.Debug().
		Int("scheduled_removed", len(staleScheduled)).
		Int("active_removed", len(staleActive)).
		Int("pending_removed", removedPending).
		Msg("recording-events cleanup")
}

func (d *RecordingEvents) formatDateTimeFriendly(unix int64) string {
	if unix == 0 {
		return "Unknown Time"
	}
	t := time.Unix(unix, 0).In(d.opts.Location)
	now := time.Now().In(d.opts.Location)
	clock := t.Format("3:04 PM MST")

	switch {
	case sameDate(t, now):
		return "Today at " + clock
	case sameDate(t, now.AddDate(0, 0, 1)):
		return "Tomorrow at " + clock
	default:
		return t.Format("Jan 02, 2006") + " " + clock
	}
}

func (d *RecordingEvents) formatTimeOnly(unix int64) string {
	return time.Unix(unix, 0).In(d.opts.Location).Format("3:04 PM MST")
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func formatRecordingDuration(seconds int64) string {
	total := time.Duration(seconds) * time.Second
	hours := int(total.Hours())
	minutes := int(total.Minutes()) % 60
	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%d hour%s %d minute%s", hours, plural(hours), minutes, plural(minutes))
	case hours > 0:
		return fmt.Sprintf("%d hour%s", hours, plural(hours))
	default:
		return fmt.Sprintf("%d minute%s", minutes, plural(minutes))
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
