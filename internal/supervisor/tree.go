// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package supervisor organizes every background task this sidecar runs
// (spec §5: the SSE read loop, the keep-alive pinger, four cleanup
// sweepers, the Recording-Events watchdog/retry worker, and the
// Disk-Space poller/health-checker) into a thejerf/suture tree so that a
// panic or returned error in one task restarts just that task instead of
// bringing the process down.
package supervisor

import (
	"context"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// TreeConfig mirrors the teacher's suture.Spec knobs.
type TreeConfig struct {
	FailureThreshold float64
	FailureDecay     float64
	FailureBackoff   time.Duration
	ShutdownTimeout  time.Duration
}

func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// Tree is the sidecar's supervisor tree. It has two layers: "transport"
// (the SSE event monitor and its keep-alive pinger, which must stay up
// for the whole pipeline to receive events) and "background" (cleanup
// sweepers, the disk poller, the recording watchdog — each independently
// restartable without affecting event ingest).
type Tree struct {
	root       *suture.Supervisor
	Transport  *suture.Supervisor
	Background *suture.Supervisor
}

func New(logger *slog.Logger, cfg TreeConfig) *Tree {
	if cfg.FailureThreshold == 0 {
		cfg = DefaultTreeConfig()
	}
	handler := &sutureslog.Handler{Logger: logger}
	spec := suture.Spec{
		EventHook:        handler.MustHook(),
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}
	childSpec := suture.Spec{
		FailureThreshold: cfg.FailureThreshold,
		FailureDecay:     cfg.FailureDecay,
		FailureBackoff:   cfg.FailureBackoff,
		Timeout:          cfg.ShutdownTimeout,
	}

	root := suture.New("chanwatch", spec)
	transport := suture.New("transport", childSpec)
	background := suture.New("background", childSpec)
	root.Add(transport)
	root.Add(background)

	return &Tree{root: root, Transport: transport, Background: background}
}

// Serve starts the tree and blocks until ctx is cancelled. The caller
// runs this in its own goroutine.
func (t *Tree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// Add registers svc with the named layer ("transport" or "background").
func (t *Tree) Add(layer string, svc suture.Service) {
	switch layer {
	case "transport":
		t.Transport.Add(svc)
	default:
		t.Background.Add(svc)
	}
}
