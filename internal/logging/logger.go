// chanwatch - Channels DVR notification sidecar
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides a single zerolog-based logger for the whole
// sidecar. Every component logs through this package instead of the
// standard log package so that operators get one consistent JSON (or
// console, in dev) stream with correlation IDs attached.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config controls the global logger.
type Config struct {
	// Level: trace, debug, info, warn, error. Default: info.
	Level string
	// Format: json or console. Default: json.
	Format string
	// Caller includes file:line in each record.
	Caller bool
}

var (
	mu     sync.RWMutex
	logger zerolog.Logger
)

func init() {
	logger = build(Config{Level: "info", Format: "console"})
}

// Init (re)configures the global logger. Safe to call again on config reload.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	logger = build(cfg)
}

// SetLogger replaces the global logger outright, e.g. to redirect output to
// a buffer in tests asserting on log content.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}

func build(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var w io.Writer = os.Stdout
	if strings.EqualFold(cfg.Format, "console") {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(w).Level(level).With().Timestamp().Logger()
	if cfg.Caller {
		l = l.With().Caller().Logger()
	}
	return l
}

type ctxKey struct{}

// WithCorrelationID returns a context carrying a logger tagged with id,
// e.g. a tracking key or notification key, so every log line for one
// alert's lifecycle can be grepped together.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	l := Ctx(ctx).With().Str("correlation_id", id).Logger()
	return context.WithValue(ctx, ctxKey{}, &l)
}

// Ctx returns the logger attached to ctx, or the global logger.
func Ctx(ctx context.Context) *zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
		return l
	}
	mu.RLock()
	defer mu.RUnlock()
	return &logger
}

func get() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &logger
}

func Debug() *zerolog.Event { return get().Debug() }
func Info() *zerolog.Event  { return get().Info() }
func Warn() *zerolog.Event  { return get().Warn() }
func Error() *zerolog.Event { return get().Error() }
