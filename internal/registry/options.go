// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package registry

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
)

const (
	// DefaultMaxNicknameLength bounds nickname length in runes.
	DefaultMaxNicknameLength = 16

	// DefaultSaveRetries is how many extra attempts a failed file write gets.
	DefaultSaveRetries = 2

	// DefaultSaveBackoff is the pause between write attempts.
	DefaultSaveBackoff = 50 * time.Millisecond
)

// Option configures a Registry during Open.
type Option func(*Registry) error

// WithClock sets the time source. Defaults to time.Now.
func WithClock(clock func() time.Time) Option {
	return func(r *Registry) error {
		r.clock = clock
		return nil
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) error {
		r.logger = logger
		return nil
	}
}

// WithCooldownWindow overrides the per-action cooldown length.
func WithCooldownWindow(d time.Duration) Option {
	return func(r *Registry) error {
		r.cooldownWindow = d
		return nil
	}
}

// WithCooldownSweep enables periodic eviction of expired cooldown entries.
func WithCooldownSweep(interval time.Duration) Option {
	return func(r *Registry) error {
		r.sweepInterval = interval
		return nil
	}
}

// WithRegisterer registers registry and cooldown metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Registry) error {
		r.registerer = reg
		return nil
	}
}

// WithObserver adds an observer notified of every change.
func WithObserver(o Observer) Option {
	return func(r *Registry) error {
		r.observers = append(r.observers, o)
		return nil
	}
}

// WithMaxNicknameLength bounds nickname length in runes.
func WithMaxNicknameLength(n int) Option {
	return func(r *Registry) error {
		if n <= 0 {
			return oops.With("max_length", n).Errorf("max nickname length must be positive")
		}
		r.maxLength = n
		return nil
	}
}

// WithReservedNicknames rejects self-claimed nicknames matching any of the
// glob patterns (case-insensitive). Operators assigning nicknames to others
// are not bound by them.
func WithReservedNicknames(patterns ...string) Option {
	return func(r *Registry) error {
		for _, p := range patterns {
			g, err := glob.Compile(strings.ToLower(p))
			if err != nil {
				return oops.With("pattern", p).Wrapf(err, "compile reserved nickname pattern")
			}
			r.reserved = append(r.reserved, reservedPattern{pattern: p, glob: g})
		}
		return nil
	}
}

// WithSaveRetries sets how many times a failed file write is retried and the
// pause between attempts.
func WithSaveRetries(retries uint64, backoff time.Duration) Option {
	return func(r *Registry) error {
		if backoff <= 0 {
			return oops.With("backoff", backoff).Errorf("save backoff must be positive")
		}
		r.saveRetries = retries
		r.saveBackoff = backoff
		return nil
	}
}

// ReadOnly opens the registry without touching the data directory: the
// directory is not created, reconciliation repairs stay in memory, and
// mutating operations fail with READ_ONLY.
func ReadOnly() Option {
	return func(r *Registry) error {
		r.readOnly = true
		return nil
	}
}

type reservedPattern struct {
	pattern string
	glob    glob.Glob
}
