// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package cooldown tracks per-user, per-action timestamps and answers whether
// an action is still inside its cooldown window.
package cooldown

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Action identifies an independently rate-limited operation.
type Action string

// Actions tracked by the registry.
const (
	ActionNickname Action = "nickname"
	ActionColor    Action = "color"
	ActionReset    Action = "reset"
)

const (
	// DefaultWindow is the minimum interval between two uses of the same
	// action by the same user.
	DefaultWindow = 15 * time.Second

	// DefaultSweepInterval is how often the background goroutine evicts
	// entries whose window has passed.
	DefaultSweepInterval = 5 * time.Minute
)

// Config configures a Tracker.
type Config struct {
	// Window is the cooldown length. Defaults to DefaultWindow if zero or negative.
	Window time.Duration

	// SweepInterval enables background eviction of expired entries when
	// positive. Zero disables the sweeper; eviction then only happens via Sweep.
	SweepInterval time.Duration

	// Clock is used by the sweeper. Defaults to time.Now.
	Clock func() time.Time
}

type key struct {
	user   string
	action Action
}

// Tracker stores the last use of each (user, action) pair. Only the most
// recent timestamp is kept. It is safe for concurrent use.
//
// When a sweep interval is configured the Tracker runs a background
// goroutine; call Close to stop it.
type Tracker struct {
	mu     sync.Mutex
	last   map[key]time.Time
	window time.Duration
	clock  func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// nil if no registry provided
	entryGauge prometheus.Gauge
}

// New creates a Tracker with the given configuration.
func New(cfg Config) *Tracker {
	return newTracker(cfg, nil)
}

// NewWithRegistry creates a Tracker and registers an entry count gauge with
// the provided Prometheus registry.
func NewWithRegistry(cfg Config, reg prometheus.Registerer) *Tracker {
	return newTracker(cfg, reg)
}

func newTracker(cfg Config, reg prometheus.Registerer) *Tracker {
	window := cfg.Window
	if window <= 0 {
		window = DefaultWindow
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	t := &Tracker{
		last:     make(map[key]time.Time),
		window:   window,
		clock:    clock,
		stopChan: make(chan struct{}),
	}

	if reg != nil {
		t.entryGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "holonick_cooldown_entries",
			Help: "Current number of tracked cooldown entries",
		})
		reg.MustRegister(t.entryGauge)
	}

	if cfg.SweepInterval > 0 {
		t.wg.Add(1)
		go t.sweepLoop(cfg.SweepInterval)
	}

	return t
}

// Window returns the configured cooldown length.
func (t *Tracker) Window() time.Duration {
	return t.window
}

// IsBlocked reports whether user used action less than one window before now.
func (t *Tracker) IsBlocked(user string, action Action, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.blocked(key{user, action}, now)
}

func (t *Tracker) blocked(k key, now time.Time) bool {
	last, ok := t.last[k]
	return ok && now.Before(last.Add(t.window))
}

// Remaining returns the whole seconds left in the window, rounded down.
// It returns 0 when the action is not blocked.
func (t *Tracker) Remaining(user string, action Action, now time.Time) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := key{user, action}
	if !t.blocked(k, now) {
		return 0
	}
	left := t.last[k].Add(t.window).Sub(now)
	return int64(left / time.Second)
}

// Record stores now as the last use of action by user, replacing any
// earlier timestamp.
func (t *Tracker) Record(user string, action Action, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last[key{user, action}] = now
	t.updateGauge()
}

// Len returns the number of tracked entries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.last)
}

// Sweep drops entries whose window ended at or before now. Dropping them
// does not change any IsBlocked answer.
func (t *Tracker) Sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for k, last := range t.last {
		if !now.Before(last.Add(t.window)) {
			delete(t.last, k)
		}
	}
	t.updateGauge()
}

// updateGauge must be called with mu held.
func (t *Tracker) updateGauge() {
	if t.entryGauge != nil {
		t.entryGauge.Set(float64(len(t.last)))
	}
}

func (t *Tracker) sweepLoop(interval time.Duration) {
	defer t.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stopChan:
			return
		case <-ticker.C:
			t.Sweep(t.clock())
		}
	}
}

// Close stops the background sweeper, if any, and waits for it to exit.
// It is safe to call more than once.
func (t *Tracker) Close() {
	t.stopOnce.Do(func() { close(t.stopChan) })
	t.wg.Wait()
}
