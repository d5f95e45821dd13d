// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package registry

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: epoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to epoch plus the given number of seconds.
func (c *fakeClock) Set(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = epoch.Add(time.Duration(seconds) * time.Second)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTest(t *testing.T, dir string, clock *fakeClock, opts ...Option) *Registry {
	t.Helper()
	base := []Option{
		WithClock(clock.Now),
		WithLogger(quietLogger()),
		WithSaveRetries(0, time.Millisecond),
	}
	r, err := Open(context.Background(), dir, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { r.cooldowns.Close() })
	return r
}
