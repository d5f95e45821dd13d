// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package cooldown

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int64) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func TestNew(t *testing.T) {
	t.Run("zero window uses default", func(t *testing.T) {
		tr := New(Config{})
		defer tr.Close()
		assert.Equal(t, DefaultWindow, tr.Window())
	})

	t.Run("negative window uses default", func(t *testing.T) {
		tr := New(Config{Window: -time.Second})
		defer tr.Close()
		assert.Equal(t, DefaultWindow, tr.Window())
	})

	t.Run("custom window", func(t *testing.T) {
		tr := New(Config{Window: 3 * time.Second})
		defer tr.Close()
		assert.Equal(t, 3*time.Second, tr.Window())
	})
}

func TestTracker_IsBlocked(t *testing.T) {
	t.Run("unknown pair is not blocked", func(t *testing.T) {
		tr := New(Config{})
		assert.False(t, tr.IsBlocked("alice", ActionNickname, at(0)))
		assert.Equal(t, int64(0), tr.Remaining("alice", ActionNickname, at(0)))
	})

	t.Run("blocked for the whole window and free afterwards", func(t *testing.T) {
		tr := New(Config{})
		tr.Record("alice", ActionNickname, at(0))

		for _, ms := range []int64{0, 1, 5000, 14999} {
			assert.True(t, tr.IsBlocked("alice", ActionNickname, at(ms)), "t=%d", ms)
		}
		for _, ms := range []int64{15000, 15001, 60000} {
			assert.False(t, tr.IsBlocked("alice", ActionNickname, at(ms)), "t=%d", ms)
		}
	})

	t.Run("actions are independent", func(t *testing.T) {
		tr := New(Config{})
		tr.Record("alice", ActionNickname, at(0))

		assert.False(t, tr.IsBlocked("alice", ActionColor, at(1)))
		assert.False(t, tr.IsBlocked("alice", ActionReset, at(1)))
	})

	t.Run("users are independent", func(t *testing.T) {
		tr := New(Config{})
		tr.Record("alice", ActionColor, at(0))

		assert.False(t, tr.IsBlocked("bob", ActionColor, at(1)))
	})

	t.Run("record overwrites the previous timestamp", func(t *testing.T) {
		tr := New(Config{})
		tr.Record("alice", ActionReset, at(0))
		tr.Record("alice", ActionReset, at(10000))

		assert.True(t, tr.IsBlocked("alice", ActionReset, at(20000)))
		assert.False(t, tr.IsBlocked("alice", ActionReset, at(25000)))
		assert.Equal(t, 1, tr.Len())
	})
}

func TestTracker_Remaining(t *testing.T) {
	tr := New(Config{})
	tr.Record("alice", ActionNickname, at(0))

	tests := []struct {
		ms   int64
		want int64
	}{
		{0, 15},
		{1, 14},
		{5000, 10},
		{5500, 9},
		{14999, 0},
		{15000, 0},
		{90000, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tr.Remaining("alice", ActionNickname, at(tt.ms)), "t=%d", tt.ms)
	}
}

func TestTracker_Sweep(t *testing.T) {
	tr := New(Config{})
	tr.Record("alice", ActionNickname, at(0))
	tr.Record("bob", ActionNickname, at(10000))

	tr.Sweep(at(15000))

	assert.Equal(t, 1, tr.Len())
	assert.False(t, tr.IsBlocked("alice", ActionNickname, at(15000)))
	assert.True(t, tr.IsBlocked("bob", ActionNickname, at(15000)))
}

func TestTracker_Gauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	tr := NewWithRegistry(Config{}, reg)

	tr.Record("alice", ActionNickname, at(0))
	tr.Record("alice", ActionColor, at(0))
	assert.Equal(t, 2.0, testutil.ToFloat64(tr.entryGauge))

	tr.Sweep(at(20000))
	assert.Equal(t, 0.0, testutil.ToFloat64(tr.entryGauge))
}

func TestTracker_SweepLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	now := at(0)
	tr := New(Config{
		SweepInterval: 5 * time.Millisecond,
		Clock:         func() time.Time { return now.Add(time.Hour) },
	})
	tr.Record("alice", ActionNickname, now)

	require.Eventually(t, func() bool { return tr.Len() == 0 }, time.Second, 5*time.Millisecond)

	tr.Close()
	tr.Close()
}
