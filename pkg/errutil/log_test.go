// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/holonick/pkg/errutil"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogError_WithOopsError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.Code("NICKNAME_IN_USE").
		With("nickname", "Red").
		Errorf("nickname taken")

	errutil.LogError(context.Background(), logger, "claim failed", err, "user", "bob")

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "claim failed", entry["msg"])
	assert.Equal(t, "NICKNAME_IN_USE", entry["code"])
	assert.Equal(t, "bob", entry["user"])
	assert.Contains(t, entry["context"], "nickname")
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(context.Background(), logger, "save failed", errors.New("disk full"))

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Contains(t, entry["error"], "disk full")
	assert.NotContains(t, entry, "code")
}

func TestLogWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogWarn(context.Background(), logger, "load failed", oops.Code("STORAGE_UNAVAILABLE").Errorf("nope"))

	entry := decode(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "STORAGE_UNAVAILABLE", entry["code"])
}

func TestCode(t *testing.T) {
	assert.Equal(t, "INVALID_COLOR", errutil.Code(oops.Code("INVALID_COLOR").Errorf("bad")))
	assert.Equal(t, "INVALID_COLOR", errutil.Code(oops.Wrapf(oops.Code("INVALID_COLOR").Errorf("bad"), "outer")))
	assert.Empty(t, errutil.Code(errors.New("plain")))
	assert.Empty(t, errutil.Code(nil))
}
