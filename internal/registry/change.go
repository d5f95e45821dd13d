// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package registry

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/holomush/holonick/internal/color"
)

// ChangeKind identifies what a mutation did.
type ChangeKind string

// Change kinds.
const (
	ChangeNickname ChangeKind = "nickname"
	ChangeAssign   ChangeKind = "assign"
	ChangeColor    ChangeKind = "color"
	ChangeReset    ChangeKind = "reset"
)

// Change describes one successful mutation.
type Change struct {
	ID   ulid.ULID
	Kind ChangeKind
	// Actor differs from User only for ChangeAssign.
	Actor    string
	User     string
	Nickname string // decorated, empty after a reset
	Color    color.Color
	At       time.Time
}

// Observer is told about every change after the registry lock is released.
type Observer func(ctx context.Context, c Change)

func newChange(kind ChangeKind, actor, user, nickname string, c color.Color, at time.Time) Change {
	return Change{
		ID:       ulid.MustNew(ulid.Timestamp(at), ulid.DefaultEntropy()),
		Kind:     kind,
		Actor:    actor,
		User:     user,
		Nickname: nickname,
		Color:    c,
		At:       at,
	}
}
