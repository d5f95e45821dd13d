// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package command maps the textual nickname commands onto the registry and
// reports outcomes back to users.
package command

import (
	"context"
)

// CapabilityRenameOthers allows renaming other users with the rename command.
const CapabilityRenameOthers = "nicks.rename.others"

// Notifier delivers feedback text to a user.
type Notifier interface {
	Notify(ctx context.Context, user, message string) error
}

// Authorizer checks whether a user holds a capability.
type Authorizer interface {
	IsAuthorized(ctx context.Context, user, capability string) bool
}

// Presence reports whether a user is currently connected. The rename
// command only targets connected users.
type Presence interface {
	IsOnline(ctx context.Context, user string) bool
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, user, message string) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, user, message string) error {
	return f(ctx, user, message)
}

// CapabilitySet is an Authorizer backed by a static user -> capabilities map.
type CapabilitySet map[string][]string

// IsAuthorized reports whether user was granted capability.
func (s CapabilitySet) IsAuthorized(_ context.Context, user, capability string) bool {
	for _, c := range s[user] {
		if c == capability {
			return true
		}
	}
	return false
}
