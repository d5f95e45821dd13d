// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package registry

import (
	"github.com/samber/oops"

	"github.com/holomush/holonick/internal/cooldown"
	"github.com/holomush/holonick/internal/store"
)

// Error codes returned by registry operations.
const (
	CodeOnCooldown         = "ON_COOLDOWN"
	CodeNicknameInUse      = "NICKNAME_IN_USE"
	CodeInvalidColor       = "INVALID_COLOR"
	CodeNotFound           = "NOT_FOUND"
	CodeStorageUnavailable = store.CodeStorageUnavailable
	CodeInvalidNickname    = "INVALID_NICKNAME"
	CodeNicknameReserved   = "NICKNAME_RESERVED"
	CodeInvalidUser        = "INVALID_USER"
	CodeReadOnly           = "READ_ONLY"
)

// ErrOnCooldown reports that action is still inside its cooldown window.
func ErrOnCooldown(action cooldown.Action, remainingSeconds int64) error {
	return oops.Code(CodeOnCooldown).
		With("action", string(action)).
		With("remaining_seconds", remainingSeconds).
		Errorf("%s is on cooldown for %d more seconds", action, remainingSeconds)
}

// ErrNicknameInUse reports that another user holds nickname.
func ErrNicknameInUse(nickname string) error {
	return oops.Code(CodeNicknameInUse).
		With("nickname", store.Decorate(nickname)).
		Errorf("nickname %s is already in use", store.Decorate(nickname))
}

// ErrInvalidColor reports a token outside the color catalog.
func ErrInvalidColor(token string) error {
	return oops.Code(CodeInvalidColor).
		With("color", token).
		Errorf("invalid color %q", token)
}

// ErrNotFound reports that no user holds the decorated nickname.
func ErrNotFound(decorated string) error {
	return oops.Code(CodeNotFound).
		With("nickname", decorated).
		Errorf("no original name found for %s", decorated)
}

// ErrInvalidNickname reports a nickname that cannot be stored.
func ErrInvalidNickname(nickname, reason string) error {
	return oops.Code(CodeInvalidNickname).
		With("nickname", nickname).
		With("reason", reason).
		Errorf("invalid nickname %q: %s", nickname, reason)
}

// ErrNicknameReserved reports a nickname matching a reserved pattern.
func ErrNicknameReserved(nickname, pattern string) error {
	return oops.Code(CodeNicknameReserved).
		With("nickname", nickname).
		With("pattern", pattern).
		Errorf("nickname %q is reserved", nickname)
}

// ErrInvalidUser reports a user handle that cannot be persisted.
func ErrInvalidUser(user, reason string) error {
	return oops.Code(CodeInvalidUser).
		With("user", user).
		With("reason", reason).
		Errorf("invalid user %q: %s", user, reason)
}

// ErrReadOnly reports a mutation attempted on a read-only registry.
func ErrReadOnly(op string) error {
	return oops.Code(CodeReadOnly).
		With("operation", op).
		Errorf("registry is read-only")
}

// RemainingSeconds extracts the cooldown from an ON_COOLDOWN error.
func RemainingSeconds(err error) (int64, bool) {
	oopsErr, ok := oops.AsOops(err)
	if !ok || oopsErr.Code() != CodeOnCooldown {
		return 0, false
	}
	secs, ok := oopsErr.Context()["remaining_seconds"].(int64)
	return secs, ok
}
