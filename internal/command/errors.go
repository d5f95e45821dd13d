// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"errors"
	"fmt"

	"github.com/samber/oops"

	"github.com/holomush/holonick/internal/cooldown"
	"github.com/holomush/holonick/internal/registry"
)

// Error codes for command failures.
const (
	CodeEmptyInput       = "EMPTY_INPUT"
	CodeUnknownCommand   = "UNKNOWN_COMMAND"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeInvalidArgs      = "INVALID_ARGS"
	CodePlayerNotFound   = "PLAYER_NOT_FOUND"
)

// Construction errors.
var (
	ErrNilRegistry = errors.New("registry is required")
	ErrNilNotifier = errors.New("notifier is required")
)

// ErrUnknownCommand creates an error for an unknown command.
func ErrUnknownCommand(cmd string) error {
	return oops.Code(CodeUnknownCommand).
		With("command", cmd).
		Errorf("unknown command: %s", cmd)
}

// ErrPermissionDenied creates an error for permission denial.
func ErrPermissionDenied(cmd, capability string) error {
	return oops.Code(CodePermissionDenied).
		With("command", cmd).
		With("capability", capability).
		Errorf("permission denied for command %s", cmd)
}

// ErrInvalidArgs creates an error for invalid arguments.
func ErrInvalidArgs(cmd, usage string) error {
	return oops.Code(CodeInvalidArgs).
		With("command", cmd).
		With("usage", usage).
		Errorf("invalid arguments")
}

// ErrPlayerNotFound creates an error for a rename target that is not online.
func ErrPlayerNotFound(user string) error {
	return oops.Code(CodePlayerNotFound).
		With("user", user).
		Errorf("player %s not found", user)
}

// commandFor names the command that starts each cooldown.
var commandFor = map[string]string{
	string(cooldown.ActionNickname): CmdNickname,
	string(cooldown.ActionColor):    CmdColor,
	string(cooldown.ActionReset):    CmdNickReset,
}

// PlayerMessage extracts a player-facing message from an error.
func PlayerMessage(err error) string {
	if err == nil {
		return "Something went wrong. Try again."
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return "Something went wrong. Try again."
	}
	ctx := oopsErr.Context()

	switch oopsErr.Code() {
	case CodeEmptyInput:
		return "No command provided."
	case CodeUnknownCommand:
		return "Unknown command."
	case CodePermissionDenied:
		if ctx["command"] == CmdRename {
			return "You do not have permission to rename other players."
		}
		return "You don't have permission to do that."
	case CodeInvalidArgs:
		if usage, ok := ctx["usage"].(string); ok && usage != "" {
			return "Usage: " + usage
		}
		return "Invalid arguments."
	case CodePlayerNotFound:
		return "Player not found."
	case registry.CodeOnCooldown:
		secs, _ := registry.RemainingSeconds(err)
		action, _ := ctx["action"].(string)
		if cmd, ok := commandFor[action]; ok {
			return fmt.Sprintf("You must wait %d seconds before using /%s again.", secs, cmd)
		}
		return fmt.Sprintf("You must wait %d seconds before trying again.", secs)
	case registry.CodeNicknameInUse:
		return fmt.Sprintf("The nickname %v is already in use.", ctx["nickname"])
	case registry.CodeInvalidColor:
		return "Invalid color. Use /color help to see available colors."
	case registry.CodeNotFound:
		return fmt.Sprintf("No original name found for %v.", ctx["nickname"])
	case registry.CodeInvalidNickname:
		return fmt.Sprintf("That nickname can't be used: %v.", ctx["reason"])
	case registry.CodeNicknameReserved:
		return "That nickname is reserved."
	case registry.CodeInvalidUser:
		return "That player name can't be stored."
	default:
		return "Something went wrong. Try again."
	}
}
