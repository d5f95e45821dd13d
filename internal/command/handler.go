// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/holomush/holonick/internal/color"
	"github.com/holomush/holonick/internal/registry"
	"github.com/holomush/holonick/pkg/errutil"
)

// Command names.
const (
	CmdNickname  = "nickname"
	CmdRename    = "rename"
	CmdColor     = "color"
	CmdNickReset = "nickreset"
	CmdRealName  = "realname"
)

// Usage strings shown on bad arguments.
const (
	UsageNickname = "/nickname <nickname>"
	UsageRename   = "/rename <player> <nickname>"
	UsageColor    = "/color <color> or /color help"
	UsageRealName = "/realname <nickname>"
)

// Handler executes nickname commands for a user.
type Handler struct {
	registry *registry.Registry
	notifier Notifier
	auth     Authorizer // nil denies every capability
	presence Presence   // nil treats every user as online
	logger   *slog.Logger
}

// HandlerOption configures a Handler during construction.
type HandlerOption func(*Handler)

// WithAuthorizer sets the capability check used by rename.
func WithAuthorizer(a Authorizer) HandlerOption {
	return func(h *Handler) {
		h.auth = a
	}
}

// WithPresence restricts rename to connected targets.
func WithPresence(p Presence) HandlerOption {
	return func(h *Handler) {
		h.presence = p
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = l
	}
}

// NewHandler creates a Handler. Returns an error if reg or notifier is nil.
func NewHandler(reg *registry.Registry, notifier Notifier, opts ...HandlerOption) (*Handler, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if notifier == nil {
		return nil, ErrNilNotifier
	}
	h := &Handler{
		registry: reg,
		notifier: notifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Execute parses input and runs it as user. Failures are reported to user
// and returned.
func (h *Handler) Execute(ctx context.Context, user, input string) error {
	err := h.execute(ctx, user, input)
	if err != nil {
		h.notify(ctx, user, PlayerMessage(err))
	}
	return err
}

func (h *Handler) execute(ctx context.Context, user, input string) error {
	parsed, err := Parse(input)
	if err != nil {
		return err
	}

	switch parsed.Name {
	case CmdNickname:
		return h.nickname(ctx, user, parsed.Args)
	case CmdRename:
		return h.rename(ctx, user, parsed.Args)
	case CmdColor:
		return h.changeColor(ctx, user, parsed.Args)
	case CmdNickReset:
		return h.nickReset(ctx, user)
	case CmdRealName:
		return h.realName(ctx, user, parsed.Args)
	default:
		return ErrUnknownCommand(parsed.Name)
	}
}

func (h *Handler) nickname(ctx context.Context, user string, args []string) error {
	if len(args) == 0 {
		return ErrInvalidArgs(CmdNickname, UsageNickname)
	}
	decorated, err := h.registry.ClaimNickname(ctx, user, args[0])
	if err != nil {
		return err //nolint:wrapcheck // registry errors carry codes for PlayerMessage
	}
	h.notify(ctx, user, fmt.Sprintf("Your nickname has been set to %s.", decorated))
	return nil
}

func (h *Handler) rename(ctx context.Context, actor string, args []string) error {
	if h.auth == nil || !h.auth.IsAuthorized(ctx, actor, CapabilityRenameOthers) {
		return ErrPermissionDenied(CmdRename, CapabilityRenameOthers)
	}
	if len(args) < 2 {
		return ErrInvalidArgs(CmdRename, UsageRename)
	}
	target, nickname := args[0], args[1]
	if h.presence != nil && !h.presence.IsOnline(ctx, target) {
		return ErrPlayerNotFound(target)
	}

	decorated, err := h.registry.AssignNicknameToOther(ctx, actor, target, nickname)
	if err != nil {
		return err //nolint:wrapcheck // registry errors carry codes for PlayerMessage
	}
	h.notify(ctx, actor, fmt.Sprintf("You have renamed %s to %s.", target, decorated))
	h.notify(ctx, target, fmt.Sprintf("You have been renamed to %s.", decorated))
	return nil
}

func (h *Handler) changeColor(ctx context.Context, user string, args []string) error {
	if len(args) == 0 {
		return ErrInvalidArgs(CmdColor, UsageColor)
	}
	if strings.EqualFold(args[0], "help") {
		h.notify(ctx, user, "Available nickname colors: "+color.HelpText())
		return nil
	}
	c, err := h.registry.ChangeColor(ctx, user, args[0])
	if err != nil {
		return err //nolint:wrapcheck // registry errors carry codes for PlayerMessage
	}
	h.notify(ctx, user, fmt.Sprintf("Your color has been set to %s.", c.Name()))
	return nil
}

func (h *Handler) nickReset(ctx context.Context, user string) error {
	if err := h.registry.ResetNickname(ctx, user); err != nil {
		return err //nolint:wrapcheck // registry errors carry codes for PlayerMessage
	}
	h.notify(ctx, user, "Your nickname has been reset.")
	return nil
}

func (h *Handler) realName(ctx context.Context, user string, args []string) error {
	if len(args) == 0 {
		return ErrInvalidArgs(CmdRealName, UsageRealName)
	}
	found, err := h.registry.LookupRealName(ctx, args[0])
	if err != nil {
		return err //nolint:wrapcheck // registry errors carry codes for PlayerMessage
	}
	h.notify(ctx, user, fmt.Sprintf("Real name of %s is %s.", found.Nickname, found.User))
	return nil
}

// Identity is what a host shows for a user.
type Identity struct {
	DisplayName string
	Color       color.Color
}

// OnConnect returns the stored display identity for a user who just joined.
func (h *Handler) OnConnect(ctx context.Context, user string) Identity {
	p := h.registry.Profile(ctx, user)
	return Identity{DisplayName: p.DisplayName(user), Color: p.Color}
}

// notify delivers a message, logging delivery failures without failing the
// command.
func (h *Handler) notify(ctx context.Context, user, msg string) {
	if err := h.notifier.Notify(ctx, user, msg); err != nil {
		errutil.LogWarn(ctx, h.logger, "failed to notify user", err, "user", user)
	}
}
