// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package registry composes the nickname and profile stores, the color
// catalog and the cooldown tracker into the operations users invoke:
// claiming a nickname, being renamed by an operator, changing color,
// resetting, and looking up who is behind a nickname.
//
// Every successful mutation rewrites the affected files before returning.
// A failed write is retried, then logged; the in-memory state stays
// authoritative and the operation still succeeds.
package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"

	"github.com/holomush/holonick/internal/color"
	"github.com/holomush/holonick/internal/cooldown"
	"github.com/holomush/holonick/internal/store"
	"github.com/holomush/holonick/internal/xdg"
	"github.com/holomush/holonick/pkg/errutil"
)

// RealName is the answer to a real-name lookup.
type RealName struct {
	User     string
	Nickname string // decorated
	Color    color.Color
}

// Registry is the nickname/color registry. Construct it with Open; it is
// safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	nicknames *store.NicknameStore
	profiles  *store.ProfileStore
	cooldowns *cooldown.Tracker

	dataDir string
	clock   func() time.Time
	logger  *slog.Logger
	metrics *Metrics

	observers      []Observer
	reserved       []reservedPattern
	maxLength      int
	saveRetries    uint64
	saveBackoff    time.Duration
	cooldownWindow time.Duration
	sweepInterval  time.Duration
	registerer     prometheus.Registerer
	readOnly       bool
}

// file identifies one of the two persisted tables.
type file int

const (
	nicknameFile file = 1 << iota
	profileFile

	bothFiles = nicknameFile | profileFile
)

// Open loads the registry from dataDir. Unreadable files are logged and the
// registry starts with the tables it could load; Open only fails on invalid
// options.
func Open(ctx context.Context, dataDir string, opts ...Option) (*Registry, error) {
	r := &Registry{
		dataDir:     dataDir,
		clock:       time.Now,
		logger:      slog.Default(),
		maxLength:   DefaultMaxNicknameLength,
		saveRetries: DefaultSaveRetries,
		saveBackoff: DefaultSaveBackoff,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	cdCfg := cooldown.Config{
		Window:        r.cooldownWindow,
		SweepInterval: r.sweepInterval,
		Clock:         r.clock,
	}
	if r.registerer != nil {
		r.metrics = NewMetrics(r.registerer)
		r.cooldowns = cooldown.NewWithRegistry(cdCfg, r.registerer)
	} else {
		r.cooldowns = cooldown.New(cdCfg)
	}

	if !r.readOnly {
		if err := xdg.EnsureDir(dataDir); err != nil {
			errutil.LogWarn(ctx, r.logger, "data directory unavailable", err, "data_dir", dataDir)
		}
	}

	r.nicknames = loadOrEmpty(ctx, r.logger, r.path(nicknameFile), store.LoadNicknames, store.NewNicknameStore)
	r.profiles = loadOrEmpty(ctx, r.logger, r.path(profileFile), store.LoadProfiles, store.NewProfileStore)

	if repaired := r.reconcile(); repaired > 0 {
		r.logger.WarnContext(ctx, "reconciled nickname and profile tables", "repaired", repaired)
		if !r.readOnly {
			r.persist(ctx, bothFiles)
		}
	}
	r.metrics.setNicknames(r.nicknames.Len())

	r.logger.InfoContext(ctx, "registry loaded",
		"data_dir", dataDir,
		"nicknames", r.nicknames.Len(),
		"profiles", r.profiles.Len(),
	)
	return r, nil
}

type skipCounter interface{ Skipped() int }

func loadOrEmpty[T skipCounter](ctx context.Context, logger *slog.Logger, path string, load func(io.Reader) (T, error), empty func() T) T {
	s, err := store.ReadFile(path, load)
	if err != nil {
		errutil.LogError(ctx, logger, "failed to load registry file, starting empty", err, "path", path)
		return empty()
	}
	if n := s.Skipped(); n > 0 {
		logger.DebugContext(ctx, "dropped malformed lines", "path", path, "skipped", n)
	}
	return s
}

// reconcile makes the profile table agree with the nickname table, which is
// authoritative for ownership. Profiles naming a nickname nobody owns claim
// it; profiles naming a nickname owned by someone else lose it.
func (r *Registry) reconcile() int {
	repaired := 0
	for _, user := range r.nicknames.Users() {
		nick, _ := r.nicknames.Nickname(user)
		p := r.profiles.Get(user)
		if p.Nickname != store.Decorate(nick) {
			r.profiles.SetNickname(user, store.Decorate(nick), p.Color)
			repaired++
		}
	}
	for _, user := range r.profiles.Users() {
		p := r.profiles.Get(user)
		if !p.HasNickname() {
			continue
		}
		nick := store.Undecorate(p.Nickname)
		owner, taken := r.nicknames.Owner(nick)
		switch {
		case taken && owner == user:
		case taken:
			r.profiles.SetNickname(user, "", p.Color)
			repaired++
		default:
			r.nicknames.Assign(user, nick)
			repaired++
		}
	}
	return repaired
}

func (r *Registry) path(f file) string {
	if f == nicknameFile {
		return filepath.Join(r.dataDir, store.NicknameFile)
	}
	return filepath.Join(r.dataDir, store.ProfileFile)
}

// mutate runs fn under the registry lock, records the outcome and notifies
// observers once the lock is released.
func (r *Registry) mutate(ctx context.Context, op string, fn func(now time.Time) (Change, error)) (Change, error) {
	if r.readOnly {
		err := ErrReadOnly(op)
		r.metrics.recordOperation(op, err)
		return Change{}, err
	}

	r.mu.Lock()
	change, err := fn(r.clock())
	r.metrics.recordOperation(op, err)
	if err == nil {
		r.metrics.setNicknames(r.nicknames.Len())
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.DebugContext(ctx, "registry operation rejected",
			"operation", op,
			"code", errutil.Code(err),
		)
		return Change{}, err
	}

	r.logger.InfoContext(ctx, "registry changed",
		"change_id", change.ID.String(),
		"kind", string(change.Kind),
		"actor", change.Actor,
		"user", change.User,
		"nickname", change.Nickname,
		"color", string(change.Color),
	)
	for _, o := range r.observers {
		o(ctx, change)
	}
	return change, nil
}

func (r *Registry) checkCooldown(user string, action cooldown.Action, now time.Time) error {
	if r.cooldowns.IsBlocked(user, action, now) {
		return ErrOnCooldown(action, r.cooldowns.Remaining(user, action, now))
	}
	return nil
}

func validateUser(user string) error {
	if reason := store.KeyProblem(user); reason != "" {
		return ErrInvalidUser(user, reason)
	}
	return nil
}

func (r *Registry) validateNickname(nickname string) error {
	switch {
	case nickname == "":
		return ErrInvalidNickname(nickname, "nickname cannot be empty")
	case strings.HasPrefix(nickname, store.NicknamePrefix):
		return ErrInvalidNickname(nickname, "nickname cannot start with "+store.NicknamePrefix)
	case strings.Contains(nickname, "="):
		return ErrInvalidNickname(nickname, "nickname cannot contain '='")
	case strings.IndexFunc(nickname, func(c rune) bool { return unicode.IsSpace(c) || unicode.IsControl(c) }) >= 0:
		return ErrInvalidNickname(nickname, "nickname cannot contain whitespace")
	case utf8.RuneCountInString(nickname) > r.maxLength:
		return ErrInvalidNickname(nickname, "nickname is too long")
	}
	return nil
}

func (r *Registry) checkReserved(nickname string) error {
	lower := strings.ToLower(nickname)
	for _, p := range r.reserved {
		if p.glob.Match(lower) {
			return ErrNicknameReserved(nickname, p.pattern)
		}
	}
	return nil
}

// bind gives user the nickname in both tables, keeping the current color.
func (r *Registry) bind(user, nickname string) (string, color.Color) {
	decorated := store.Decorate(nickname)
	c := r.profiles.Get(user).Color
	r.nicknames.Assign(user, nickname)
	r.profiles.SetNickname(user, decorated, c)
	return decorated, c
}

// ClaimNickname gives user the nickname and returns it decorated. It fails
// with INVALID_USER, ON_COOLDOWN, INVALID_NICKNAME, NICKNAME_RESERVED or NICKNAME_IN_USE
// without changing any state. Claiming one's own nickname again succeeds.
func (r *Registry) ClaimNickname(ctx context.Context, user, nickname string) (string, error) {
	change, err := r.mutate(ctx, OpClaim, func(now time.Time) (Change, error) {
		if err := validateUser(user); err != nil {
			return Change{}, err
		}
		if err := r.checkCooldown(user, cooldown.ActionNickname, now); err != nil {
			return Change{}, err
		}
		if err := r.validateNickname(nickname); err != nil {
			return Change{}, err
		}
		if err := r.checkReserved(nickname); err != nil {
			return Change{}, err
		}
		if owner, ok := r.nicknames.Owner(nickname); ok && owner != user {
			return Change{}, ErrNicknameInUse(nickname)
		}

		decorated, c := r.bind(user, nickname)
		r.cooldowns.Record(user, cooldown.ActionNickname, now)
		r.persist(ctx, bothFiles)
		return newChange(ChangeNickname, user, user, decorated, c, now), nil
	})
	return change.Nickname, err
}

// AssignNicknameToOther gives target the nickname on behalf of actor. The
// caller must already have authorized actor. No cooldown is checked or
// started, and reserved patterns do not apply.
func (r *Registry) AssignNicknameToOther(ctx context.Context, actor, target, nickname string) (string, error) {
	change, err := r.mutate(ctx, OpAssign, func(now time.Time) (Change, error) {
		if err := validateUser(target); err != nil {
			return Change{}, err
		}
		if err := r.validateNickname(nickname); err != nil {
			return Change{}, err
		}
		if owner, ok := r.nicknames.Owner(nickname); ok && owner != target {
			return Change{}, ErrNicknameInUse(nickname)
		}

		decorated, c := r.bind(target, nickname)
		r.persist(ctx, bothFiles)
		return newChange(ChangeAssign, actor, target, decorated, c, now), nil
	})
	return change.Nickname, err
}

// ChangeColor sets user's color, keeping the nickname. It fails with
// ON_COOLDOWN before INVALID_COLOR; neither failure starts a cooldown.
// Handles that cannot be persisted fail with INVALID_USER.
func (r *Registry) ChangeColor(ctx context.Context, user, token string) (color.Color, error) {
	change, err := r.mutate(ctx, OpColor, func(now time.Time) (Change, error) {
		if err := validateUser(user); err != nil {
			return Change{}, err
		}
		if err := r.checkCooldown(user, cooldown.ActionColor, now); err != nil {
			return Change{}, err
		}
		c, ok := color.Normalize(token)
		if !ok {
			return Change{}, ErrInvalidColor(token)
		}

		r.profiles.SetColor(user, c)
		r.cooldowns.Record(user, cooldown.ActionColor, now)
		r.persist(ctx, profileFile)
		return newChange(ChangeColor, user, user, r.profiles.Get(user).Nickname, c, now), nil
	})
	return change.Color, err
}

// ResetNickname releases user's nickname and restores the default color.
func (r *Registry) ResetNickname(ctx context.Context, user string) error {
	_, err := r.mutate(ctx, OpReset, func(now time.Time) (Change, error) {
		if err := validateUser(user); err != nil {
			return Change{}, err
		}
		if err := r.checkCooldown(user, cooldown.ActionReset, now); err != nil {
			return Change{}, err
		}

		r.nicknames.Remove(user)
		r.profiles.ResetToDefault(user)
		r.cooldowns.Record(user, cooldown.ActionReset, now)
		r.persist(ctx, bothFiles)
		return newChange(ChangeReset, user, user, "", color.Default, now), nil
	})
	return err
}

// LookupRealName returns the user behind a nickname and that nickname's
// color. The ~ marker is added when missing. It fails with NOT_FOUND.
func (r *Registry) LookupRealName(ctx context.Context, nickname string) (RealName, error) {
	decorated := nickname
	if !strings.HasPrefix(decorated, store.NicknamePrefix) {
		decorated = store.Decorate(decorated)
	}

	r.mu.Lock()
	user, ok := r.nicknames.RealName(decorated)
	var c color.Color
	if ok {
		c = r.profiles.ReverseColorLookup(decorated)
	}
	r.mu.Unlock()

	if !ok {
		err := ErrNotFound(decorated)
		r.metrics.recordOperation(OpLookup, err)
		return RealName{}, err
	}
	r.metrics.recordOperation(OpLookup, nil)
	r.logger.DebugContext(ctx, "real name lookup", "nickname", decorated, "user", user)
	return RealName{User: user, Nickname: decorated, Color: c}, nil
}

// Profile returns user's stored display identity, or the default profile.
// Hosts call it when a user connects.
func (r *Registry) Profile(_ context.Context, user string) store.Profile {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profiles.Get(user)
}

// Snapshot returns every user with a profile and their profile, sorted by user.
func (r *Registry) Snapshot() []UserProfile {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := r.profiles.Users()
	out := make([]UserProfile, len(users))
	for i, u := range users {
		out[i] = UserProfile{User: u, Profile: r.profiles.Get(u)}
	}
	return out
}

// UserProfile pairs a user with their profile.
type UserProfile struct {
	User    string
	Profile store.Profile
}

// persist rewrites the selected files. Must be called with mu held.
func (r *Registry) persist(ctx context.Context, files file) {
	for _, f := range []file{nicknameFile, profileFile} {
		if files&f == 0 {
			continue
		}
		if err := r.write(ctx, f); err != nil {
			errutil.LogError(ctx, r.logger, "failed to save registry file", err, "path", r.path(f))
			r.metrics.recordSaveFailure(filepath.Base(r.path(f)))
		}
	}
}

func (r *Registry) write(ctx context.Context, f file) error {
	save := r.profiles.Save
	if f == nicknameFile {
		save = r.nicknames.Save
	}
	path := r.path(f)

	backoff := retry.WithMaxRetries(r.saveRetries, retry.NewConstant(r.saveBackoff))
	//nolint:wrapcheck // store errors already carry code and path
	return retry.Do(ctx, backoff, func(_ context.Context) error {
		if err := store.WriteFile(path, save); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Flush rewrites both files. Hosts call it on shutdown. A read-only
// registry writes nothing.
func (r *Registry) Flush(ctx context.Context) error {
	if r.readOnly {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	return errors.Join(r.write(ctx, nicknameFile), r.write(ctx, profileFile))
}

// Close flushes both files and stops the cooldown sweeper.
func (r *Registry) Close(ctx context.Context) error {
	defer r.cooldowns.Close()
	return r.Flush(ctx)
}
