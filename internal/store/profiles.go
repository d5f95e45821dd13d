// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"github.com/samber/oops"

	"github.com/holomush/holonick/internal/color"
)

// ProfileFile is the file name of the persisted profile table.
const ProfileFile = "playerData.txt"

// Profile is a user's display identity.
type Profile struct {
	// Nickname is decorated ("~Red"); empty means the raw handle is shown.
	Nickname string
	Color    color.Color
}

// DefaultProfile is returned for users without a stored profile.
func DefaultProfile() Profile {
	return Profile{Color: color.Default}
}

// HasNickname reports whether a nickname is set.
func (p Profile) HasNickname() bool {
	return p.Nickname != ""
}

// DisplayName returns the decorated nickname, or user when none is set.
func (p Profile) DisplayName(user string) string {
	if p.HasNickname() {
		return p.Nickname
	}
	return user
}

// ProfileStore holds each user's nickname and color together.
type ProfileStore struct {
	profiles map[string]Profile
	skipped  int
}

// NewProfileStore creates an empty store.
func NewProfileStore() *ProfileStore {
	return &ProfileStore{profiles: make(map[string]Profile)}
}

// LoadProfiles reads user=nickname=color lines. Lines without exactly three
// fields, or with an empty user or color, are skipped. A nickname field
// without the ~ marker (including the literal "null" older files contain)
// is read as unset; an unknown color is read as the default.
func LoadProfiles(r io.Reader) (*ProfileStore, error) {
	s := NewProfileStore()
	skipped, err := scanRecords(r, func(fields []string) bool {
		if len(fields) != 3 || fields[0] == "" || fields[2] == "" {
			return false
		}
		p := DefaultProfile()
		if strings.HasPrefix(fields[1], NicknamePrefix) && len(fields[1]) > len(NicknamePrefix) {
			p.Nickname = fields[1]
		}
		if c, ok := color.Normalize(fields[2]); ok {
			p.Color = c
		}
		s.profiles[fields[0]] = p
		return true
	})
	if err != nil {
		return nil, oops.Code(CodeStorageUnavailable).Wrapf(err, "read profiles")
	}
	s.skipped = skipped
	return s, nil
}

// Skipped returns the number of malformed lines dropped by LoadProfiles.
func (s *ProfileStore) Skipped() int {
	return s.skipped
}

// Len returns the number of stored profiles.
func (s *ProfileStore) Len() int {
	return len(s.profiles)
}

// Get returns user's profile, or DefaultProfile if none is stored.
func (s *ProfileStore) Get(user string) Profile {
	if p, ok := s.profiles[user]; ok {
		return p
	}
	return DefaultProfile()
}

// SetNickname stores the decorated nickname and color together.
func (s *ProfileStore) SetNickname(user, decorated string, c color.Color) {
	s.profiles[user] = Profile{Nickname: decorated, Color: c}
}

// SetColor changes user's color, keeping the current nickname.
func (s *ProfileStore) SetColor(user string, c color.Color) {
	p := s.Get(user)
	p.Color = c
	s.profiles[user] = p
}

// ResetToDefault clears user's nickname and restores the default color.
func (s *ProfileStore) ResetToDefault(user string) {
	s.profiles[user] = DefaultProfile()
}

// ReverseColorLookup returns the color of the profile whose nickname is
// decorated, or the default color if no profile carries it.
func (s *ProfileStore) ReverseColorLookup(decorated string) color.Color {
	if decorated == "" {
		return color.Default
	}
	for _, p := range s.profiles {
		if p.Nickname == decorated {
			return p.Color
		}
	}
	return color.Default
}

// Users returns the users with a stored profile in sorted order.
func (s *ProfileStore) Users() []string {
	users := make([]string, 0, len(s.profiles))
	for u := range s.profiles {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// Save writes every profile as a user=nickname=COLOR line, sorted by user.
func (s *ProfileStore) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, u := range s.Users() {
		p := s.profiles[u]
		if _, err := bw.WriteString(u + fieldSep + p.Nickname + fieldSep + string(p.Color) + "\n"); err != nil {
			return oops.Code(CodeStorageUnavailable).Wrapf(err, "write profiles")
		}
	}
	if err := bw.Flush(); err != nil {
		return oops.Code(CodeStorageUnavailable).Wrapf(err, "write profiles")
	}
	return nil
}
