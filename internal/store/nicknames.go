// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"bufio"
	"io"
	"sort"

	"github.com/samber/oops"
)

// NicknameFile is the file name of the persisted nickname table.
const NicknameFile = "usedNicknames.txt"

// NicknameStore binds users to undecorated nicknames. A user holds at most
// one nickname; the reverse index maps each decorated nickname to its owner
// and is rebuilt from the forward table on every change.
type NicknameStore struct {
	byUser     map[string]string
	byNickname map[string]string // decorated nickname -> user
	skipped    int
}

// NewNicknameStore creates an empty store.
func NewNicknameStore() *NicknameStore {
	return &NicknameStore{
		byUser:     make(map[string]string),
		byNickname: make(map[string]string),
	}
}

// LoadNicknames reads user=nickname lines. Lines that do not split into
// exactly two non-empty fields are skipped, as are lines claiming a nickname
// already bound to an earlier user. Only read failures are returned.
func LoadNicknames(r io.Reader) (*NicknameStore, error) {
	s := NewNicknameStore()
	skipped, err := scanRecords(r, func(fields []string) bool {
		if len(fields) != 2 || fields[0] == "" || fields[1] == "" {
			return false
		}
		if owner, ok := s.Owner(fields[1]); ok && owner != fields[0] {
			return false
		}
		s.Assign(fields[0], fields[1])
		return true
	})
	if err != nil {
		return nil, oops.Code(CodeStorageUnavailable).Wrapf(err, "read nicknames")
	}
	s.skipped = skipped
	return s, nil
}

// Skipped returns the number of malformed lines dropped by LoadNicknames.
func (s *NicknameStore) Skipped() int {
	return s.skipped
}

// Len returns the number of bound users.
func (s *NicknameStore) Len() int {
	return len(s.byUser)
}

// Nickname returns the undecorated nickname bound to user.
func (s *NicknameStore) Nickname(user string) (string, bool) {
	n, ok := s.byUser[user]
	return n, ok
}

// IsNicknameTaken reports whether any user holds nickname.
func (s *NicknameStore) IsNicknameTaken(nickname string) bool {
	_, ok := s.byNickname[Decorate(nickname)]
	return ok
}

// Owner returns the user holding the undecorated nickname.
func (s *NicknameStore) Owner(nickname string) (string, bool) {
	u, ok := s.byNickname[Decorate(nickname)]
	return u, ok
}

// RealName returns the user holding the decorated nickname.
func (s *NicknameStore) RealName(decorated string) (string, bool) {
	u, ok := s.byNickname[decorated]
	return u, ok
}

// Assign binds nickname to user, releasing the user's previous nickname
// first. It does not check whether another user already holds nickname.
func (s *NicknameStore) Assign(user, nickname string) {
	s.Remove(user)
	s.byUser[user] = nickname
	s.byNickname[Decorate(nickname)] = user
}

// Remove releases user's nickname, if any.
func (s *NicknameStore) Remove(user string) {
	old, ok := s.byUser[user]
	if !ok {
		return
	}
	delete(s.byUser, user)
	if s.byNickname[Decorate(old)] == user {
		delete(s.byNickname, Decorate(old))
	}
}

// Users returns the bound users in sorted order.
func (s *NicknameStore) Users() []string {
	users := make([]string, 0, len(s.byUser))
	for u := range s.byUser {
		users = append(users, u)
	}
	sort.Strings(users)
	return users
}

// Save writes every binding as a user=nickname line, sorted by user.
func (s *NicknameStore) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, u := range s.Users() {
		if _, err := bw.WriteString(u + fieldSep + s.byUser[u] + "\n"); err != nil {
			return oops.Code(CodeStorageUnavailable).Wrapf(err, "write nicknames")
		}
	}
	if err := bw.Flush(); err != nil {
		return oops.Code(CodeStorageUnavailable).Wrapf(err, "write nicknames")
	}
	return nil
}
