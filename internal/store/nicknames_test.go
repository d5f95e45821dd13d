// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/holonick/pkg/errutil"
)

func TestLoadNicknames(t *testing.T) {
	t.Run("parses bindings and builds the reverse index", func(t *testing.T) {
		s, err := LoadNicknames(strings.NewReader("alice=Red\nbob=Blue\n"))
		require.NoError(t, err)

		assert.Equal(t, 2, s.Len())
		nick, ok := s.Nickname("alice")
		assert.True(t, ok)
		assert.Equal(t, "Red", nick)

		user, ok := s.RealName("~Blue")
		assert.True(t, ok)
		assert.Equal(t, "bob", user)
	})

	t.Run("skips blank and malformed lines", func(t *testing.T) {
		input := strings.Join([]string{
			"",
			"alice=Red",
			"   ",
			"no-separator",
			"too=many=fields",
			"=Orphan",
			"carol=",
			"dave=Green",
		}, "\n")

		s, err := LoadNicknames(strings.NewReader(input))
		require.NoError(t, err)

		assert.Equal(t, []string{"alice", "dave"}, s.Users())
		assert.Equal(t, 4, s.Skipped())
	})

	t.Run("later line for the same user replaces the earlier one", func(t *testing.T) {
		s, err := LoadNicknames(strings.NewReader("alice=Red\nalice=Blue\n"))
		require.NoError(t, err)

		assert.False(t, s.IsNicknameTaken("Red"))
		assert.True(t, s.IsNicknameTaken("Blue"))
	})

	t.Run("duplicate nickname keeps the first owner", func(t *testing.T) {
		s, err := LoadNicknames(strings.NewReader("alice=Red\nbob=Red\n"))
		require.NoError(t, err)

		owner, ok := s.Owner("Red")
		require.True(t, ok)
		assert.Equal(t, "alice", owner)
		_, ok = s.Nickname("bob")
		assert.False(t, ok)
		assert.Equal(t, 1, s.Skipped())
	})

	t.Run("read failure is a storage error", func(t *testing.T) {
		_, err := LoadNicknames(failingReader{})
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, CodeStorageUnavailable)
	})
}

func TestKeyProblem(t *testing.T) {
	for _, ok := range []string{"alice", "Mary Sue", "x_1"} {
		assert.Empty(t, KeyProblem(ok), ok)
	}
	for _, bad := range []string{"", "a=b", " alice", "alice\t", "eve\nmallory", "bell\a"} {
		assert.NotEmpty(t, KeyProblem(bad), "%q", bad)
	}
}

func TestNicknameStore_Assign(t *testing.T) {
	t.Run("releases the previous nickname of the same user", func(t *testing.T) {
		s := NewNicknameStore()
		s.Assign("alice", "Red")
		s.Assign("alice", "Blue")

		assert.False(t, s.IsNicknameTaken("Red"))
		_, ok := s.RealName("~Red")
		assert.False(t, ok)
		assert.True(t, s.IsNicknameTaken("Blue"))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("reassigning the same nickname is stable", func(t *testing.T) {
		s := NewNicknameStore()
		s.Assign("alice", "Red")
		s.Assign("alice", "Red")

		owner, ok := s.Owner("Red")
		require.True(t, ok)
		assert.Equal(t, "alice", owner)
	})
}

func TestNicknameStore_Remove(t *testing.T) {
	s := NewNicknameStore()
	s.Assign("alice", "Red")

	s.Remove("alice")
	s.Remove("nobody")

	assert.Equal(t, 0, s.Len())
	assert.False(t, s.IsNicknameTaken("Red"))
}

func TestNicknameStore_SaveRoundTrip(t *testing.T) {
	s := NewNicknameStore()
	s.Assign("bob", "Blue")
	s.Assign("alice", "Red")
	s.Assign("carol", "Gold")
	s.Remove("carol")

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf))
	assert.Equal(t, "alice=Red\nbob=Blue\n", buf.String())

	loaded, err := LoadNicknames(&buf)
	require.NoError(t, err)
	assert.Equal(t, s.byUser, loaded.byUser)
	assert.Equal(t, s.byNickname, loaded.byNickname)
}

func TestNicknameStore_SaveWriteFailure(t *testing.T) {
	s := NewNicknameStore()
	s.Assign("alice", "Red")

	err := s.Save(failingWriter{})
	errutil.AssertErrorCode(t, err, CodeStorageUnavailable)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
