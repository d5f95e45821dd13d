// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"bufio"
	"io"
	"strings"
	"unicode"
)

const (
	fieldSep = "="

	// NicknamePrefix marks a decorated nickname.
	NicknamePrefix = "~"

	maxLineLength = 1 << 20
)

// Decorate prepends the nickname marker.
func Decorate(nickname string) string {
	return NicknamePrefix + nickname
}

// Undecorate strips one leading nickname marker, if present.
func Undecorate(decorated string) string {
	return strings.TrimPrefix(decorated, NicknamePrefix)
}

// KeyProblem reports why user cannot be written as the key of a record line,
// or "" when it can. Keys must survive a save and load unchanged.
func KeyProblem(user string) string {
	switch {
	case user == "":
		return "user cannot be empty"
	case strings.Contains(user, fieldSep):
		return "user cannot contain '" + fieldSep + "'"
	case strings.IndexFunc(user, unicode.IsControl) >= 0:
		return "user cannot contain control characters"
	case strings.TrimSpace(user) != user:
		return "user cannot start or end with whitespace"
	}
	return ""
}

// scanRecords calls fn with the fields of every non-blank line of r.
// fn returns false for a malformed record; scanRecords returns how many
// records were rejected.
func scanRecords(r io.Reader, fn func(fields []string) bool) (skipped int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !fn(strings.Split(line, fieldSep)) {
			skipped++
		}
	}
	//nolint:wrapcheck // callers attach path context
	return skipped, scanner.Err()
}
