// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store holds the nickname and profile tables and their line-file
// persistence.
//
// Two files are maintained:
//
//	usedNicknames.txt  user=nickname
//	playerData.txt     user=~nickname=COLOR   (nickname field empty when unset)
//
// Loading is lenient: blank and malformed lines are dropped and counted, and
// only a failure to read the underlying file is reported. Saving always
// rewrites the whole file.
//
// The stores are not safe for concurrent use; callers serialise access.
package store
