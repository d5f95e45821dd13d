// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"github.com/samber/oops"
)

// CodeStorageUnavailable marks errors reading or writing a persisted file.
const CodeStorageUnavailable = "STORAGE_UNAVAILABLE"

// errStorage wraps an I/O failure on path.
func errStorage(op, path string, err error) error {
	return oops.Code(CodeStorageUnavailable).
		With("op", op).
		With("path", path).
		Wrapf(err, "%s %s", op, path)
}
