// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ReadFile opens path and hands it to load. A missing file loads as empty.
func ReadFile[T any](path string, load func(io.Reader) (T, error)) (T, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		return load(strings.NewReader(""))
	}
	if err != nil {
		var zero T
		return zero, errStorage("open", path, err)
	}
	defer func() { _ = f.Close() }()

	v, err := load(f)
	if err != nil {
		var zero T
		return zero, errStorage("read", path, err)
	}
	return v, nil
}

// WriteFile replaces path with whatever save writes. The data goes to a
// temporary file in the same directory which is synced and renamed over
// path, so a crash leaves either the old or the new contents.
func WriteFile(path string, save func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errStorage("create", path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := save(tmp); err != nil {
		_ = tmp.Close()
		return errStorage("write", path, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errStorage("sync", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errStorage("close", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errStorage("rename", path, err)
	}
	return nil
}
