// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

// Package files implements the local file store consumed by the sync
// engine: attachment bytes and the cached last-known-good remote JSON used
// by the revert action. Files are keyed by (library, key, extension) and
// laid out as <base>/<library>/<key>.<ext>.
package files

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ObjectiveCharm/bibsync/models"
)

// ErrFileNotFound is returned when the requested descriptor has no file.
var ErrFileNotFound = errors.New("file not found")

// Storage is a file store rooted at a base directory.
type Storage struct {
	base string
}

// NewStorage creates the base directory when missing and returns a Storage.
func NewStorage(base string) (*Storage, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, fmt.Errorf("create file store dir: %w", err)
	}
	return &Storage{base: base}, nil
}

// Path returns the absolute path of the descriptor without touching disk.
func (s *Storage) Path(library models.LibraryIdentifier, key, ext string) string {
	name := key
	if ext != "" {
		name = key + "." + ext
	}
	return filepath.Join(s.base, sanitize(library.String()), name)
}

// Exists reports whether the descriptor has a stored file.
func (s *Storage) Exists(library models.LibraryIdentifier, key, ext string) bool {
	_, err := os.Stat(s.Path(library, key, ext))
	return err == nil
}

// Size returns the stored file's size in bytes, or ErrFileNotFound.
func (s *Storage) Size(library models.LibraryIdentifier, key, ext string) (int64, error) {
	info, err := os.Stat(s.Path(library, key, ext))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, ErrFileNotFound
		}
		return 0, fmt.Errorf("stat file: %w", err)
	}
	return info.Size(), nil
}

// Open returns a reader over the stored file. The caller closes it.
func (s *Storage) Open(library models.LibraryIdentifier, key, ext string) (io.ReadCloser, error) {
	f, err := os.Open(s.Path(library, key, ext))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Write stores data under the descriptor, creating parent directories.
func (s *Storage) Write(library models.LibraryIdentifier, key, ext string, data []byte) error {
	path := s.Path(library, key, ext)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create library dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// Remove deletes the stored file. Missing files are not an error.
func (s *Storage) Remove(library models.LibraryIdentifier, key, ext string) error {
	err := os.Remove(s.Path(library, key, ext))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// CacheObject stores the last-known-good remote JSON of one object, the
// copy RevertLibraryUpdates restores from.
func (s *Storage) CacheObject(library models.LibraryIdentifier, kind models.SyncObjectKind, key string, data json.RawMessage) error {
	return s.Write(library, cachedKey(kind, key), "json", data)
}

// CachedObject returns the last-known-good remote JSON of one object, or
// ErrFileNotFound when no copy was ever cached.
func (s *Storage) CachedObject(library models.LibraryIdentifier, kind models.SyncObjectKind, key string) (json.RawMessage, error) {
	f, err := s.Open(library, cachedKey(kind, key), "json")
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read cached object: %w", err)
	}
	return data, nil
}

func cachedKey(kind models.SyncObjectKind, key string) string {
	return string(kind) + "_" + key
}

// sanitize keeps library directory names filesystem-safe ("u/1" → "u_1").
func sanitize(name string) string {
	out := []byte(name)
	for i, c := range out {
		if c == '/' || c == '\\' {
			out[i] = '_'
		}
	}
	return string(out)
}
