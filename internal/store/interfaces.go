// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

// Package store implements the transactional local store the sync engine
// works against. Each request is applied in a short transaction of its own;
// no request holds a transaction open across a network suspension point.
package store

import (
	"context"

	"github.com/ObjectiveCharm/bibsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// VersionStore tracks the last remote version successfully merged, per
// (library, object kind).
type VersionStore interface {
	// Version returns the stored version, 0 when the pair was never synced.
	Version(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) (int, error)

	// SetVersion advances the stored version. Versions are monotonic: a
	// value lower than the stored one returns ErrVersionRegression and
	// leaves the row untouched.
	SetVersion(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, version int) error
}

// ObjectStore holds the local copy of every syncable object together with
// its dirty-tracking bookkeeping.
type ObjectStore interface {
	// Object returns one object or ErrObjectNotFound.
	Object(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, key string) (models.ObjectRecord, error)

	// KeyVersions returns the locally known (key → version) map of a kind.
	KeyVersions(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) (models.KeyVersions, error)

	// StoreObjects upserts downloaded objects. With preferRemote the
	// remote body always wins and dirty flags are cleared; without it,
	// rows carrying local edits are left untouched so a conflict replay
	// cannot clobber them.
	StoreObjects(ctx context.Context, objects []models.ObjectRecord, preferRemote bool) error

	// DirtyObjects returns every object of the kind with a non-empty
	// changed-fields set, excluding locally deleted ones.
	DirtyObjects(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) ([]models.ObjectRecord, error)

	// LocallyDeleted returns keys flagged deleted locally but not yet
	// submitted to the server.
	LocallyDeleted(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) ([]string, error)

	// MarkSynced clears dirty flags and sets the version for the given
	// keys, after the server acknowledged them.
	MarkSynced(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, keys []string, version int) error

	// MarkAllSynced clears the dirty flags of every object in a library
	// without contacting the server (conflict resolved in remote's favor).
	MarkAllSynced(ctx context.Context, library models.LibraryIdentifier) error

	// ReplaceObjectData overwrites one object's body with data and clears
	// its dirty flags; used by the revert action.
	ReplaceObjectData(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, key string, data []byte) error

	// DeleteObjects removes local rows for objects deleted remotely.
	DeleteObjects(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, keys []string) error
}

// GroupStore caches group library metadata between syncs.
type GroupStore interface {
	Groups(ctx context.Context) ([]models.Group, error)
	StoreGroup(ctx context.Context, group models.Group) error

	// MarkGroupForResync flags the group for an unconditional metadata
	// refresh on the next sync pass.
	MarkGroupForResync(ctx context.Context, groupID int64) error
}

// UploadStore queues attachments whose bytes still need to reach remote
// storage.
type UploadStore interface {
	PendingUploads(ctx context.Context, library models.LibraryIdentifier) ([]models.AttachmentUpload, error)
	QueueUpload(ctx context.Context, upload models.AttachmentUpload) error

	// MarkUploaded removes the queue entry and clears the owning item's
	// attachment dirty flag; when the server returned a new item version
	// it is recorded as well.
	MarkUploaded(ctx context.Context, library models.LibraryIdentifier, itemKey string, version int) error
}

// Storages groups all local repositories into a single value that can be
// passed to the sync engine.
type Storages struct {
	Versions VersionStore
	Objects  ObjectStore
	Groups   GroupStore
	Uploads  UploadStore
}
