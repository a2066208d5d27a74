// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

// Package adapter provides the transport layer for communicating with the
// remote bibliographic API.
//
// The primary abstraction is [Client], which decouples the sync engine from
// the wire protocol. The package ships an HTTP implementation built on
// resty ([NewHTTPClient]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrPreconditionFailed] for 412, [ErrUnauthorized]
// for 401).
package adapter

import (
	"context"
	"encoding/json"
	"io"

	"github.com/ObjectiveCharm/bibsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/api_client_mock.go -package=mock

// Client defines transport-agnostic communication with the remote API.
// Implementations are responsible for serialisation, API-key header
// management, optimistic-concurrency headers, and mapping transport-level
// errors to the sentinel values defined in this package.
//
// Every call performs exactly one request and no internal retries; retry
// policy belongs to the sync controller.
type Client interface {
	// GroupVersions returns the metadata version of every group library
	// the user belongs to, keyed by group id.
	GroupVersions(ctx context.Context, userID int64) (map[int64]int, error)

	// Group fetches the metadata of one group.
	Group(ctx context.Context, groupID int64) (models.Group, error)

	// Versions returns the (key → version) map for one object kind,
	// restricted to objects changed after since when since > 0, together
	// with the library version reported by the server.
	Versions(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, since int) (models.KeyVersions, int, error)

	// Objects downloads full object bodies for the given keys. The engine
	// batches keys; implementations must not re-chunk them.
	Objects(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, keys []string) ([]models.ObjectRecord, error)

	// Deletions reports which objects were deleted remotely after since.
	Deletions(ctx context.Context, library models.LibraryIdentifier, since int) (models.Deletions, error)

	// SubmitUpdates writes a batch of locally changed objects with the
	// known since version. A stale since yields ErrPreconditionFailed
	// (wrapped); per-key failures inside a 2xx response are reported in
	// the returned UpdatesResponse, not as an error.
	SubmitUpdates(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, since int, objects []json.RawMessage) (models.UpdatesResponse, error)

	// SubmitDeletions deletes the given keys remotely with the known since
	// version and returns the new library version.
	SubmitDeletions(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, since int, keys []string) (int, error)

	// AuthorizeUpload begins the two-phase attachment upload protocol.
	// When the content already exists remotely (matched by md5) the
	// returned authorization has Exists set and no bytes need to move.
	AuthorizeUpload(ctx context.Context, upload models.AttachmentUpload) (models.UploadAuthorization, error)

	// UploadFile transfers the attachment bytes to the storage endpoint
	// returned by AuthorizeUpload, as a multipart POST with the
	// authorization params as form fields. progress, when non-nil, is
	// called with the running byte count.
	UploadFile(ctx context.Context, auth models.UploadAuthorization, file io.Reader, size int64, progress func(sent, total int64)) error

	// RegisterUpload finalizes an authorized upload server-side and
	// returns the new item version when the server reports one (0
	// otherwise).
	RegisterUpload(ctx context.Context, upload models.AttachmentUpload, uploadKey string) (int, error)
}
