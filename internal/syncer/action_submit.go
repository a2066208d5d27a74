package syncer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/ObjectiveCharm/bibsync/internal/adapter"
	"github.com/ObjectiveCharm/bibsync/internal/store"
	"github.com/ObjectiveCharm/bibsync/models"
)

// submitUpdateAction PATCHes a batch of locally changed objects with the
// known since version.
//
// On success the stored library version advances and only keys the server
// confirmed successful or unchanged are marked synced; failed keys keep
// their dirty flags so a later full sync retries them instead of silently
// dropping the edits. On a stale since version the precondition error
// passes through untouched for the conflict resolver; local state is not
// mutated.
type submitUpdateAction struct {
	api      adapter.Client
	objects  store.ObjectStore
	versions store.VersionStore
	library  models.LibraryIdentifier
	kind     models.SyncObjectKind
	since    int
	batch    []models.ObjectRecord

	response models.UpdatesResponse
}

func (a *submitUpdateAction) do(ctx context.Context) error {
	payloads := make([]json.RawMessage, 0, len(a.batch))
	for _, record := range a.batch {
		payloads = append(payloads, record.Data)
	}

	response, err := a.api.SubmitUpdates(ctx, a.library, a.kind, a.since, payloads)
	if err != nil {
		return err
	}

	// The settings endpoint acknowledges with a bare version header; treat
	// the whole attempted batch as successful then.
	if a.kind == models.SyncObjectSettings && len(response.Successful) == 0 && len(response.Failed) == 0 {
		for _, record := range a.batch {
			response.Successful = append(response.Successful, record.Key)
		}
	}

	if response.NewVersion > 0 {
		if err = a.versions.SetVersion(ctx, a.library, a.kind, response.NewVersion); err != nil {
			return err
		}
	}

	if err = a.objects.MarkSynced(ctx, a.library, a.kind, response.Acknowledged(), response.NewVersion); err != nil {
		return err
	}

	a.response = response
	return nil
}

// performDeletionsAction applies remote-reported deletions to the local
// store. Objects still carrying local edits are not deleted; their keys
// are returned in conflicts for the caller to retry or surface.
type performDeletionsAction struct {
	objects store.ObjectStore
	library models.LibraryIdentifier
	kind    models.SyncObjectKind
	keys    []string

	conflicts []string
}

func (a *performDeletionsAction) do(ctx context.Context) error {
	a.conflicts = nil

	deletable := make([]string, 0, len(a.keys))
	for _, key := range a.keys {
		record, err := a.objects.Object(ctx, a.library, a.kind, key)
		if errors.Is(err, store.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		if !record.ChangedFields.Empty() {
			a.conflicts = append(a.conflicts, key)
			continue
		}
		deletable = append(deletable, key)
	}

	return a.objects.DeleteObjects(ctx, a.library, a.kind, deletable)
}

// submitDeletionsAction pushes locally deleted keys to the server with the
// known since version, then removes the local rows and advances the stored
// version.
type submitDeletionsAction struct {
	api      adapter.Client
	objects  store.ObjectStore
	versions store.VersionStore
	library  models.LibraryIdentifier
	kind     models.SyncObjectKind
	since    int
	keys     []string

	newVersion int
}

func (a *submitDeletionsAction) do(ctx context.Context) error {
	if len(a.keys) == 0 {
		return nil
	}

	newVersion, err := a.api.SubmitDeletions(ctx, a.library, a.kind, a.since, a.keys)
	if err != nil {
		return err
	}

	if err = a.objects.DeleteObjects(ctx, a.library, a.kind, a.keys); err != nil {
		return err
	}

	if newVersion > 0 {
		if err = a.versions.SetVersion(ctx, a.library, a.kind, newVersion); err != nil {
			return err
		}
	}

	a.newVersion = newVersion
	return nil
}
