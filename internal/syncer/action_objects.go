package syncer

import (
	"context"

	"github.com/ObjectiveCharm/bibsync/internal/adapter"
	"github.com/ObjectiveCharm/bibsync/internal/files"
	"github.com/ObjectiveCharm/bibsync/internal/store"
	"github.com/ObjectiveCharm/bibsync/models"
)

// fetchAndStoreObjectsAction downloads full object bodies for a key set
// and stores them. Every fetched body is also written to the file store as
// the last-known-good remote JSON, which is what the revert action
// restores from.
//
// preferRemote controls divergence handling: during initial population the
// remote body always wins; during conflict replay it is false so objects
// carrying unsubmitted local edits are left untouched.
type fetchAndStoreObjectsAction struct {
	api          adapter.Client
	objects      store.ObjectStore
	files        *files.Storage
	library      models.LibraryIdentifier
	kind         models.SyncObjectKind
	keys         []string
	preferRemote bool

	stored []models.ObjectRecord
}

func (a *fetchAndStoreObjectsAction) do(ctx context.Context) error {
	if len(a.keys) == 0 {
		return nil
	}

	records, err := a.api.Objects(ctx, a.library, a.kind, a.keys)
	if err != nil {
		return err
	}

	for _, record := range records {
		if err = a.files.CacheObject(a.library, a.kind, record.Key, record.Data); err != nil {
			return err
		}
	}

	if err = a.objects.StoreObjects(ctx, records, a.preferRemote); err != nil {
		return err
	}

	a.stored = records
	return nil
}

// revertLibraryUpdatesAction discards local edits for a library by
// re-reading the last-known-good remote JSON cached on disk for each dirty
// object and overwriting local state with it. Objects without a cached
// copy cannot be reverted and are reported in failed rather than silently
// skipped.
type revertLibraryUpdatesAction struct {
	objects store.ObjectStore
	files   *files.Storage
	library models.LibraryIdentifier

	reverted []string
	failed   []string
}

func (a *revertLibraryUpdatesAction) do(ctx context.Context) error {
	a.reverted = nil
	a.failed = nil

	for _, kind := range models.SyncKindOrder() {
		dirty, err := a.objects.DirtyObjects(ctx, a.library, kind)
		if err != nil {
			return err
		}

		for _, record := range dirty {
			cached, err := a.files.CachedObject(a.library, kind, record.Key)
			if err != nil {
				a.failed = append(a.failed, record.Key)
				continue
			}

			if err = a.objects.ReplaceObjectData(ctx, a.library, kind, record.Key, cached); err != nil {
				a.failed = append(a.failed, record.Key)
				continue
			}
			a.reverted = append(a.reverted, record.Key)
		}
	}

	return nil
}
