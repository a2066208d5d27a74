// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

package syncer

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ObjectiveCharm/bibsync/internal/adapter"
	"github.com/ObjectiveCharm/bibsync/internal/files"
	"github.com/ObjectiveCharm/bibsync/internal/logger"
	"github.com/ObjectiveCharm/bibsync/internal/mock"
	"github.com/ObjectiveCharm/bibsync/internal/store"
	"github.com/ObjectiveCharm/bibsync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeStores is an in-memory implementation of every store interface.
// The controller drives all four through one sync run, so a shared fake is
// simpler and closer to real transactional behavior than per-method mocks.
type fakeStores struct {
	mu       sync.Mutex
	versions map[string]int
	objects  map[string]models.ObjectRecord
	groups   map[int64]models.Group
	uploads  map[string]models.AttachmentUpload
}

var (
	_ store.VersionStore = (*fakeStores)(nil)
	_ store.ObjectStore  = (*fakeStores)(nil)
	_ store.GroupStore   = (*fakeStores)(nil)
	_ store.UploadStore  = (*fakeStores)(nil)
)

func newFakeStores() *fakeStores {
	return &fakeStores{
		versions: make(map[string]int),
		objects:  make(map[string]models.ObjectRecord),
		groups:   make(map[int64]models.Group),
		uploads:  make(map[string]models.AttachmentUpload),
	}
}

func (f *fakeStores) storages() *store.Storages {
	return &store.Storages{Versions: f, Objects: f, Groups: f, Uploads: f}
}

func versionKey(library models.LibraryIdentifier, kind models.SyncObjectKind) string {
	return library.String() + "|" + string(kind)
}

func objectKey(library models.LibraryIdentifier, kind models.SyncObjectKind, key string) string {
	return library.String() + "|" + string(kind) + "|" + key
}

func (f *fakeStores) Version(_ context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.versions[versionKey(library, kind)], nil
}

func (f *fakeStores) SetVersion(_ context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, version int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if version < f.versions[versionKey(library, kind)] {
		return store.ErrVersionRegression
	}
	f.versions[versionKey(library, kind)] = version
	return nil
}

func (f *fakeStores) Object(_ context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, key string) (models.ObjectRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.objects[objectKey(library, kind, key)]
	if !ok {
		return models.ObjectRecord{}, store.ErrObjectNotFound
	}
	return record, nil
}

func (f *fakeStores) KeyVersions(_ context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) (models.KeyVersions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	versions := make(models.KeyVersions)
	for _, record := range f.objects {
		if record.Library == library && record.Kind == kind {
			versions[record.Key] = record.Version
		}
	}
	return versions, nil
}

func (f *fakeStores) StoreObjects(_ context.Context, objects []models.ObjectRecord, preferRemote bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range objects {
		k := objectKey(record.Library, record.Kind, record.Key)
		if existing, ok := f.objects[k]; ok && !existing.ChangedFields.Empty() && !preferRemote {
			continue
		}
		record.ChangedFields = nil
		record.State = models.ObjectSynced
		f.objects[k] = record
	}
	return nil
}

func (f *fakeStores) DirtyObjects(_ context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) ([]models.ObjectRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var dirty []models.ObjectRecord
	for _, record := range f.objects {
		if record.Library == library && record.Kind == kind && !record.Deleted && !record.ChangedFields.Empty() {
			dirty = append(dirty, record)
		}
	}
	return dirty, nil
}

func (f *fakeStores) LocallyDeleted(_ context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, record := range f.objects {
		if record.Library == library && record.Kind == kind && record.Deleted {
			keys = append(keys, record.Key)
		}
	}
	return keys, nil
}

func (f *fakeStores) MarkSynced(_ context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, keys []string, version int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		k := objectKey(library, kind, key)
		record, ok := f.objects[k]
		if !ok {
			continue
		}
		record.ChangedFields = nil
		record.State = models.ObjectSynced
		if version > 0 {
			record.Version = version
		}
		f.objects[k] = record
	}
	return nil
}

func (f *fakeStores) MarkAllSynced(_ context.Context, library models.LibraryIdentifier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, record := range f.objects {
		if record.Library == library {
			record.ChangedFields = nil
			record.State = models.ObjectSynced
			f.objects[k] = record
		}
	}
	return nil
}

func (f *fakeStores) ReplaceObjectData(_ context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := objectKey(library, kind, key)
	record, ok := f.objects[k]
	if !ok {
		return store.ErrObjectNotFound
	}
	record.Data = json.RawMessage(data)
	record.ChangedFields = nil
	record.State = models.ObjectSynced
	f.objects[k] = record
	return nil
}

func (f *fakeStores) DeleteObjects(_ context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.objects, objectKey(library, kind, key))
	}
	return nil
}

func (f *fakeStores) Groups(_ context.Context) ([]models.Group, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var groups []models.Group
	for _, group := range f.groups {
		groups = append(groups, group)
	}
	return groups, nil
}

func (f *fakeStores) StoreGroup(_ context.Context, group models.Group) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	group.NeedsResync = false
	f.groups[group.ID] = group
	return nil
}

func (f *fakeStores) MarkGroupForResync(_ context.Context, groupID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	group := f.groups[groupID]
	group.ID = groupID
	group.NeedsResync = true
	f.groups[groupID] = group
	return nil
}

func (f *fakeStores) PendingUploads(_ context.Context, library models.LibraryIdentifier) ([]models.AttachmentUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var pending []models.AttachmentUpload
	for _, upload := range f.uploads {
		if upload.Library == library {
			pending = append(pending, upload)
		}
	}
	return pending, nil
}

func (f *fakeStores) QueueUpload(_ context.Context, upload models.AttachmentUpload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[objectKey(upload.Library, models.SyncObjectItems, upload.ItemKey)] = upload
	return nil
}

func (f *fakeStores) MarkUploaded(_ context.Context, library models.LibraryIdentifier, itemKey string, version int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.uploads, objectKey(library, models.SyncObjectItems, itemKey))
	k := objectKey(library, models.SyncObjectItems, itemKey)
	if record, ok := f.objects[k]; ok {
		record.ChangedFields = nil
		if version > 0 {
			record.Version = version
		}
		f.objects[k] = record
	}
	return nil
}

func (f *fakeStores) seedObject(record models.ObjectRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectKey(record.Library, record.Kind, record.Key)] = record
}

func (f *fakeStores) seedVersion(library models.LibraryIdentifier, kind models.SyncObjectKind, version int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions[versionKey(library, kind)] = version
}

func newTestController(t *testing.T, ctrl *gomock.Controller) (*Controller, *mock.MockClient, *fakeStores, *files.Storage) {
	t.Helper()

	api := mock.NewMockClient(ctrl)
	stores := newFakeStores()
	fileStore, err := files.NewStorage(t.TempDir())
	require.NoError(t, err)

	c := NewController(api, stores.storages(), fileStore, nil, Config{
		UserID:                 42,
		RetryIntervals:         []time.Duration{time.Millisecond, time.Millisecond},
		ConflictRetryIntervals: []time.Duration{time.Millisecond, time.Millisecond},
		BatchSize:              50,
		MaxParallelLibraries:   2,
	}, logger.Nop())
	return c, api, stores, fileStore
}

// collectStates records every coarse state transition a run emits.
func collectStates(c *Controller) *[]State {
	states := &[]State{}
	var mu sync.Mutex
	c.OnProgress(func(p Progress) {
		if p.Phase == "" {
			mu.Lock()
			*states = append(*states, p.State)
			mu.Unlock()
		}
	})
	return states
}

func TestController_FullSync_InitialDownloadAndIdempotentRerun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, api, stores, _ := newTestController(t, ctrl)
	ctx := context.Background()
	library := models.UserLibrary(42)

	api.EXPECT().GroupVersions(gomock.Any(), int64(42)).Return(map[int64]int{}, nil).Times(2)
	api.EXPECT().Versions(gomock.Any(), library, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.LibraryIdentifier, kind models.SyncObjectKind, since int) (models.KeyVersions, int, error) {
			if kind == models.SyncObjectCollections && since == 0 {
				return models.KeyVersions{"C1": 7}, 7, nil
			}
			return models.KeyVersions{}, 7, nil
		}).AnyTimes()
	api.EXPECT().Objects(gomock.Any(), library, models.SyncObjectCollections, []string{"C1"}).
		Return([]models.ObjectRecord{{
			Library: library,
			Kind:    models.SyncObjectCollections,
			Key:     "C1",
			Version: 7,
			Data:    json.RawMessage(`{"name":"Thesis"}`),
		}}, nil)
	api.EXPECT().Deletions(gomock.Any(), library, gomock.Any()).Return(models.Deletions{}, nil).AnyTimes()

	states := collectStates(c)

	report := c.Sync(ctx, TypeFull, nil)
	require.True(t, report.OK())
	require.NoError(t, report.AbortError)
	assert.Equal(t, 1, report.Libraries)
	assert.Zero(t, report.Failures.Total())
	assert.Contains(t, *states, StateFinished)

	record, err := stores.Object(ctx, library, models.SyncObjectCollections, "C1")
	require.NoError(t, err)
	assert.Equal(t, 7, record.Version)
	assert.True(t, record.ChangedFields.Empty())

	version, err := stores.Version(ctx, library, models.SyncObjectCollections)
	require.NoError(t, err)
	assert.Equal(t, 7, version)

	// A second run with an unchanged server must be a no-op: no object
	// refetch (the Objects expectation above allows exactly one call), no
	// failures, no version movement.
	report = c.Sync(ctx, TypeFull, nil)
	require.True(t, report.OK())
	assert.Zero(t, report.Failures.Total())

	version, err = stores.Version(ctx, library, models.SyncObjectCollections)
	require.NoError(t, err)
	assert.Equal(t, 7, version)
}

func TestController_WriteOnlySync_SubmitsDirtyObjects(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, api, stores, _ := newTestController(t, ctrl)
	ctx := context.Background()
	library := models.UserLibrary(42)

	stores.seedVersion(library, models.SyncObjectItems, 5)
	stores.seedObject(models.ObjectRecord{
		Library:       library,
		Kind:          models.SyncObjectItems,
		Key:           "K1",
		Version:       5,
		Data:          json.RawMessage(`{"title":"edited"}`),
		ChangedFields: models.ChangedFields{"title"},
		State:         models.ObjectDirty,
	})

	api.EXPECT().SubmitUpdates(gomock.Any(), library, models.SyncObjectItems, 5, gomock.Len(1)).
		Return(models.UpdatesResponse{Successful: []string{"K1"}, NewVersion: 6}, nil)

	report := c.Sync(ctx, TypeWriteOnly, []models.LibraryIdentifier{library})
	require.True(t, report.OK())
	assert.Zero(t, report.Failures.Total())

	record, err := stores.Object(ctx, library, models.SyncObjectItems, "K1")
	require.NoError(t, err)
	assert.True(t, record.ChangedFields.Empty())
	assert.Equal(t, 6, record.Version)

	version, err := stores.Version(ctx, library, models.SyncObjectItems)
	require.NoError(t, err)
	assert.Equal(t, 6, version)
}

func TestController_WriteOnlySync_SubmitsLocalDeletions(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, api, stores, _ := newTestController(t, ctrl)
	ctx := context.Background()
	library := models.UserLibrary(42)

	stores.seedVersion(library, models.SyncObjectItems, 5)
	stores.seedObject(models.ObjectRecord{
		Library: library,
		Kind:    models.SyncObjectItems,
		Key:     "K2",
		Version: 4,
		Deleted: true,
	})

	api.EXPECT().SubmitDeletions(gomock.Any(), library, models.SyncObjectItems, 5, []string{"K2"}).
		Return(6, nil)

	report := c.Sync(ctx, TypeWriteOnly, []models.LibraryIdentifier{library})
	require.True(t, report.OK())

	_, err := stores.Object(ctx, library, models.SyncObjectItems, "K2")
	assert.ErrorIs(t, err, store.ErrObjectNotFound)

	version, err := stores.Version(ctx, library, models.SyncObjectItems)
	require.NoError(t, err)
	assert.Equal(t, 6, version)
}

func TestController_ConflictResolvedByReplay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, api, stores, _ := newTestController(t, ctrl)
	ctx := context.Background()
	library := models.UserLibrary(42)
	localData := json.RawMessage(`{"title":"local edit"}`)

	stores.seedVersion(library, models.SyncObjectItems, 5)
	stores.seedObject(models.ObjectRecord{
		Library:       library,
		Kind:          models.SyncObjectItems,
		Key:           "K1",
		Version:       5,
		Data:          localData,
		ChangedFields: models.ChangedFields{"title"},
		State:         models.ObjectDirty,
	})

	gomock.InOrder(
		// First submit is rejected: someone else advanced the library.
		api.EXPECT().SubmitUpdates(gomock.Any(), library, models.SyncObjectItems, 5, gomock.Any()).
			Return(models.UpdatesResponse{}, adapter.ErrPreconditionFailed),
		// The resolver refreshes the kind; the dirty row must survive the
		// refresh so the local edit can win on replay.
		api.EXPECT().Versions(gomock.Any(), library, models.SyncObjectItems, 5).
			Return(models.KeyVersions{"K1": 9}, 9, nil),
		api.EXPECT().Objects(gomock.Any(), library, models.SyncObjectItems, []string{"K1"}).
			Return([]models.ObjectRecord{{
				Library: library,
				Kind:    models.SyncObjectItems,
				Key:     "K1",
				Version: 9,
				Data:    json.RawMessage(`{"title":"remote edit"}`),
			}}, nil),
		// Replay with the fresh since version succeeds.
		api.EXPECT().SubmitUpdates(gomock.Any(), library, models.SyncObjectItems, 9, gomock.Any()).
			Return(models.UpdatesResponse{Successful: []string{"K1"}, NewVersion: 10}, nil),
	)

	report := c.Sync(ctx, TypeWriteOnly, []models.LibraryIdentifier{library})
	require.True(t, report.OK())
	assert.Zero(t, report.Failures.Total())

	record, err := stores.Object(ctx, library, models.SyncObjectItems, "K1")
	require.NoError(t, err)
	assert.True(t, record.ChangedFields.Empty())
	assert.JSONEq(t, string(localData), string(record.Data), "local edit must win the conflict")

	version, err := stores.Version(ctx, library, models.SyncObjectItems)
	require.NoError(t, err)
	assert.Equal(t, 10, version)
}

func TestController_ConflictExhaustionRevertsLocalEdits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, api, stores, fileStore := newTestController(t, ctrl)
	ctx := context.Background()
	library := models.UserLibrary(42)
	remoteData := json.RawMessage(`{"title":"remote"}`)

	stores.seedVersion(library, models.SyncObjectItems, 5)
	stores.seedObject(models.ObjectRecord{
		Library:       library,
		Kind:          models.SyncObjectItems,
		Key:           "K1",
		Version:       5,
		Data:          json.RawMessage(`{"title":"doomed local edit"}`),
		ChangedFields: models.ChangedFields{"title"},
		State:         models.ObjectDirty,
	})
	require.NoError(t, fileStore.CacheObject(library, models.SyncObjectItems, "K1", remoteData))

	api.EXPECT().SubmitUpdates(gomock.Any(), library, models.SyncObjectItems, gomock.Any(), gomock.Any()).
		Return(models.UpdatesResponse{}, adapter.ErrPreconditionFailed).AnyTimes()
	api.EXPECT().Versions(gomock.Any(), library, models.SyncObjectItems, gomock.Any()).
		Return(models.KeyVersions{}, 9, nil).AnyTimes()

	report := c.Sync(ctx, TypeWriteOnly, []models.LibraryIdentifier{library})
	require.True(t, report.OK())
	assert.Zero(t, report.Failures.Total())

	record, err := stores.Object(ctx, library, models.SyncObjectItems, "K1")
	require.NoError(t, err)
	assert.True(t, record.ChangedFields.Empty())
	assert.JSONEq(t, string(remoteData), string(record.Data), "exhausted conflict must restore the cached remote state")
}

func TestController_RevertWithoutCachedCopyIsReported(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, api, stores, _ := newTestController(t, ctrl)
	ctx := context.Background()
	library := models.UserLibrary(42)

	stores.seedVersion(library, models.SyncObjectItems, 5)
	stores.seedObject(models.ObjectRecord{
		Library:       library,
		Kind:          models.SyncObjectItems,
		Key:           "K1",
		Version:       5,
		Data:          json.RawMessage(`{"title":"local"}`),
		ChangedFields: models.ChangedFields{"title"},
		State:         models.ObjectDirty,
	})

	api.EXPECT().SubmitUpdates(gomock.Any(), library, models.SyncObjectItems, gomock.Any(), gomock.Any()).
		Return(models.UpdatesResponse{}, adapter.ErrPreconditionFailed).AnyTimes()
	api.EXPECT().Versions(gomock.Any(), library, models.SyncObjectItems, gomock.Any()).
		Return(models.KeyVersions{}, 9, nil).AnyTimes()

	report := c.Sync(ctx, TypeWriteOnly, []models.LibraryIdentifier{library})
	require.True(t, report.OK())

	require.Len(t, report.Failures[models.SyncObjectItems], 1)
	assert.Equal(t, "K1", report.Failures[models.SyncObjectItems][0].Key)
}

func TestController_FatalErrorAbortsRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, api, stores, _ := newTestController(t, ctrl)
	ctx := context.Background()
	library := models.UserLibrary(42)

	stores.seedObject(models.ObjectRecord{
		Library:       library,
		Kind:          models.SyncObjectItems,
		Key:           "K1",
		Data:          json.RawMessage(`{}`),
		ChangedFields: models.ChangedFields{"title"},
	})

	api.EXPECT().SubmitUpdates(gomock.Any(), library, models.SyncObjectItems, gomock.Any(), gomock.Any()).
		Return(models.UpdatesResponse{}, adapter.ErrUnauthorized)

	states := collectStates(c)

	report := c.Sync(ctx, TypeWriteOnly, []models.LibraryIdentifier{library})
	require.False(t, report.OK())
	assert.ErrorIs(t, report.AbortError, adapter.ErrUnauthorized)
	assert.Contains(t, *states, StateAborted)
}

func TestController_TransientExhaustionIsDemotedToFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, api, _, _ := newTestController(t, ctrl)
	ctx := context.Background()
	library := models.UserLibrary(42)

	api.EXPECT().GroupVersions(gomock.Any(), int64(42)).Return(map[int64]int{}, nil)
	api.EXPECT().Versions(gomock.Any(), library, gomock.Any(), gomock.Any()).
		Return(models.KeyVersions(nil), 0, adapter.ErrServerUnavailable).AnyTimes()

	report := c.Sync(ctx, TypeFull, nil)
	require.True(t, report.OK(), "an unreachable server must not abort the run")
	assert.NoError(t, report.AbortError)

	// One demoted failure per object kind.
	assert.Equal(t, len(models.SyncKindOrder()), report.Failures.Total())
}

func TestController_GroupFetchFailureDegradesGracefully(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, api, stores, _ := newTestController(t, ctrl)
	ctx := context.Background()
	library := models.UserLibrary(42)

	api.EXPECT().GroupVersions(gomock.Any(), int64(42)).Return(map[int64]int{7: 3}, nil)
	// Initial attempt plus two scheduled retries.
	api.EXPECT().Group(gomock.Any(), int64(7)).
		Return(models.Group{}, adapter.ErrServerUnavailable).Times(3)
	api.EXPECT().Versions(gomock.Any(), library, gomock.Any(), gomock.Any()).
		Return(models.KeyVersions{}, 0, nil).AnyTimes()

	report := c.Sync(ctx, TypeFull, nil)
	require.True(t, report.OK())
	assert.Equal(t, 1, report.Libraries, "the broken group must be skipped, not sync-blocking")
	assert.Equal(t, 1, report.Failures.Total())

	groups, err := stores.Groups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.True(t, groups[0].NeedsResync)
}

func TestController_GroupLibrariesAreSynced(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, api, stores, _ := newTestController(t, ctrl)
	ctx := context.Background()

	api.EXPECT().GroupVersions(gomock.Any(), int64(42)).Return(map[int64]int{7: 3}, nil)
	api.EXPECT().Group(gomock.Any(), int64(7)).
		Return(models.Group{ID: 7, Name: "lab shared", Version: 3}, nil)
	api.EXPECT().Versions(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(models.KeyVersions{}, 0, nil).AnyTimes()

	report := c.Sync(ctx, TypeFull, nil)
	require.True(t, report.OK())
	assert.Equal(t, 2, report.Libraries)

	groups, err := stores.Groups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "lab shared", groups[0].Name)
	assert.False(t, groups[0].NeedsResync)
}

func TestController_RemoteDeletionOfDirtyObjectIsSurfaced(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, api, stores, _ := newTestController(t, ctrl)
	ctx := context.Background()
	library := models.UserLibrary(42)

	stores.seedVersion(library, models.SyncObjectItems, 5)
	stores.seedObject(models.ObjectRecord{
		Library:       library,
		Kind:          models.SyncObjectItems,
		Key:           "KEEP",
		Version:       5,
		Data:          json.RawMessage(`{"title":"still editing"}`),
		ChangedFields: models.ChangedFields{"title"},
	})
	stores.seedObject(models.ObjectRecord{
		Library: library,
		Kind:    models.SyncObjectItems,
		Key:     "GONE",
		Version: 5,
		Data:    json.RawMessage(`{}`),
	})

	api.EXPECT().GroupVersions(gomock.Any(), int64(42)).Return(map[int64]int{}, nil)
	api.EXPECT().Versions(gomock.Any(), library, gomock.Any(), gomock.Any()).
		Return(models.KeyVersions{}, 9, nil).AnyTimes()
	api.EXPECT().Deletions(gomock.Any(), library, gomock.Any()).
		Return(models.Deletions{Items: []string{"KEEP", "GONE"}}, nil)
	// The surviving dirty object is then submitted as usual.
	api.EXPECT().SubmitUpdates(gomock.Any(), library, models.SyncObjectItems, gomock.Any(), gomock.Any()).
		Return(models.UpdatesResponse{Successful: []string{"KEEP"}, NewVersion: 10}, nil)

	report := c.Sync(ctx, TypeFull, nil)
	require.True(t, report.OK())

	_, err := stores.Object(ctx, library, models.SyncObjectItems, "GONE")
	assert.ErrorIs(t, err, store.ErrObjectNotFound)

	_, err = stores.Object(ctx, library, models.SyncObjectItems, "KEEP")
	assert.NoError(t, err, "a dirty object must survive a remote deletion")

	require.Len(t, report.Failures[models.SyncObjectItems], 1)
	assert.Equal(t, "KEEP", report.Failures[models.SyncObjectItems][0].Key)
}

// TestController_DeletionsCoverLaggingKind exercises a library whose kinds
// are at uneven versions after a partially failed earlier pass: collections
// is at 8 while items is still at 5, and an item was deleted remotely at 6.
// The deletion report must be fetched since the lowest of the covered kind
// versions, or the lagging kind skips past the deletion for good.
func TestController_DeletionsCoverLaggingKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, api, stores, _ := newTestController(t, ctrl)
	ctx := context.Background()
	library := models.UserLibrary(42)

	stores.seedVersion(library, models.SyncObjectCollections, 8)
	stores.seedVersion(library, models.SyncObjectSearches, 8)
	stores.seedVersion(library, models.SyncObjectItems, 5)
	stores.seedObject(models.ObjectRecord{
		Library: library,
		Kind:    models.SyncObjectItems,
		Key:     "K1",
		Version: 5,
		Data:    json.RawMessage(`{"title":"deleted on the server"}`),
	})

	api.EXPECT().GroupVersions(gomock.Any(), int64(42)).Return(map[int64]int{}, nil)
	api.EXPECT().Versions(gomock.Any(), library, gomock.Any(), gomock.Any()).
		Return(models.KeyVersions{}, 10, nil).AnyTimes()
	api.EXPECT().Deletions(gomock.Any(), library, 5).
		Return(models.Deletions{Items: []string{"K1"}, Version: 10}, nil)

	report := c.Sync(ctx, TypeFull, nil)
	require.True(t, report.OK())
	assert.Zero(t, report.Failures.Total())

	_, err := stores.Object(ctx, library, models.SyncObjectItems, "K1")
	assert.ErrorIs(t, err, store.ErrObjectNotFound,
		"remote deletion inside the lagging kind's gap must still be applied")

	version, err := stores.Version(ctx, library, models.SyncObjectItems)
	require.NoError(t, err)
	assert.Equal(t, 10, version)
}

func TestController_CancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, _, stores, _ := newTestController(t, ctrl)
	library := models.UserLibrary(42)
	stores.seedObject(models.ObjectRecord{
		Library:       library,
		Kind:          models.SyncObjectItems,
		Key:           "K1",
		Data:          json.RawMessage(`{}`),
		ChangedFields: models.ChangedFields{"title"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := c.Sync(ctx, TypeWriteOnly, []models.LibraryIdentifier{library})
	assert.True(t, report.Cancelled)
	assert.NoError(t, report.AbortError)
}

func TestController_RunActionRetriesTransientFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, _, _, _ := newTestController(t, ctrl)

	act := &flakyAction{failures: 2}
	err := c.runAction(context.Background(), act)
	require.NoError(t, err)
	assert.Equal(t, 3, act.calls)
}

func TestController_RunActionStopsOnNonTransient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, _, _, _ := newTestController(t, ctrl)

	act := &flakyAction{failures: 10, err: adapter.ErrNotFound}
	err := c.runAction(context.Background(), act)
	assert.ErrorIs(t, err, adapter.ErrNotFound)
	assert.Equal(t, 1, act.calls)
}

func TestController_RunActionExhaustsRetryTable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c, _, _, _ := newTestController(t, ctrl)

	act := &flakyAction{failures: 10}
	err := c.runAction(context.Background(), act)
	assert.ErrorIs(t, err, adapter.ErrServerUnavailable)
	// Initial attempt plus one retry per table entry.
	assert.Equal(t, 3, act.calls)
}

// flakyAction fails its first failures calls with err (server unavailable
// by default), then succeeds.
type flakyAction struct {
	failures int
	err      error
	calls    int
}

func (a *flakyAction) do(context.Context) error {
	a.calls++
	if a.calls <= a.failures {
		if a.err != nil {
			return a.err
		}
		return adapter.ErrServerUnavailable
	}
	return nil
}
