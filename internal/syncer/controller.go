// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ObjectiveCharm/bibsync/internal/adapter"
	"github.com/ObjectiveCharm/bibsync/internal/background"
	"github.com/ObjectiveCharm/bibsync/internal/files"
	"github.com/ObjectiveCharm/bibsync/internal/logger"
	"github.com/ObjectiveCharm/bibsync/internal/store"
	"github.com/ObjectiveCharm/bibsync/internal/workers"
	"github.com/ObjectiveCharm/bibsync/models"
)

// Type selects how much of a run is performed: a full sync downloads
// remote changes, pushes local writes and transfers attachments; a
// write-only sync just pushes local edits and skips the download and
// attachment phases.
type Type string

const (
	TypeFull      Type = "full"
	TypeWriteOnly Type = "write_only"
)

// Config carries the controller's tuning knobs. The retry interval tables
// are required inputs; their lengths bound the attempt counts.
type Config struct {
	UserID                    int64
	RetryIntervals            []time.Duration
	ConflictRetryIntervals    []time.Duration
	BatchSize                 int
	MaxParallelLibraries      int
	BackgroundUploadThreshold int64
}

// Controller drives one sync run at a time: it builds and executes the
// per-library action sequence, applies the conflict-resolution policy,
// aggregates per-object-kind failures and reports progress. Libraries
// without cross-dependencies run concurrently through a bounded pool;
// object kinds within a library are strictly ordered.
type Controller struct {
	api      adapter.Client
	stores   *store.Storages
	files    *files.Storage
	uploader *background.Coordinator
	log      *logger.Logger

	userID          int64
	syncDelays      Scheduler
	conflictDelays  Scheduler
	batchSize       int
	parallel        int
	uploadThreshold int64

	mu         sync.Mutex
	state      State
	progressFn func(Progress)
}

func NewController(
	api adapter.Client,
	stores *store.Storages,
	fileStore *files.Storage,
	uploader *background.Coordinator,
	cfg Config,
	log *logger.Logger,
) *Controller {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxParallelLibraries <= 0 {
		cfg.MaxParallelLibraries = 1
	}

	return &Controller{
		api:             api,
		stores:          stores,
		files:           fileStore,
		uploader:        uploader,
		log:             log,
		userID:          cfg.UserID,
		syncDelays:      NewScheduler(cfg.RetryIntervals),
		conflictDelays:  NewScheduler(cfg.ConflictRetryIntervals),
		batchSize:       cfg.BatchSize,
		parallel:        cfg.MaxParallelLibraries,
		uploadThreshold: cfg.BackgroundUploadThreshold,
		state:           StateIdle,
	}
}

// Sync performs one run. With an empty libraries slice the set is
// determined during the preparing step: the personal library plus every
// group the user belongs to. An explicit subset is honored as-is, which is
// how write-only syncs target just-edited libraries.
//
// The returned report is never nil. A fatal error (auth expiry, broken
// store) aborts the run; per-object failures are accumulated and the run
// still counts as finished.
func (c *Controller) Sync(ctx context.Context, typ Type, libraries []models.LibraryIdentifier) *models.SyncReport {
	report := models.NewSyncReport()

	c.setState(StatePreparing)
	defer c.setState(StateIdle)

	if len(libraries) == 0 {
		prepared, err := c.prepareLibraries(ctx, typ, report)
		if err != nil {
			report.AbortError = err
			c.setState(StateAborted)
			return report
		}
		libraries = prepared
	}
	report.Libraries = len(libraries)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var reportMu sync.Mutex
	var abortErr error

	c.setState(StateSyncingLibrary)
	pool := workers.NewPool(c.parallel)
	for _, library := range libraries {
		library := library
		pool.Submit(func() {
			failures, fatal := c.syncLibrary(runCtx, library, typ)

			reportMu.Lock()
			report.Failures.Merge(failures)
			if fatal != nil && abortErr == nil {
				abortErr = fatal
				cancel()
			}
			reportMu.Unlock()
		})
	}
	pool.Wait()

	if c.uploader != nil {
		for _, failed := range c.uploader.CollectFailures() {
			report.Failures.Add(models.SyncObjectItems, failed.Task.Upload.ItemKey, errors.New(failed.Message))
		}
	}

	switch {
	case abortErr != nil:
		report.AbortError = abortErr
		c.setState(StateAborted)
	case ctx.Err() != nil:
		report.Cancelled = true
		c.setState(StateCancelled)
	default:
		c.setState(StateFinished)
	}

	c.log.Info().
		Str("type", string(typ)).
		Int("libraries", report.Libraries).
		Int("failures", report.Failures.Total()).
		Bool("ok", report.OK()).
		Msg("sync run finished")
	return report
}

// prepareLibraries determines the library set for a run. Full syncs first
// refresh stale group metadata; a group that cannot be fetched is flagged
// for resync and skipped so one bad group does not block unrelated
// libraries.
func (c *Controller) prepareLibraries(ctx context.Context, typ Type, report *models.SyncReport) ([]models.LibraryIdentifier, error) {
	libraries := []models.LibraryIdentifier{models.UserLibrary(c.userID)}

	local, err := c.stores.Groups.Groups(ctx)
	if err != nil {
		return nil, err
	}

	if typ == TypeWriteOnly {
		for _, group := range local {
			libraries = append(libraries, models.GroupLibrary(group.ID))
		}
		return libraries, nil
	}

	c.setState(StateSyncingGroups)

	remote, err := c.api.GroupVersions(ctx, c.userID)
	if err != nil {
		if classify(err) == classFatal {
			return nil, err
		}
		// Degrade to the cached group list; metadata refresh happens on a
		// later pass.
		report.Failures.Add(models.SyncObjectSettings, "groups", err)
		for _, group := range local {
			libraries = append(libraries, models.GroupLibrary(group.ID))
		}
		return libraries, nil
	}

	cached := make(map[int64]models.Group, len(local))
	for _, group := range local {
		cached[group.ID] = group
	}

	groupIDs := make([]int64, 0, len(remote))
	for id := range remote {
		groupIDs = append(groupIDs, id)
	}
	sort.Slice(groupIDs, func(i, j int) bool { return groupIDs[i] < groupIDs[j] })

	for _, id := range groupIDs {
		group, known := cached[id]
		if known && !group.NeedsResync && group.Version >= remote[id] {
			libraries = append(libraries, models.GroupLibrary(id))
			continue
		}

		fetch := &fetchAndStoreGroupAction{api: c.api, groups: c.stores.Groups, groupID: id}
		if err := c.runAction(ctx, fetch); err != nil {
			if classify(err) == classFatal {
				return nil, err
			}
			resync := &markGroupForResyncAction{groups: c.stores.Groups, groupID: id}
			if rerr := resync.do(ctx); rerr != nil {
				c.log.Err(rerr).Int64("group", id).Msg("failed to flag group for resync")
			}
			report.Failures.Add(models.SyncObjectSettings, fmt.Sprintf("group %d", id), err)
			continue
		}
		libraries = append(libraries, models.GroupLibrary(id))
	}

	return libraries, nil
}

// syncLibrary runs the fixed per-kind sequence for one library. The
// returned error is fatal for the whole run; everything else lands in the
// failure set.
func (c *Controller) syncLibrary(ctx context.Context, library models.LibraryIdentifier, typ Type) (models.SyncFailures, error) {
	failures := make(models.SyncFailures)
	log := c.log.WithLibrary(library.String())
	log.Debug().Str("type", string(typ)).Msg("library sync started")

	// Remote deletions are fetched once per library, lazily, and applied
	// kind by kind.
	var deletions *models.Deletions

	for _, kind := range models.SyncKindOrder() {
		if ctx.Err() != nil {
			return failures, nil
		}

		if typ == TypeFull {
			if err := c.downloadKind(ctx, library, kind, failures, &deletions); err != nil {
				return failures, err
			}
		}

		if typ == TypeWriteOnly && (kind == models.SyncObjectTrash) {
			continue
		}

		if err := c.submitKind(ctx, library, kind, failures); err != nil {
			switch classify(err) {
			case classFatal:
				return failures, err
			case classConflict:
				if ferr := c.resolveConflict(ctx, library, kind, failures); ferr != nil {
					return failures, ferr
				}
			default:
				failures.Add(kind, "", err)
			}
		}
	}

	if typ == TypeFull {
		if err := c.uploadAttachments(ctx, library, failures); err != nil {
			return failures, err
		}
	}

	log.Debug().Int("failures", failures.Total()).Msg("library sync finished")
	return failures, nil
}

// downloadKind brings one object kind up to date: fetch versions since the
// locally stored one, fetch changed/added bodies in batches, apply remote
// deletions, then record the remote library version actually merged.
// Returned errors are fatal; demoted ones are recorded in failures.
func (c *Controller) downloadKind(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, failures models.SyncFailures, deletions **models.Deletions) error {
	localVersion, err := c.stores.Versions.Version(ctx, library, kind)
	if err != nil {
		return err
	}

	c.emit(Progress{State: StateSyncingLibrary, Phase: PhaseFetchingVersions, Library: library.String(), Kind: kind})

	fetchVersions := &fetchVersionsAction{api: c.api, library: library, kind: kind, since: localVersion}
	if err := c.runAction(ctx, fetchVersions); err != nil {
		if classify(err) == classFatal {
			return err
		}
		failures.Add(kind, "", err)
		return nil
	}

	local, err := c.stores.Objects.KeyVersions(ctx, library, kind)
	if err != nil {
		return err
	}

	var toFetch []string
	for key, remoteVersion := range fetchVersions.versions {
		if knownVersion, known := local[key]; !known || remoteVersion > knownVersion {
			toFetch = append(toFetch, key)
		}
	}
	sort.Strings(toFetch)

	c.emit(Progress{State: StateSyncingLibrary, Phase: PhaseFetchingObjects, Library: library.String(), Kind: kind, Total: len(toFetch)})

	// Initial population prefers remote bodies unconditionally; on an
	// incremental pass objects with unsubmitted local edits are skipped so
	// the submit/conflict path can deal with them.
	preferRemote := localVersion == 0

	for start := 0; start < len(toFetch); start += c.batchSize {
		if ctx.Err() != nil {
			return nil
		}
		end := start + c.batchSize
		if end > len(toFetch) {
			end = len(toFetch)
		}
		batch := toFetch[start:end]

		fetchObjects := &fetchAndStoreObjectsAction{
			api:          c.api,
			objects:      c.stores.Objects,
			files:        c.files,
			library:      library,
			kind:         kind,
			keys:         batch,
			preferRemote: preferRemote,
		}
		if err := c.runAction(ctx, fetchObjects); err != nil {
			if classify(err) == classFatal {
				return err
			}
			for _, key := range batch {
				failures.Add(kind, key, err)
			}
			continue
		}

		c.emit(Progress{State: StateSyncingLibrary, Phase: PhaseFetchingObjects, Library: library.String(), Kind: kind, Done: end, Total: len(toFetch)})
	}

	if err := c.applyRemoteDeletions(ctx, library, kind, failures, deletions); err != nil {
		return err
	}

	if fetchVersions.remoteVersion > localVersion {
		if err := c.stores.Versions.SetVersion(ctx, library, kind, fetchVersions.remoteVersion); err != nil {
			return err
		}
	}
	return nil
}

// deletionKinds are the kinds the server's deletion report covers.
var deletionKinds = []models.SyncObjectKind{
	models.SyncObjectCollections,
	models.SyncObjectSearches,
	models.SyncObjectItems,
}

// deletionsWindowStart returns the earliest stored version among the kinds
// the deletion report covers. Fetching since the minimum keeps a kind that
// lagged behind on a prior pass (failed fetch demoted to the report) from
// permanently missing deletions inside its gap; re-applying a deletion a
// faster kind has already processed is a no-op.
func (c *Controller) deletionsWindowStart(ctx context.Context, library models.LibraryIdentifier) (int, error) {
	since := -1
	for _, kind := range deletionKinds {
		v, err := c.stores.Versions.Version(ctx, library, kind)
		if err != nil {
			return 0, err
		}
		if since < 0 || v < since {
			since = v
		}
	}
	return since, nil
}

// applyRemoteDeletions applies the server's deletion report for the kinds
// that have one. The report is fetched once per library and cached in
// *deletions across kinds.
func (c *Controller) applyRemoteDeletions(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, failures models.SyncFailures, deletions **models.Deletions) error {
	var keys []string
	switch kind {
	case models.SyncObjectCollections, models.SyncObjectSearches, models.SyncObjectItems:
		if *deletions == nil {
			since, err := c.deletionsWindowStart(ctx, library)
			if err != nil {
				return err
			}
			fetched, err := c.api.Deletions(ctx, library, since)
			if err != nil {
				if classify(err) == classFatal {
					return err
				}
				failures.Add(kind, "", err)
				return nil
			}
			*deletions = &fetched
		}
		switch kind {
		case models.SyncObjectCollections:
			keys = (*deletions).Collections
		case models.SyncObjectSearches:
			keys = (*deletions).Searches
		default:
			keys = (*deletions).Items
		}
	default:
		return nil
	}

	if len(keys) == 0 {
		return nil
	}

	c.emit(Progress{State: StateSyncingLibrary, Phase: PhaseDeletions, Library: library.String(), Kind: kind, Total: len(keys)})

	perform := &performDeletionsAction{objects: c.stores.Objects, library: library, kind: kind, keys: keys}
	if err := c.runAction(ctx, perform); err != nil {
		if classify(err) == classFatal {
			return err
		}
		failures.Add(kind, "", err)
		return nil
	}

	for _, key := range perform.conflicts {
		failures.Add(kind, key, errors.New("deleted remotely but changed locally"))
	}
	return nil
}

// submitKind pushes the kind's dirty objects (and locally observed
// deletions) with the stored since version. A version-conflict error is
// returned untouched for the conflict resolver.
func (c *Controller) submitKind(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, failures models.SyncFailures) error {
	dirty, err := c.stores.Objects.DirtyObjects(ctx, library, kind)
	if err != nil {
		return err
	}

	var locallyDeleted []string
	if kind != models.SyncObjectSettings && kind != models.SyncObjectTrash {
		if locallyDeleted, err = c.stores.Objects.LocallyDeleted(ctx, library, kind); err != nil {
			return err
		}
	}

	if len(dirty) == 0 && len(locallyDeleted) == 0 {
		return nil
	}

	version, err := c.stores.Versions.Version(ctx, library, kind)
	if err != nil {
		return err
	}

	c.emit(Progress{State: StateSyncingLibrary, Phase: PhaseSubmittingWrites, Library: library.String(), Kind: kind, Total: len(dirty)})

	for start := 0; start < len(dirty); start += c.batchSize {
		if ctx.Err() != nil {
			return nil
		}
		end := start + c.batchSize
		if end > len(dirty) {
			end = len(dirty)
		}
		batch := dirty[start:end]

		submit := &submitUpdateAction{
			api:      c.api,
			objects:  c.stores.Objects,
			versions: c.stores.Versions,
			library:  library,
			kind:     kind,
			since:    version,
			batch:    batch,
		}
		if err := c.runAction(ctx, submit); err != nil {
			return err
		}

		if submit.response.NewVersion > 0 {
			version = submit.response.NewVersion
		}
		for _, failed := range submit.response.Failed {
			failures.Add(kind, failed.Key, fmt.Errorf("%s (code %d)", failed.Message, failed.Code))
		}

		c.emit(Progress{State: StateSyncingLibrary, Phase: PhaseSubmittingWrites, Library: library.String(), Kind: kind, Done: end, Total: len(dirty)})
	}

	if len(locallyDeleted) > 0 {
		submitDel := &submitDeletionsAction{
			api:      c.api,
			objects:  c.stores.Objects,
			versions: c.stores.Versions,
			library:  library,
			kind:     kind,
			since:    version,
			keys:     locallyDeleted,
		}
		if err := c.runAction(ctx, submitDel); err != nil {
			return err
		}
	}

	return nil
}

// runAction executes one action, retrying transient failures per the sync
// delay scheduler. Exhausting the table returns the last error so the
// caller can demote it into the failure report. Conflict, fatal and plain
// failures return immediately; retry policy never lives in the action.
func (c *Controller) runAction(ctx context.Context, act action) error {
	var err error
	for attempt := 1; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			if err != nil {
				return err
			}
			return cerr
		}

		if err = act.do(ctx); err == nil {
			return nil
		}
		if classify(err) != classTransient {
			return err
		}

		delay, ok := c.syncDelays.Delay(attempt)
		if !ok {
			return err
		}
		c.log.Warn().Err(err).
			Int("attempt", attempt).
			Int("max_attempts", c.syncDelays.MaxAttempts()).
			Dur("delay", delay).
			Msg("transient sync failure, retrying")
		if !sleep(ctx, delay) {
			return err
		}
	}
}
