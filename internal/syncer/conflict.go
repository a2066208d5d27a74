// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

package syncer

import (
	"context"
	"errors"

	"github.com/ObjectiveCharm/bibsync/models"
)

// resolveConflict implements the version-conflict policy after a submit
// was rejected with a stale since version: refresh the kind from the
// server without clobbering local edits, then either acknowledge (nothing
// dirty remains) or replay the submit, bounded by the conflict delay
// scheduler. Local edits win as long as the replay budget lasts; once it
// is exhausted the library's local changes are reverted to the
// last-known-good remote state so the stores converge instead of fighting
// the server forever.
//
// The returned error is fatal for the run; everything recoverable lands in
// failures.
func (c *Controller) resolveConflict(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, failures models.SyncFailures) error {
	c.emit(Progress{State: StateSyncingLibrary, Phase: PhaseResolvingConflict, Library: library.String(), Kind: kind})
	log := c.log.WithLibrary(library.String())

	for attempt := 1; ; attempt++ {
		if ctx.Err() != nil {
			return nil
		}

		if err := c.refreshKind(ctx, library, kind); err != nil {
			if classify(err) == classFatal {
				return err
			}
			failures.Add(kind, "", err)
			return nil
		}

		dirty, err := c.stores.Objects.DirtyObjects(ctx, library, kind)
		if err != nil {
			return err
		}

		// The refreshed remote state already carries everything that was
		// edited locally; nothing left to push.
		if len(dirty) == 0 {
			resolved := &markChangesAsResolvedAction{objects: c.stores.Objects, library: library}
			if err := c.runAction(ctx, resolved); err != nil {
				return err
			}
			return nil
		}

		delay, ok := c.conflictDelays.Delay(attempt)
		if !ok {
			break
		}
		log.Warn().
			Str("kind", string(kind)).
			Int("attempt", attempt).
			Int("max_attempts", c.conflictDelays.MaxAttempts()).
			Dur("delay", delay).
			Msg("version conflict persists, replaying submit")
		if !sleep(ctx, delay) {
			return nil
		}

		err = c.submitKind(ctx, library, kind, failures)
		if err == nil {
			return nil
		}
		switch classify(err) {
		case classFatal:
			return err
		case classConflict:
			continue
		default:
			failures.Add(kind, "", err)
			return nil
		}
	}

	// Replay budget exhausted: give up on the local edits.
	log.Warn().Str("kind", string(kind)).Msg("conflict retries exhausted, reverting local changes")

	revert := &revertLibraryUpdatesAction{objects: c.stores.Objects, files: c.files, library: library}
	if err := c.runAction(ctx, revert); err != nil {
		if classify(err) == classFatal {
			return err
		}
		failures.Add(kind, "", err)
		return nil
	}
	for _, key := range revert.failed {
		failures.Add(kind, key, errors.New("revert failed: no cached remote copy"))
	}
	return nil
}

// refreshKind re-downloads one object kind after a version conflict.
// Unlike the regular download it never prefers remote bodies, so rows with
// unsubmitted local edits survive and stay dirty for the replay.
func (c *Controller) refreshKind(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) error {
	localVersion, err := c.stores.Versions.Version(ctx, library, kind)
	if err != nil {
		return err
	}

	fetchVersions := &fetchVersionsAction{api: c.api, library: library, kind: kind, since: localVersion}
	if err := c.runAction(ctx, fetchVersions); err != nil {
		return err
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

	for start := 0; start < len(toFetch); start += c.batchSize {
		end := start + c.batchSize
		if end > len(toFetch) {
			end = len(toFetch)
		}

		fetchObjects := &fetchAndStoreObjectsAction{
			api:          c.api,
			objects:      c.stores.Objects,
			files:        c.files,
			library:      library,
			kind:         kind,
			keys:         toFetch[start:end],
			preferRemote: false,
		}
		if err := c.runAction(ctx, fetchObjects); err != nil {
			return err
		}
	}

	if fetchVersions.remoteVersion > localVersion {
		if err := c.stores.Versions.SetVersion(ctx, library, kind, fetchVersions.remoteVersion); err != nil {
			return err
		}
	}
	return nil
}
