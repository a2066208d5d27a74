// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

// Package syncer is the sync orchestration engine: the controller that
// sequences per-library synchronization, the atomic actions it composes,
// the conflict-resolution policy, and the glue to the background upload
// coordinator.
package syncer

import (
	"context"

	"github.com/ObjectiveCharm/bibsync/internal/adapter"
	"github.com/ObjectiveCharm/bibsync/internal/store"
	"github.com/ObjectiveCharm/bibsync/models"
)

// action is the atomic unit of sync work: a fixed set of inputs captured
// at construction, at most one network call and one local-store
// transaction, no internal retries. Side effects must be safely
// re-runnable because the controller re-invokes an action after a retry
// delay. Typed results land in the action's own fields.
type action interface {
	do(ctx context.Context) error
}

// fetchVersionsAction GETs the (key → version) map of one object kind,
// restricted to changes after since. The controller compares the result
// against locally known versions to compute what to fetch.
type fetchVersionsAction struct {
	api     adapter.Client
	library models.LibraryIdentifier
	kind    models.SyncObjectKind
	since   int

	versions      models.KeyVersions
	remoteVersion int
}

func (a *fetchVersionsAction) do(ctx context.Context) error {
	versions, remoteVersion, err := a.api.Versions(ctx, a.library, a.kind, a.since)
	if err != nil {
		return err
	}
	a.versions = versions
	a.remoteVersion = remoteVersion
	return nil
}

// fetchAndStoreGroupAction downloads one group's metadata and persists it.
type fetchAndStoreGroupAction struct {
	api     adapter.Client
	groups  store.GroupStore
	groupID int64
}

func (a *fetchAndStoreGroupAction) do(ctx context.Context) error {
	group, err := a.api.Group(ctx, a.groupID)
	if err != nil {
		return err
	}
	return a.groups.StoreGroup(ctx, group)
}

// markGroupForResyncAction flags a group for a full metadata refresh on
// the next sync pass; used when fetching the group failed or its
// permissions appear to have changed.
type markGroupForResyncAction struct {
	groups  store.GroupStore
	groupID int64
}

func (a *markGroupForResyncAction) do(ctx context.Context) error {
	return a.groups.MarkGroupForResync(ctx, a.groupID)
}

// markChangesAsResolvedAction clears the dirty flag of every locally
// changed object in a library without contacting the server; issued once
// the conflict resolver decides the refreshed remote state already covers
// the local edits.
type markChangesAsResolvedAction struct {
	objects store.ObjectStore
	library models.LibraryIdentifier
}

func (a *markChangesAsResolvedAction) do(ctx context.Context) error {
	return a.objects.MarkAllSynced(ctx, a.library)
}
