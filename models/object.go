// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

package models

import "encoding/json"

// SyncObjectKind enumerates the syncable object kinds. Each kind carries its
// own per-library version counter and its own set of remote-assigned keys.
type SyncObjectKind string

const (
	SyncObjectSettings    SyncObjectKind = "settings"
	SyncObjectCollections SyncObjectKind = "collections"
	SyncObjectSearches    SyncObjectKind = "searches"
	SyncObjectItems       SyncObjectKind = "items"
	SyncObjectTrash       SyncObjectKind = "trash"
)

// SyncKindOrder returns the fixed per-library processing order. Items
// reference collections, and trash processing assumes collections and
// searches are already current, so the order must not be changed.
func SyncKindOrder() []SyncObjectKind {
	return []SyncObjectKind{
		SyncObjectSettings,
		SyncObjectCollections,
		SyncObjectSearches,
		SyncObjectItems,
		SyncObjectTrash,
	}
}

// ObjectSyncState describes how a local object relates to the last state
// merged from the server.
type ObjectSyncState int

const (
	// ObjectSynced means the local object matches the last remote state.
	ObjectSynced ObjectSyncState = iota

	// ObjectOutdated means the remote copy is newer and a fetch is needed.
	ObjectOutdated

	// ObjectDirty means local fields diverged from the last synced state.
	// An object may be dirty and outdated at the same time only while a
	// conflict is unresolved.
	ObjectDirty
)

// ChangedFieldsAll marks an object whose every field is considered changed,
// i.e. the object was created locally and has never been submitted.
const ChangedFieldsAll = "*"

// ChangedFields is the set of locally changed field names of one object.
// An empty set means the object carries no unsubmitted local edits.
type ChangedFields []string

// Empty reports whether no local edits are recorded.
func (f ChangedFields) Empty() bool { return len(f) == 0 }

// Contains reports whether field is recorded as locally changed. An object
// marked with ChangedFieldsAll contains every field.
func (f ChangedFields) Contains(field string) bool {
	for _, v := range f {
		if v == field || v == ChangedFieldsAll {
			return true
		}
	}
	return false
}

// ObjectRecord is one syncable object as the engine sees it: raw remote JSON
// plus the local bookkeeping the store keeps alongside it. The engine never
// interprets Data beyond the key and version fields; schema validation is a
// collaborator concern.
type ObjectRecord struct {
	Library       LibraryIdentifier `json:"library"`
	Kind          SyncObjectKind    `json:"kind"`
	Key           string            `json:"key"`
	Version       int               `json:"version"`
	Data          json.RawMessage   `json:"data"`
	ChangedFields ChangedFields     `json:"changed_fields,omitempty"`
	Deleted       bool              `json:"deleted,omitempty"`
	State         ObjectSyncState   `json:"state"`

	// Title is a human-readable label carried for diagnostics only
	// (attachment failure messages). May be empty.
	Title string `json:"title,omitempty"`
}

// KeyVersions maps remote object keys to their versions for one
// (library, kind) pair, as reported by a versions fetch.
type KeyVersions map[string]int
