package models

import "encoding/json"

// Group is the cached metadata of one group library. Version tracks the
// group metadata object itself, not the group's library content.
type Group struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data,omitempty"`

	// NeedsResync is set when a fetch of the group failed, or when the
	// group's ownership or permissions appear to have changed; the next
	// sync pass refreshes the group metadata unconditionally.
	NeedsResync bool `json:"needs_resync,omitempty"`
}
