package models

import "fmt"

// FailedUpdate is one per-key failure reported by the server inside an
// otherwise successful submit response.
type FailedUpdate struct {
	Key     string `json:"key"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// UpdatesResponse is the server's verdict on one submitted write batch.
// The submitted set and the acknowledged set may diverge: only keys listed
// in Successful or Unchanged may be marked synced locally; Failed keys keep
// their dirty flags so a later sync retries them.
type UpdatesResponse struct {
	Successful []string       `json:"successful"`
	Unchanged  []string       `json:"unchanged"`
	Failed     []FailedUpdate `json:"failed"`

	// NewVersion is the library version reported by the server after the
	// write, parsed from the last-modified-version response header.
	NewVersion int `json:"new_version"`
}

// Acknowledged returns the keys the server confirmed, i.e. the union of
// Successful and Unchanged.
func (r UpdatesResponse) Acknowledged() []string {
	keys := make([]string, 0, len(r.Successful)+len(r.Unchanged))
	keys = append(keys, r.Successful...)
	keys = append(keys, r.Unchanged...)
	return keys
}

// Deletions lists remote deletions per object kind since a given version,
// as reported by the deletions endpoint.
//
// Tags travel with the same report but are not applied as standalone
// deletions: tags live inside item JSON, and removing a tag from an item
// bumps the item's version, so the updated bodies arrive through the
// regular item fetch in the same window. The Tags list is carried for
// completeness of the wire format only.
type Deletions struct {
	Collections []string `json:"collections"`
	Searches    []string `json:"searches"`
	Items       []string `json:"items"`
	Tags        []string `json:"tags"`
	Version     int      `json:"version"`
}

// SyncFailure records one per-object failure accumulated during a run.
// The error is kept as a message so the failure set can be serialized into
// the final report.
type SyncFailure struct {
	Key     string `json:"key"`
	Message string `json:"message"`
}

func (f SyncFailure) String() string {
	return fmt.Sprintf("%s: %s", f.Key, f.Message)
}

// SyncFailures maps object kinds to the failures collected for them during
// one sync run. It backs both conflict-retry bookkeeping and the final
// per-run report.
type SyncFailures map[SyncObjectKind][]SyncFailure

// Add records a failure for kind. A nil receiver is not supported; callers
// allocate with make or NewSyncReport.
func (s SyncFailures) Add(kind SyncObjectKind, key string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	s[kind] = append(s[kind], SyncFailure{Key: key, Message: msg})
}

// Merge folds other into s.
func (s SyncFailures) Merge(other SyncFailures) {
	for kind, failures := range other {
		s[kind] = append(s[kind], failures...)
	}
}

// Total returns the number of recorded failures across all kinds.
func (s SyncFailures) Total() int {
	n := 0
	for _, failures := range s {
		n += len(failures)
	}
	return n
}

// SyncReport is the aggregate outcome of one sync run. A run with a
// non-empty failure set but no fatal error is "successful with warnings";
// a run with AbortError set was stopped before completion.
type SyncReport struct {
	Failures  SyncFailures `json:"failures"`
	Libraries int          `json:"libraries"`
	Cancelled bool         `json:"cancelled,omitempty"`

	// AbortError is the single fatal error that terminated the run, if any.
	// Already-applied local writes are never rolled back on abort.
	AbortError error `json:"-"`
}

// NewSyncReport returns an empty report ready for accumulation.
func NewSyncReport() *SyncReport {
	return &SyncReport{Failures: make(SyncFailures)}
}

// OK reports whether the run finished without fatal error or cancellation.
func (r *SyncReport) OK() bool {
	return r.AbortError == nil && !r.Cancelled
}
