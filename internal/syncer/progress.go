package syncer

import "github.com/ObjectiveCharm/bibsync/models"

// State is the controller's coarse position in a sync run.
type State string

const (
	StateIdle            State = "idle"
	StatePreparing       State = "preparing"
	StateSyncingGroups   State = "syncing_groups"
	StateSyncingLibrary  State = "syncing_library"
	StateFinished        State = "finished"
	StateAborted         State = "aborted"
	StateCancelled       State = "cancelled"
)

// Phase is the per-library step a progress event refers to.
type Phase string

const (
	PhaseFetchingVersions  Phase = "fetching_versions"
	PhaseFetchingObjects   Phase = "fetching_objects"
	PhaseSubmittingWrites  Phase = "submitting_writes"
	PhaseResolvingConflict Phase = "resolving_conflict"
	PhaseUploading         Phase = "uploading_attachments"
	PhaseDeletions         Phase = "performing_deletions"
)

// Progress is one progress event emitted while a run advances. Upload
// events additionally carry byte counts.
type Progress struct {
	State   State
	Phase   Phase
	Library string
	Kind    models.SyncObjectKind

	Done  int
	Total int

	BytesSent  int64
	BytesTotal int64
}

// OnProgress installs the progress callback. The callback runs on the
// library's sync goroutine and must not block.
func (c *Controller) OnProgress(fn func(Progress)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.progressFn = fn
}

func (c *Controller) emit(p Progress) {
	c.mu.Lock()
	fn := c.progressFn
	c.mu.Unlock()

	if fn != nil {
		fn(p)
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.emit(Progress{State: s})
}

// CurrentState returns the controller's coarse state, mainly for tests and
// UI polling.
func (c *Controller) CurrentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}
