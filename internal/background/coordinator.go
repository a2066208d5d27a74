// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

// Package background decouples attachment byte-transfer from the sync
// run's lifetime. The Coordinator owns a long-lived background transfer
// session, tracks in-flight uploads keyed by task id, and persists that
// mapping so a relaunched process can reconstruct which logical upload
// each completed task corresponds to.
package background

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/ObjectiveCharm/bibsync/internal/logger"
	"github.com/ObjectiveCharm/bibsync/models"
)

// Task couples one background transfer with its logical upload record.
// The authorization is captured at enqueue time so the register round can
// run long after the sync run that authorized it.
type Task struct {
	ID       string                     `json:"id"`
	Upload   models.AttachmentUpload    `json:"upload"`
	Auth     models.UploadAuthorization `json:"auth"`
	FilePath string                     `json:"file_path"`
}

// FailedTask is a transfer that completed with an error; it goes into the
// sync failure report without being registered.
type FailedTask struct {
	Task    Task   `json:"task"`
	Message string `json:"message"`
}

// Session abstracts the OS-level background transfer channel. Transfers
// continue independent of the requesting process; completion is delivered
// to the coordinator via TaskCompleted, possibly on any goroutine.
type Session interface {
	// Enqueue registers a transfer. The caller has already persisted the
	// task mapping, so a process death between Enqueue and completion is
	// recoverable.
	Enqueue(task Task) error

	// Cancel aborts one in-flight transfer. Bytes already sent are
	// abandoned.
	Cancel(taskID string)

	// ExtendedExecution requests a bounded execution grant for the replay
	// phase; the returned context expires when the grant does.
	ExtendedExecution() (context.Context, context.CancelFunc)
}

// RegisterFunc finalizes one finished upload server-side (the register
// round of the upload protocol) and advances local state.
type RegisterFunc func(ctx context.Context, upload models.AttachmentUpload, uploadKey string) error

// persistedState is the on-disk form of the coordinator's bookkeeping.
// Tasks are transfers still in flight; Uploaded are transfers whose bytes
// reached storage but whose registration has not been acknowledged yet.
type persistedState struct {
	Tasks    map[string]Task `json:"tasks"`
	Uploaded []Task          `json:"uploaded"`
}

// Coordinator tracks background uploads across sync runs and process
// lifetimes. All mutable state is guarded by mu because task completions
// arrive from the session's delivery goroutines while the sync controller
// reads pending-upload state from its own.
type Coordinator struct {
	session  Session
	register RegisterFunc
	path     string
	log      *logger.Logger

	mu       sync.Mutex
	tasks    map[string]Task
	uploaded []Task
	failures []FailedTask
}

// NewCoordinator loads any persisted task state from path and returns a
// coordinator bound to the given session. Call Recover afterwards to
// resume transfers and registrations that survived a process restart.
func NewCoordinator(path string, session Session, register RegisterFunc, log *logger.Logger) (*Coordinator, error) {
	c := &Coordinator{
		session:  session,
		register: register,
		path:     path,
		log:      log,
		tasks:    make(map[string]Task),
	}

	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// Start hands one authorized upload to the background session. The task
// mapping is persisted before the transfer begins, so the mapping survives
// process termination no matter when it happens.
func (c *Coordinator) Start(upload models.AttachmentUpload, auth models.UploadAuthorization, filePath string) error {
	task := Task{
		ID:       uuid.NewString(),
		Upload:   upload,
		Auth:     auth,
		FilePath: filePath,
	}

	c.mu.Lock()
	c.tasks[task.ID] = task
	err := c.persistLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if err := c.session.Enqueue(task); err != nil {
		c.mu.Lock()
		delete(c.tasks, task.ID)
		_ = c.persistLocked()
		c.mu.Unlock()
		return fmt.Errorf("enqueue background upload: %w", err)
	}

	c.log.Debug().
		Str("task", task.ID).
		Str("item", upload.ItemKey).
		Str("library", upload.Library.String()).
		Msg("background upload started")
	return nil
}

// InFlightHashes returns the md5 of every upload the coordinator is still
// responsible for: transfers in flight plus finished-but-unregistered
// ones. Load-upload-data uses it to suppress duplicate uploads.
func (c *Coordinator) InFlightHashes() map[string]struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	hashes := make(map[string]struct{}, len(c.tasks)+len(c.uploaded))
	for _, task := range c.tasks {
		hashes[task.Upload.MD5] = struct{}{}
	}
	for _, task := range c.uploaded {
		hashes[task.Upload.MD5] = struct{}{}
	}
	return hashes
}

// TaskCompleted is the session delegate callback, safe to call from any
// goroutine. The finished task is buffered; the replay phase runs only
// once every currently-tracked task of the session has completed, because
// per-task events fire individually while the session-level "all done"
// moment is what permits registration work.
func (c *Coordinator) TaskCompleted(taskID string, taskErr error) {
	c.mu.Lock()
	task, ok := c.tasks[taskID]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.tasks, taskID)

	if taskErr != nil {
		c.failures = append(c.failures, FailedTask{Task: task, Message: taskErr.Error()})
		c.log.Warn().Str("task", taskID).Err(taskErr).Msg("background upload failed")
	} else {
		c.uploaded = append(c.uploaded, task)
	}

	_ = c.persistLocked()
	allDone := len(c.tasks) == 0
	c.mu.Unlock()

	if allDone {
		go c.replay()
	}
}

// replay registers every finished upload under an extended-execution
// grant. If the grant expires mid-way, remaining registrations stay
// persisted as uploaded-but-unregistered and are retried at next launch.
func (c *Coordinator) replay() {
	ctx, release := c.session.ExtendedExecution()
	defer release()

	c.mu.Lock()
	batch := make([]Task, len(c.uploaded))
	copy(batch, c.uploaded)
	c.mu.Unlock()

	for _, task := range batch {
		if ctx.Err() != nil {
			c.log.Warn().Msg("execution grant expired, abandoning replay until next launch")
			return
		}

		err := c.register(ctx, task.Upload, task.Auth.UploadKey)

		c.mu.Lock()
		if err != nil {
			if ctx.Err() == nil {
				c.failures = append(c.failures, FailedTask{Task: task, Message: err.Error()})
				c.log.Warn().Str("task", task.ID).Err(err).Msg("register upload failed")
			}
			// The record stays uploaded-but-unregistered, so the next
			// launch retries the registration.
			c.mu.Unlock()
			continue
		}

		c.removeUploadedLocked(task.ID)
		_ = c.persistLocked()
		c.mu.Unlock()

		c.log.Debug().Str("task", task.ID).Str("item", task.Upload.ItemKey).Msg("background upload registered")
	}
}

func (c *Coordinator) removeUploadedLocked(taskID string) {
	for i, task := range c.uploaded {
		if task.ID == taskID {
			c.uploaded = append(c.uploaded[:i], c.uploaded[i+1:]...)
			return
		}
	}
}

// Recover resumes persisted state at process start: in-flight transfers
// are re-enqueued with the session, and finished-but-unregistered uploads
// go through the replay phase again.
func (c *Coordinator) Recover() error {
	c.mu.Lock()
	pending := make([]Task, 0, len(c.tasks))
	for _, task := range c.tasks {
		pending = append(pending, task)
	}
	hasUploaded := len(c.uploaded) > 0
	c.mu.Unlock()

	for _, task := range pending {
		if err := c.session.Enqueue(task); err != nil {
			c.TaskCompleted(task.ID, err)
		}
	}

	if hasUploaded && len(pending) == 0 {
		go c.replay()
	}
	return nil
}

// CollectFailures drains the buffered transfer failures for the sync
// report.
func (c *Coordinator) CollectFailures() []FailedTask {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := c.failures
	c.failures = nil
	return out
}

// Invalidate cancels all in-flight transfers and discards all persisted
// task state. Bytes already sent are abandoned.
func (c *Coordinator) Invalidate() {
	c.mu.Lock()
	ids := make([]string, 0, len(c.tasks))
	for id := range c.tasks {
		ids = append(ids, id)
	}
	c.tasks = make(map[string]Task)
	c.uploaded = nil
	c.failures = nil
	_ = c.persistLocked()
	c.mu.Unlock()

	for _, id := range ids {
		c.session.Cancel(id)
	}
}

func (c *Coordinator) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read upload state: %w", err)
	}

	var state persistedState
	if err = json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("decode upload state: %w", err)
	}

	if state.Tasks != nil {
		c.tasks = state.Tasks
	}
	c.uploaded = state.Uploaded
	return nil
}

// persistLocked writes the task state atomically; callers hold mu.
func (c *Coordinator) persistLocked() error {
	state := persistedState{Tasks: c.tasks, Uploaded: c.uploaded}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode upload state: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create upload state dir: %w", err)
	}

	tmp := c.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write upload state: %w", err)
	}
	if err = os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace upload state: %w", err)
	}
	return nil
}
