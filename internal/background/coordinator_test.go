// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ObjectiveCharm

package background

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ObjectiveCharm/bibsync/internal/logger"
	"github.com/ObjectiveCharm/bibsync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSession records enqueued tasks without transferring anything, so
// tests control exactly when and how each task completes.
type fakeSession struct {
	mu         sync.Mutex
	enqueued   []Task
	cancelled  []string
	enqueueErr error
	grant      time.Duration
}

func (s *fakeSession) Enqueue(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enqueueErr != nil {
		return s.enqueueErr
	}
	s.enqueued = append(s.enqueued, task)
	return nil
}

func (s *fakeSession) Cancel(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled = append(s.cancelled, taskID)
}

func (s *fakeSession) ExtendedExecution() (context.Context, context.CancelFunc) {
	grant := s.grant
	if grant <= 0 {
		grant = time.Second
	}
	return context.WithTimeout(context.Background(), grant)
}

func (s *fakeSession) tasks() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.enqueued))
	copy(out, s.enqueued)
	return out
}

// registerRecorder is a RegisterFunc that records calls and can fail a
// configurable number of times.
type registerRecorder struct {
	mu       sync.Mutex
	calls    []models.AttachmentUpload
	failures int
}

func (r *registerRecorder) register(_ context.Context, upload models.AttachmentUpload, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("register rejected")
	}
	r.calls = append(r.calls, upload)
	return nil
}

func (r *registerRecorder) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func testUpload(itemKey, md5 string) models.AttachmentUpload {
	return models.AttachmentUpload{
		Library:  models.UserLibrary(42),
		ItemKey:  itemKey,
		Filename: itemKey + ".pdf",
		MD5:      md5,
		Size:     1024,
	}
}

func newTestCoordinator(t *testing.T, path string, session Session, register RegisterFunc) *Coordinator {
	t.Helper()
	c, err := NewCoordinator(path, session, register, logger.Nop())
	require.NoError(t, err)
	return c
}

func TestCoordinator_StartPersistsBeforeEnqueue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.json")
	session := &fakeSession{}
	reg := &registerRecorder{}
	c := newTestCoordinator(t, path, session, reg.register)

	require.NoError(t, c.Start(testUpload("A1", "md5-a1"), models.UploadAuthorization{UploadKey: "k1"}, "/tmp/a1.pdf"))

	require.Len(t, session.tasks(), 1)
	assert.Contains(t, c.InFlightHashes(), "md5-a1")

	// A fresh coordinator over the same state file sees the task: the
	// mapping was persisted, not just held in memory.
	reloaded := newTestCoordinator(t, path, &fakeSession{}, reg.register)
	assert.Contains(t, reloaded.InFlightHashes(), "md5-a1")
}

func TestCoordinator_EnqueueFailureRollsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.json")
	session := &fakeSession{enqueueErr: errors.New("session full")}
	c := newTestCoordinator(t, path, session, (&registerRecorder{}).register)

	err := c.Start(testUpload("A1", "md5-a1"), models.UploadAuthorization{}, "/tmp/a1.pdf")
	require.Error(t, err)
	assert.Empty(t, c.InFlightHashes())

	reloaded := newTestCoordinator(t, path, &fakeSession{}, (&registerRecorder{}).register)
	assert.Empty(t, reloaded.InFlightHashes())
}

func TestCoordinator_CompletionTriggersRegistration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.json")
	session := &fakeSession{}
	reg := &registerRecorder{}
	c := newTestCoordinator(t, path, session, reg.register)

	require.NoError(t, c.Start(testUpload("A1", "md5-a1"), models.UploadAuthorization{UploadKey: "k1"}, "/tmp/a1.pdf"))
	c.TaskCompleted(session.tasks()[0].ID, nil)

	assert.Eventually(t, func() bool { return reg.callCount() == 1 }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return len(c.InFlightHashes()) == 0 }, time.Second, time.Millisecond)
}

func TestCoordinator_ReplayWaitsForAllTasks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.json")
	session := &fakeSession{}
	reg := &registerRecorder{}
	c := newTestCoordinator(t, path, session, reg.register)

	require.NoError(t, c.Start(testUpload("A1", "md5-a1"), models.UploadAuthorization{UploadKey: "k1"}, "/tmp/a1.pdf"))
	require.NoError(t, c.Start(testUpload("A2", "md5-a2"), models.UploadAuthorization{UploadKey: "k2"}, "/tmp/a2.pdf"))

	tasks := session.tasks()
	c.TaskCompleted(tasks[0].ID, nil)

	// One transfer is still running: registration must not start yet.
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, reg.callCount())

	c.TaskCompleted(tasks[1].ID, nil)
	assert.Eventually(t, func() bool { return reg.callCount() == 2 }, time.Second, time.Millisecond)
}

func TestCoordinator_TransferFailureGoesToReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.json")
	session := &fakeSession{}
	c := newTestCoordinator(t, path, session, (&registerRecorder{}).register)

	require.NoError(t, c.Start(testUpload("A1", "md5-a1"), models.UploadAuthorization{}, "/tmp/a1.pdf"))
	c.TaskCompleted(session.tasks()[0].ID, errors.New("connection reset"))

	failures := c.CollectFailures()
	require.Len(t, failures, 1)
	assert.Equal(t, "A1", failures[0].Task.Upload.ItemKey)
	assert.Equal(t, "connection reset", failures[0].Message)

	// Drained once, gone.
	assert.Empty(t, c.CollectFailures())
}

func TestCoordinator_FailedRegistrationSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.json")
	session := &fakeSession{}
	reg := &registerRecorder{failures: 1}
	c := newTestCoordinator(t, path, session, reg.register)

	require.NoError(t, c.Start(testUpload("A1", "md5-a1"), models.UploadAuthorization{UploadKey: "k1"}, "/tmp/a1.pdf"))
	c.TaskCompleted(session.tasks()[0].ID, nil)

	// Registration fails once; the uploaded-but-unregistered record must
	// stay persisted and keep suppressing duplicate uploads.
	assert.Eventually(t, func() bool { return len(c.CollectFailures()) == 1 }, time.Second, time.Millisecond)
	assert.Contains(t, c.InFlightHashes(), "md5-a1")

	// Next launch: Recover replays the registration, which now succeeds.
	restarted := newTestCoordinator(t, path, &fakeSession{}, reg.register)
	require.Contains(t, restarted.InFlightHashes(), "md5-a1")
	require.NoError(t, restarted.Recover())

	assert.Eventually(t, func() bool { return reg.callCount() == 1 }, time.Second, time.Millisecond)
	assert.Eventually(t, func() bool { return len(restarted.InFlightHashes()) == 0 }, time.Second, time.Millisecond)
}

func TestCoordinator_RecoverReenqueuesInFlightTransfers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.json")
	session := &fakeSession{}
	c := newTestCoordinator(t, path, session, (&registerRecorder{}).register)
	require.NoError(t, c.Start(testUpload("A1", "md5-a1"), models.UploadAuthorization{UploadKey: "k1"}, "/tmp/a1.pdf"))

	// Simulated crash between enqueue and completion: a new process loads
	// the same state file and resumes the transfer.
	restartedSession := &fakeSession{}
	restarted := newTestCoordinator(t, path, restartedSession, (&registerRecorder{}).register)
	require.NoError(t, restarted.Recover())

	require.Len(t, restartedSession.tasks(), 1)
	assert.Equal(t, "A1", restartedSession.tasks()[0].Upload.ItemKey)
}

func TestCoordinator_InvalidateCancelsAndClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.json")
	session := &fakeSession{}
	c := newTestCoordinator(t, path, session, (&registerRecorder{}).register)

	require.NoError(t, c.Start(testUpload("A1", "md5-a1"), models.UploadAuthorization{}, "/tmp/a1.pdf"))
	require.NoError(t, c.Start(testUpload("A2", "md5-a2"), models.UploadAuthorization{}, "/tmp/a2.pdf"))

	c.Invalidate()

	assert.Empty(t, c.InFlightHashes())
	session.mu.Lock()
	cancelled := len(session.cancelled)
	session.mu.Unlock()
	assert.Equal(t, 2, cancelled)

	reloaded := newTestCoordinator(t, path, &fakeSession{}, (&registerRecorder{}).register)
	assert.Empty(t, reloaded.InFlightHashes())
}

func TestCoordinator_ExpiredGrantAbandonsReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.json")
	session := &fakeSession{grant: time.Nanosecond}
	reg := &registerRecorder{}
	c := newTestCoordinator(t, path, session, reg.register)

	require.NoError(t, c.Start(testUpload("A1", "md5-a1"), models.UploadAuthorization{UploadKey: "k1"}, "/tmp/a1.pdf"))
	c.TaskCompleted(session.tasks()[0].ID, nil)

	// The grant is already expired when replay wakes: the registration is
	// deferred, not failed, and the record keeps deduplicating.
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, reg.callCount())
	assert.Contains(t, c.InFlightHashes(), "md5-a1")
	assert.Empty(t, c.CollectFailures())
}

func TestCoordinator_UnknownTaskCompletionIsIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.json")
	c := newTestCoordinator(t, path, &fakeSession{}, (&registerRecorder{}).register)

	c.TaskCompleted("no-such-task", nil)
	assert.Empty(t, c.CollectFailures())
}
