package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/ObjectiveCharm/bibsync/models"
)

// syncRunner is the slice of Controller the job needs.
type syncRunner interface {
	Sync(ctx context.Context, typ Type, libraries []models.LibraryIdentifier) *models.SyncReport
}

// Job runs full syncs on a ticker. It is idle until Start is called.
type Job struct {
	controller syncRunner

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewJob(controller *Controller) *Job {
	return &Job{controller: controller}
}

// Start stops any previously running job, then launches a background
// goroutine that performs a full sync of every library each interval. If
// interval is zero or negative it defaults to 5 minutes. The goroutine
// exits when ctx is cancelled or Stop is called.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.controller.Sync(jobCtx, TypeFull, nil)
			}
		}
	}()
}

// Stop cancels the background goroutine's context and blocks until it has
// fully exited. Safe to call when the job is not running.
func (j *Job) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
