package background

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ObjectiveCharm/bibsync/internal/adapter"
	"github.com/ObjectiveCharm/bibsync/internal/logger"
)

// Delegate receives per-task completion events from a session.
type Delegate interface {
	TaskCompleted(taskID string, taskErr error)
}

// HTTPSession is the in-process implementation of [Session]: each enqueued
// task runs the multipart transfer on its own goroutine through the
// adapter's long-timeout client. On platforms with a real OS background
// transport, an alternative Session implementation bridges to it; the
// coordinator is agnostic.
type HTTPSession struct {
	api   adapter.Client
	grant time.Duration
	log   *logger.Logger

	mu       sync.Mutex
	delegate Delegate
	cancels  map[string]context.CancelFunc
}

// NewHTTPSession builds a session whose extended-execution grant lasts for
// the given duration. The delegate is attached separately because the
// coordinator and session reference each other.
func NewHTTPSession(api adapter.Client, grant time.Duration, log *logger.Logger) *HTTPSession {
	if grant <= 0 {
		grant = 25 * time.Second
	}
	return &HTTPSession{
		api:     api,
		grant:   grant,
		log:     log,
		cancels: make(map[string]context.CancelFunc),
	}
}

// SetDelegate attaches the completion receiver. Must be called before the
// first Enqueue.
func (s *HTTPSession) SetDelegate(d Delegate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delegate = d
}

func (s *HTTPSession) Enqueue(task Task) error {
	s.mu.Lock()
	delegate := s.delegate
	if delegate == nil {
		s.mu.Unlock()
		return fmt.Errorf("session has no delegate")
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancels[task.ID] = cancel
	s.mu.Unlock()

	go s.transfer(ctx, task, delegate)
	return nil
}

func (s *HTTPSession) transfer(ctx context.Context, task Task, delegate Delegate) {
	defer func() {
		s.mu.Lock()
		delete(s.cancels, task.ID)
		s.mu.Unlock()
	}()

	f, err := os.Open(task.FilePath)
	if err != nil {
		delegate.TaskCompleted(task.ID, fmt.Errorf("open attachment file: %w", err))
		return
	}
	defer f.Close()

	err = s.api.UploadFile(ctx, task.Auth, f, task.Upload.Size, nil)
	delegate.TaskCompleted(task.ID, err)
}

func (s *HTTPSession) Cancel(taskID string) {
	s.mu.Lock()
	cancel, ok := s.cancels[taskID]
	s.mu.Unlock()
	if ok {
		cancel()
	}
}

// ExtendedExecution models the OS grant as a deadline: replay work must
// finish inside it or wait for the next launch.
func (s *HTTPSession) ExtendedExecution() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.grant)
}
