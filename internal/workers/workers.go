package workers

import "sync"

// Workers aggregates long-lived workers so the application can start them
// in a unified way.
type Workers struct {
	workers []Worker
}

func NewWorkers(ws ...Worker) *Workers {
	return &Workers{workers: ws}
}

func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}

// Pool runs submitted functions on at most size concurrent goroutines.
// The zero value is not usable; construct with NewPool.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

// NewPool returns a Pool bounded to size concurrent tasks. A size below 1
// is treated as 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Submit schedules fn, blocking while the pool is saturated.
func (p *Pool) Submit(fn func()) {
	p.sem <- struct{}{}
	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()
		fn()
	}()
}

// Wait blocks until every submitted task has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}
