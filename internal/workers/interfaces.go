// Package workers provides abstractions for running background work:
// the Worker interface for long-lived jobs (the periodic sync job), and a
// bounded Pool used by the sync controller to run independent libraries
// concurrently without saturating the network.
package workers

// Worker is implemented by any long-lived background job. Run is expected
// to block for the duration of the work or spawn goroutines internally.
type Worker interface {
	Run()
}
