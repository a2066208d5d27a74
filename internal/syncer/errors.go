package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ObjectiveCharm/bibsync/internal/adapter"
	"github.com/ObjectiveCharm/bibsync/internal/store"
)

// Attachment-specific failures. Neither is retried automatically: an
// unsubmitted item must sync first, and a missing file needs the user.
var (
	// ErrItemNotSubmitted means the attachment's owning item still carries
	// local changes, so the server cannot accept a file for it yet.
	ErrItemNotSubmitted = errors.New("item not submitted")
	// ErrAttachmentMissing means the local file is absent or empty.
	ErrAttachmentMissing = errors.New("attachment file missing")
)

// AttachmentError decorates an attachment failure with the item title so
// the report can name the attachment in user-visible diagnostics.
type AttachmentError struct {
	Err     error
	ItemKey string
	Title   string
}

func (e *AttachmentError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("%v: %s (%q)", e.Err, e.ItemKey, e.Title)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.ItemKey)
}

func (e *AttachmentError) Unwrap() error { return e.Err }

// errorClass is the controller-boundary classification every action error
// goes through; nothing escapes unclassified.
type errorClass int

const (
	// classReport: recorded in the per-run failure set, sync continues.
	classReport errorClass = iota
	// classTransient: retried per the sync delay scheduler.
	classTransient
	// classConflict: a stale since version; drives the conflict resolver.
	classConflict
	// classFatal: aborts the whole run (auth expiry, broken local store).
	classFatal
)

func classify(err error) errorClass {
	switch {
	case errors.Is(err, adapter.ErrUnauthorized),
		errors.Is(err, store.ErrExecutingQuery):
		return classFatal
	case errors.Is(err, adapter.ErrPreconditionFailed):
		return classConflict
	case errors.Is(err, context.Canceled):
		return classReport
	case adapter.IsTransient(err):
		return classTransient
	default:
		return classReport
	}
}
