package syncer

import (
	"context"
	"errors"
	"strings"

	"github.com/ObjectiveCharm/bibsync/internal/adapter"
	"github.com/ObjectiveCharm/bibsync/internal/files"
	"github.com/ObjectiveCharm/bibsync/internal/store"
	"github.com/ObjectiveCharm/bibsync/models"
)

// loadUploadDataAction reads the attachments needing upload for a library,
// excluding any whose content hash matches an upload already tracked by
// the background coordinator. The exclusion is what guarantees at most one
// authorized-but-unregistered upload per attachment.
type loadUploadDataAction struct {
	uploads  store.UploadStore
	library  models.LibraryIdentifier
	inFlight map[string]struct{}

	result []models.AttachmentUpload
}

func (a *loadUploadDataAction) do(ctx context.Context) error {
	pending, err := a.uploads.PendingUploads(ctx, a.library)
	if err != nil {
		return err
	}

	a.result = a.result[:0]
	for _, upload := range pending {
		if _, tracked := a.inFlight[upload.MD5]; tracked {
			continue
		}
		a.result = append(a.result, upload)
	}
	return nil
}

// uploadAttachmentAction is the composite upload action: verify the owning
// item was submitted, verify the local file exists and is non-empty,
// authorize, short-circuit when the content already exists remotely,
// transfer the bytes, register, and mark the attachment uploaded.
//
// Attachment bodies can be large, so the action reports a live byte count
// through progress in addition to its completion.
type uploadAttachmentAction struct {
	api      adapter.Client
	objects  store.ObjectStore
	uploads  store.UploadStore
	files    *files.Storage
	upload   models.AttachmentUpload
	progress func(sent, total int64)
}

func (a *uploadAttachmentAction) do(ctx context.Context) error {
	item, err := a.objects.Object(ctx, a.upload.Library, models.SyncObjectItems, a.upload.ItemKey)
	if err != nil && !errors.Is(err, store.ErrObjectNotFound) {
		return err
	}

	// An attachment cannot be registered against an item the server does
	// not know about yet.
	if errors.Is(err, store.ErrObjectNotFound) || !item.ChangedFields.Empty() {
		return &AttachmentError{Err: ErrItemNotSubmitted, ItemKey: a.upload.ItemKey, Title: item.Title}
	}

	ext := fileExt(a.upload.Filename)
	size, err := a.files.Size(a.upload.Library, a.upload.ItemKey, ext)
	if err != nil || size == 0 {
		return &AttachmentError{Err: ErrAttachmentMissing, ItemKey: a.upload.ItemKey, Title: item.Title}
	}

	auth, err := a.api.AuthorizeUpload(ctx, a.upload)
	if err != nil {
		return err
	}

	// Content already on the server, matched by hash: no bytes move.
	if auth.Exists {
		return a.uploads.MarkUploaded(ctx, a.upload.Library, a.upload.ItemKey, 0)
	}

	f, err := a.files.Open(a.upload.Library, a.upload.ItemKey, ext)
	if err != nil {
		return &AttachmentError{Err: ErrAttachmentMissing, ItemKey: a.upload.ItemKey, Title: item.Title}
	}
	defer f.Close()

	if err = a.api.UploadFile(ctx, auth, f, size, a.progress); err != nil {
		return err
	}

	version, err := a.api.RegisterUpload(ctx, a.upload, auth.UploadKey)
	if err != nil {
		return err
	}

	return a.uploads.MarkUploaded(ctx, a.upload.Library, a.upload.ItemKey, version)
}

func fileExt(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return filename[idx+1:]
}
