package syncer

import (
	"context"
	"errors"

	"github.com/ObjectiveCharm/bibsync/internal/adapter"
	"github.com/ObjectiveCharm/bibsync/internal/background"
	"github.com/ObjectiveCharm/bibsync/internal/store"
	"github.com/ObjectiveCharm/bibsync/models"
)

// uploadAttachments runs the attachment phase for one library. Small files
// transfer inline through the composite upload action; files at or above
// the background threshold are authorized here and handed to the
// coordinator, which owns the transfer and the deferred registration.
// Returned errors are fatal for the run.
func (c *Controller) uploadAttachments(ctx context.Context, library models.LibraryIdentifier, failures models.SyncFailures) error {
	var inFlight map[string]struct{}
	if c.uploader != nil {
		inFlight = c.uploader.InFlightHashes()
	}

	load := &loadUploadDataAction{uploads: c.stores.Uploads, library: library, inFlight: inFlight}
	if err := c.runAction(ctx, load); err != nil {
		if classify(err) == classFatal {
			return err
		}
		failures.Add(models.SyncObjectItems, "", err)
		return nil
	}
	if len(load.result) == 0 {
		return nil
	}

	c.emit(Progress{State: StateSyncingLibrary, Phase: PhaseUploading, Library: library.String(), Total: len(load.result)})

	for i, upload := range load.result {
		if ctx.Err() != nil {
			return nil
		}

		if c.uploader != nil && c.uploadThreshold > 0 && upload.Size >= c.uploadThreshold {
			if err := c.startBackgroundUpload(ctx, upload); err != nil {
				if classify(err) == classFatal {
					return err
				}
				failures.Add(models.SyncObjectItems, upload.ItemKey, err)
			}
			continue
		}

		total := upload.Size
		transfer := &uploadAttachmentAction{
			api:     c.api,
			objects: c.stores.Objects,
			uploads: c.stores.Uploads,
			files:   c.files,
			upload:  upload,
			progress: func(sent, _ int64) {
				c.emit(Progress{
					State:      StateSyncingLibrary,
					Phase:      PhaseUploading,
					Library:    library.String(),
					Done:       i,
					Total:      len(load.result),
					BytesSent:  sent,
					BytesTotal: total,
				})
			},
		}
		if err := c.runAction(ctx, transfer); err != nil {
			if classify(err) == classFatal {
				return err
			}
			failures.Add(models.SyncObjectItems, upload.ItemKey, err)
			continue
		}

		c.emit(Progress{State: StateSyncingLibrary, Phase: PhaseUploading, Library: library.String(), Done: i + 1, Total: len(load.result)})
	}

	return nil
}

// startBackgroundUpload performs the cheap, foreground part of a large
// upload (eligibility checks and authorization) and delegates the transfer
// to the coordinator. After the handoff the sync run moves on; the
// registration happens from the coordinator's replay phase, possibly in a
// later process lifetime.
func (c *Controller) startBackgroundUpload(ctx context.Context, upload models.AttachmentUpload) error {
	item, err := c.stores.Objects.Object(ctx, upload.Library, models.SyncObjectItems, upload.ItemKey)
	if err != nil && !errors.Is(err, store.ErrObjectNotFound) {
		return err
	}
	if errors.Is(err, store.ErrObjectNotFound) || !item.ChangedFields.Empty() {
		return &AttachmentError{Err: ErrItemNotSubmitted, ItemKey: upload.ItemKey, Title: item.Title}
	}

	ext := fileExt(upload.Filename)
	size, err := c.files.Size(upload.Library, upload.ItemKey, ext)
	if err != nil || size == 0 {
		return &AttachmentError{Err: ErrAttachmentMissing, ItemKey: upload.ItemKey, Title: item.Title}
	}

	auth, err := c.api.AuthorizeUpload(ctx, upload)
	if err != nil {
		return err
	}
	if auth.Exists {
		return c.stores.Uploads.MarkUploaded(ctx, upload.Library, upload.ItemKey, 0)
	}

	upload.UploadKey = auth.UploadKey
	return c.uploader.Start(upload, auth, c.files.Path(upload.Library, upload.ItemKey, ext))
}

// NewRegisterUploadFunc returns the registration step of the upload flow
// in the function form the background coordinator replays: register the
// finished upload with the server, then mark the attachment uploaded
// locally with the version the server assigned.
func NewRegisterUploadFunc(api adapter.Client, uploads store.UploadStore) background.RegisterFunc {
	return func(ctx context.Context, upload models.AttachmentUpload, uploadKey string) error {
		version, err := api.RegisterUpload(ctx, upload, uploadKey)
		if err != nil {
			return err
		}
		return uploads.MarkUploaded(ctx, upload.Library, upload.ItemKey, version)
	}
}
