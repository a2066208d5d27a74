package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ObjectiveCharm/bibsync/internal/logger"
	"github.com/ObjectiveCharm/bibsync/models"
)

// uploadRepository is the sqlite-backed implementation of [UploadStore].
// A row exists for every attachment whose bytes were not yet registered
// with the server.
type uploadRepository struct {
	*DB
	logger *logger.Logger
}

func NewUploadRepository(db *DB, log *logger.Logger) UploadStore {
	return &uploadRepository{DB: db, logger: log}
}

func (r *uploadRepository) PendingUploads(ctx context.Context, library models.LibraryIdentifier) ([]models.AttachmentUpload, error) {
	query, args, err := sq.Select("item_key", "filename", "md5", "mtime", "size").
		From("uploads").
		Where(sq.Eq{"library": library.String()}).
		OrderBy("item_key").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending uploads query: %w", err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var uploads []models.AttachmentUpload
	for rows.Next() {
		u := models.AttachmentUpload{Library: library}
		if err = rows.Scan(&u.ItemKey, &u.Filename, &u.MD5, &u.Mtime, &u.Size); err != nil {
			return nil, fmt.Errorf("scan pending upload: %w", err)
		}
		uploads = append(uploads, u)
	}
	return uploads, rows.Err()
}

func (r *uploadRepository) QueueUpload(ctx context.Context, upload models.AttachmentUpload) error {
	const upsert = `
		INSERT INTO uploads (library, item_key, filename, md5, mtime, size)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (library, item_key) DO UPDATE SET
			filename = excluded.filename,
			md5 = excluded.md5,
			mtime = excluded.mtime,
			size = excluded.size;`

	_, err := r.ExecContext(ctx, upsert,
		upload.Library.String(), upload.ItemKey, upload.Filename,
		upload.MD5, upload.Mtime, upload.Size)
	if err != nil {
		r.logger.Err(err).
			Str("library", upload.Library.String()).
			Str("item_key", upload.ItemKey).
			Msg("failed to queue upload")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}

// MarkUploaded removes the queue row and clears the owning item's dirty
// flag inside one transaction, recording the new item version when the
// server returned one.
func (r *uploadRepository) MarkUploaded(ctx context.Context, library models.LibraryIdentifier, itemKey string, version int) error {
	tx, err := r.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark uploaded tx: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM uploads WHERE library = ? AND item_key = ?;`,
		library.String(), itemKey); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	itemUpdate := `
		UPDATE objects SET changed_fields = ?, sync_state = ?
		WHERE library = ? AND kind = ? AND key = ?;`
	itemArgs := []any{emptyChangedFields, int(models.ObjectSynced), library.String(), string(models.SyncObjectItems), itemKey}
	if version > 0 {
		itemUpdate = `
		UPDATE objects SET changed_fields = ?, sync_state = ?, version = ?
		WHERE library = ? AND kind = ? AND key = ?;`
		itemArgs = []any{emptyChangedFields, int(models.ObjectSynced), version, library.String(), string(models.SyncObjectItems), itemKey}
	}
	if _, err = tx.ExecContext(ctx, itemUpdate, itemArgs...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return tx.Commit()
}
