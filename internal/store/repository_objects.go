package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ObjectiveCharm/bibsync/internal/logger"
	"github.com/ObjectiveCharm/bibsync/models"
)

const emptyChangedFields = "[]"

// objectRepository is the sqlite-backed implementation of [ObjectStore].
// Each row is one syncable object: the raw remote JSON plus local
// bookkeeping (version, changed fields, deletion flag, sync state).
type objectRepository struct {
	*DB
	logger *logger.Logger
}

func NewObjectRepository(db *DB, log *logger.Logger) ObjectStore {
	return &objectRepository{DB: db, logger: log}
}

var objectColumns = []string{
	"library", "kind", "key", "version", "data",
	"changed_fields", "deleted", "sync_state", "title",
}

func (r *objectRepository) Object(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, key string) (models.ObjectRecord, error) {
	query, args, err := sq.Select(objectColumns...).
		From("objects").
		Where(sq.Eq{"library": library.String(), "kind": string(kind), "key": key}).
		ToSql()
	if err != nil {
		return models.ObjectRecord{}, fmt.Errorf("build object query: %w", err)
	}

	record, err := r.scanObject(r.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ObjectRecord{}, ErrObjectNotFound
	}
	return record, err
}

func (r *objectRepository) KeyVersions(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) (models.KeyVersions, error) {
	query, args, err := sq.Select("key", "version").
		From("objects").
		Where(sq.Eq{"library": library.String(), "kind": string(kind)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build key versions query: %w", err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	versions := make(models.KeyVersions)
	for rows.Next() {
		var key string
		var version int
		if err = rows.Scan(&key, &version); err != nil {
			return nil, fmt.Errorf("scan key version: %w", err)
		}
		versions[key] = version
	}
	return versions, rows.Err()
}

// StoreObjects upserts downloaded objects inside one short transaction.
// Without preferRemote, rows carrying local edits are skipped so a
// conflict replay cannot clobber unsubmitted changes.
func (r *objectRepository) StoreObjects(ctx context.Context, objects []models.ObjectRecord, preferRemote bool) error {
	if len(objects) == 0 {
		return nil
	}

	tx, err := r.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin store objects tx: %w", err)
	}
	defer tx.Rollback()

	const upsert = `
		INSERT INTO objects (library, kind, key, version, data, changed_fields, deleted, sync_state, title)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (library, kind, key) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			changed_fields = excluded.changed_fields,
			deleted = excluded.deleted,
			sync_state = excluded.sync_state,
			title = excluded.title
		WHERE objects.changed_fields = '[]' OR ? = 1;`

	for _, obj := range objects {
		preferFlag := 0
		if preferRemote {
			preferFlag = 1
		}
		_, err = tx.ExecContext(ctx, upsert,
			obj.Library.String(), string(obj.Kind), obj.Key, obj.Version,
			string(obj.Data), emptyChangedFields, 0, int(models.ObjectSynced), obj.Title,
			preferFlag,
		)
		if err != nil {
			r.logger.Err(err).
				Str("library", obj.Library.String()).
				Str("key", obj.Key).
				Msg("failed to store object")
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
	}

	return tx.Commit()
}

func (r *objectRepository) DirtyObjects(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) ([]models.ObjectRecord, error) {
	query, args, err := sq.Select(objectColumns...).
		From("objects").
		Where(sq.Eq{"library": library.String(), "kind": string(kind), "deleted": 0}).
		Where(sq.NotEq{"changed_fields": emptyChangedFields}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build dirty objects query: %w", err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var records []models.ObjectRecord
	for rows.Next() {
		record, err := r.scanObject(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *objectRepository) LocallyDeleted(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) ([]string, error) {
	query, args, err := sq.Select("key").
		From("objects").
		Where(sq.Eq{"library": library.String(), "kind": string(kind), "deleted": 1}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build locally deleted query: %w", err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan locally deleted key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (r *objectRepository) MarkSynced(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, keys []string, version int) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sq.Update("objects").
		Set("changed_fields", emptyChangedFields).
		Set("sync_state", int(models.ObjectSynced)).
		Set("version", version).
		Where(sq.Eq{"library": library.String(), "kind": string(kind), "key": keys}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark synced query: %w", err)
	}

	if _, err = r.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}

func (r *objectRepository) MarkAllSynced(ctx context.Context, library models.LibraryIdentifier) error {
	query, args, err := sq.Update("objects").
		Set("changed_fields", emptyChangedFields).
		Set("sync_state", int(models.ObjectSynced)).
		Where(sq.Eq{"library": library.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark all synced query: %w", err)
	}

	if _, err = r.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}

func (r *objectRepository) ReplaceObjectData(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, key string, data []byte) error {
	query, args, err := sq.Update("objects").
		Set("data", string(data)).
		Set("changed_fields", emptyChangedFields).
		Set("deleted", 0).
		Set("sync_state", int(models.ObjectSynced)).
		Where(sq.Eq{"library": library.String(), "kind": string(kind), "key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build replace object query: %w", err)
	}

	res, err := r.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrObjectNotFound
	}
	return nil
}

func (r *objectRepository) DeleteObjects(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	query, args, err := sq.Delete("objects").
		Where(sq.Eq{"library": library.String(), "kind": string(kind), "key": keys}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete objects query: %w", err)
	}

	if _, err = r.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *objectRepository) scanObject(row rowScanner) (models.ObjectRecord, error) {
	var (
		record        models.ObjectRecord
		libraryKey    string
		kind          string
		data          string
		changedFields string
		deleted       int
		syncState     int
	)

	err := row.Scan(&libraryKey, &kind, &record.Key, &record.Version,
		&data, &changedFields, &deleted, &syncState, &record.Title)
	if err != nil {
		return models.ObjectRecord{}, err
	}

	library, err := models.ParseLibraryIdentifier(libraryKey)
	if err != nil {
		return models.ObjectRecord{}, err
	}

	record.Library = library
	record.Kind = models.SyncObjectKind(kind)
	record.Data = json.RawMessage(data)
	record.Deleted = deleted != 0
	record.State = models.ObjectSyncState(syncState)

	if changedFields != "" && changedFields != emptyChangedFields {
		if err = json.Unmarshal([]byte(changedFields), &record.ChangedFields); err != nil {
			return models.ObjectRecord{}, fmt.Errorf("decode changed fields: %w", err)
		}
	}
	return record, nil
}
