package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ObjectiveCharm/bibsync/internal/logger"
	"github.com/ObjectiveCharm/bibsync/models"
)

// versionRepository is the sqlite-backed implementation of [VersionStore].
// One row per (library, kind) holds the last remote version successfully
// merged for that pair.
type versionRepository struct {
	*DB
	logger *logger.Logger
}

func NewVersionRepository(db *DB, log *logger.Logger) VersionStore {
	return &versionRepository{DB: db, logger: log}
}

func (r *versionRepository) Version(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind) (int, error) {
	query, args, err := sq.Select("version").
		From("versions").
		Where(sq.Eq{"library": library.String(), "kind": string(kind)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build version query: %w", err)
	}

	var version int
	err = r.QueryRowContext(ctx, query, args...).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return version, nil
}

// SetVersion inserts or advances the row. The guard in the UPDATE keeps the
// version monotonic even if two sync paths race on the same pair.
func (r *versionRepository) SetVersion(ctx context.Context, library models.LibraryIdentifier, kind models.SyncObjectKind, version int) error {
	current, err := r.Version(ctx, library, kind)
	if err != nil {
		return err
	}
	if version < current {
		return fmt.Errorf("%w: %s/%s %d -> %d", ErrVersionRegression, library, kind, current, version)
	}

	const upsert = `
		INSERT INTO versions (library, kind, version) VALUES (?, ?, ?)
		ON CONFLICT (library, kind) DO UPDATE SET version = excluded.version
		WHERE excluded.version >= versions.version;`

	if _, err = r.ExecContext(ctx, upsert, library.String(), string(kind), version); err != nil {
		r.logger.Err(err).
			Str("library", library.String()).
			Str("kind", string(kind)).
			Int("version", version).
			Msg("failed to store version")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}
