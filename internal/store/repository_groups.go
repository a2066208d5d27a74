package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ObjectiveCharm/bibsync/internal/logger"
	"github.com/ObjectiveCharm/bibsync/models"
)

// groupRepository is the sqlite-backed implementation of [GroupStore].
type groupRepository struct {
	*DB
	logger *logger.Logger
}

func NewGroupRepository(db *DB, log *logger.Logger) GroupStore {
	return &groupRepository{DB: db, logger: log}
}

func (r *groupRepository) Groups(ctx context.Context) ([]models.Group, error) {
	query, args, err := sq.Select("id", "name", "version", "data", "needs_resync").
		From("groups").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build groups query: %w", err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		var data string
		var needsResync int
		if err = rows.Scan(&g.ID, &g.Name, &g.Version, &data, &needsResync); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		g.Data = []byte(data)
		g.NeedsResync = needsResync != 0
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// StoreGroup upserts the group metadata and clears any pending resync flag;
// a freshly stored group is by definition current.
func (r *groupRepository) StoreGroup(ctx context.Context, group models.Group) error {
	const upsert = `
		INSERT INTO groups (id, name, version, data, needs_resync)
		VALUES (?, ?, ?, ?, 0)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			version = excluded.version,
			data = excluded.data,
			needs_resync = 0;`

	if _, err := r.ExecContext(ctx, upsert, group.ID, group.Name, group.Version, string(group.Data)); err != nil {
		r.logger.Err(err).Int64("group_id", group.ID).Msg("failed to store group")
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}

func (r *groupRepository) MarkGroupForResync(ctx context.Context, groupID int64) error {
	const upsert = `
		INSERT INTO groups (id, needs_resync) VALUES (?, 1)
		ON CONFLICT (id) DO UPDATE SET needs_resync = 1;`

	if _, err := r.ExecContext(ctx, upsert, groupID); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}
