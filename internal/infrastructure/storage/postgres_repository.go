package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsBroadcaster/internal/domain"
	"NewsBroadcaster/internal/ports"
)

// PostgresRepository persists broadcast runs and suppressed dedup members
// into Postgres for audit.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.BroadcastRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveRun stores the run snapshot plus one row per suppressed item.
func (r *PostgresRepository) SaveRun(ctx context.Context, run domain.BroadcastRun) error {
	if r.db == nil {
		return nil
	}

	query, args, err := r.builder.
		Insert("broadcast_runs").
		Columns("id", "generated_at", "estimated_seconds", "truncated", "script").
		Values(run.ID, run.GeneratedAt, run.EstimatedSeconds, run.Truncated, run.Script).
		Suffix(`ON CONFLICT (id) DO UPDATE
                SET script = EXCLUDED.script,
                    estimated_seconds = EXCLUDED.estimated_seconds,
                    truncated = EXCLUDED.truncated`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(run.Suppressed) == 0 {
		return nil
	}

	insert := r.builder.
		Insert("suppressed_items").
		Columns("run_id", "source", "headline", "body", "identity", "item_timestamp")
	for _, item := range run.Suppressed {
		insert = insert.Values(run.ID, string(item.Source), item.Headline, item.Body, item.Identity, item.Timestamp)
	}

	query, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("build suppressed insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert suppressed items: %w", err)
	}
	return nil
}

// AlreadyDelivered reports whether a run was stored for the given day.
func (r *PostgresRepository) AlreadyDelivered(ctx context.Context, day time.Time) (bool, error) {
	if r.db == nil {
		return false, nil
	}

	query, args, err := r.builder.
		Select("COUNT(1)").
		From("broadcast_runs").
		Where(sq.Expr("generated_at::date = ?::date", day)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build delivered query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("query delivered: %w", err)
	}
	return count > 0, nil
}
