package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/chanport/channels-bot/internal/domain"
)

type postgresGroupRepository struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresGroupRepository creates a SQL-backed group repository.
func NewPostgresGroupRepository(db *sql.DB, log *slog.Logger) GroupRepository {
	return &postgresGroupRepository{db: db, log: log}
}

func (r *postgresGroupRepository) List(ctx context.Context) ([]domain.Group, error) {
	const query = `
		SELECT name, link
		FROM groups
		ORDER BY created_at, name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logError("list groups", err)
		return nil, fmt.Errorf("select groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.Group
	for rows.Next() {
		var g domain.Group
		if err := rows.Scan(&g.Name, &g.Link); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}

	return groups, nil
}

func (r *postgresGroupRepository) Upsert(ctx context.Context, group domain.Group) error {
	const query = `
		INSERT INTO groups (name, link)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET link = EXCLUDED.link
	`

	if _, err := r.db.ExecContext(ctx, query, group.Name, group.Link); err != nil {
		r.logError("upsert group", err)
		return fmt.Errorf("upsert group: %w", err)
	}

	return nil
}

func (r *postgresGroupRepository) Remove(ctx context.Context, name string) error {
	const query = `DELETE FROM groups WHERE name = $1`

	result, err := r.db.ExecContext(ctx, query, name)
	if err != nil {
		r.logError("remove group", err)
		return fmt.Errorf("delete group: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete group rows affected: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *postgresGroupRepository) logError(operation string, err error) {
	if r.log != nil {
		r.log.Error("group repository operation failed",
			slog.String("operation", operation), slog.Any("error", err))
	}
}
