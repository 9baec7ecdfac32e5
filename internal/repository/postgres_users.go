package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/chanport/channels-bot/internal/domain"
)

type postgresUserLedger struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresUserLedger creates a SQL-backed user ledger.
func NewPostgresUserLedger(db *sql.DB, log *slog.Logger) UserLedger {
	return &postgresUserLedger{db: db, log: log}
}

// Append inserts the user once; ON CONFLICT DO NOTHING gives the same
// idempotency the file ledger gets from its scan-before-append.
func (l *postgresUserLedger) Append(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (telegram_id, first_name, username, first_seen)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (telegram_id) DO NOTHING
	`

	result, err := l.db.ExecContext(ctx, query,
		user.TelegramID, user.FirstName, user.Username, user.FirstSeen)
	if err != nil {
		if l.log != nil {
			l.log.Error("failed to append user",
				slog.Int64("user_id", user.TelegramID), slog.Any("error", err))
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected > 0 && l.log != nil {
		l.log.Info("new user registered",
			slog.Int64("user_id", user.TelegramID),
			slog.String("first_name", user.FirstName),
		)
	}

	return nil
}

func (l *postgresUserLedger) List(ctx context.Context) ([]domain.User, error) {
	const query = `
		SELECT telegram_id, first_name, username, first_seen
		FROM users
		ORDER BY first_seen, telegram_id
	`

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		if l.log != nil {
			l.log.Error("failed to list users", slog.Any("error", err))
		}
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.TelegramID, &u.FirstName, &u.Username, &u.FirstSeen); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}
