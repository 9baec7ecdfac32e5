package repository

import (
	"database/sql"
	"log/slog"
)

// NewFileStores bundles the file-backed repositories rooted at dir.
func NewFileStores(dir string, log *slog.Logger) Stores {
	return Stores{
		Groups:   NewFileGroupRepository(dir, log),
		Users:    NewFileUserLedger(dir, log),
		Payments: NewFilePaymentRepository(dir, log),
		Amount:   NewFileAmountRepository(dir, log),
	}
}

// NewPostgresStores bundles the SQL-backed repositories over one database handle.
func NewPostgresStores(db *sql.DB, log *slog.Logger) Stores {
	return Stores{
		Groups:   NewPostgresGroupRepository(db, log),
		Users:    NewPostgresUserLedger(db, log),
		Payments: NewPostgresPaymentRepository(db, log),
		Amount:   NewPostgresAmountRepository(db, log),
	}
}
