// Package pg implements the service stores on PostgreSQL. Mutating calls
// commit the business row and its audit entry in one transaction, so the
// audit trail can never diverge from visible state.
package pg

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"claimspring.org/internal/audit"
)

type Store struct {
	db *sql.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection. Used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func appendAuditTx(ctx context.Context, tx *sql.Tx, entry *audit.Entry) error {
	if entry == nil {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		insert into audit_logs(id, user_id, action, resource_type, resource_id, details, ip_address, created_at)
		values ($1,$2,$3,$4,$5,nullif($6,''),nullif($7,''),$8)
	`, entry.ID, entry.UserID, entry.Action, entry.ResourceType, entry.ResourceID,
		entry.Details, entry.IPAddress, entry.CreatedAt)
	return err
}

// AppendAuditEntry writes a standalone entry (login/logout and other
// actions that have no business row of their own).
func (s *Store) AppendAuditEntry(ctx context.Context, entry *audit.Entry) error {
	_, err := s.db.ExecContext(ctx, `
		insert into audit_logs(id, user_id, action, resource_type, resource_id, details, ip_address, created_at)
		values ($1,$2,$3,$4,$5,nullif($6,''),nullif($7,''),$8)
	`, entry.ID, entry.UserID, entry.Action, entry.ResourceType, entry.ResourceID,
		entry.Details, entry.IPAddress, entry.CreatedAt)
	return err
}
