package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
)

// DefaultTable is the audit table used when none is configured.
const DefaultTable = "audit_log"

// Store implements audit.Store and audit.Reader on PostgreSQL.
// Appends always run on the store's own pool, outside any caller
// transaction: an entry survives a business rollback, and a failed insert
// never aborts the caller's transaction.
type Store struct {
	db    *sql.DB
	table string // quoted identifier
}

// Option configures a Store.
type Option func(*Store)

// WithTable sets the audit table name.
func WithTable(name string) Option {
	return func(s *Store) {
		if name != "" {
			s.table = pq.QuoteIdentifier(name)
		}
	}
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:    db,
		table: pq.QuoteIdentifier(DefaultTable),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// EnsureSchema creates the audit table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			seq            BIGSERIAL,
			id             UUID PRIMARY KEY,
			actor_id       TEXT NOT NULL DEFAULT '',
			action         TEXT NOT NULL,
			resource       TEXT NOT NULL,
			resource_id    TEXT NOT NULL DEFAULT '',
			source_address TEXT NOT NULL,
			user_agent     TEXT NOT NULL DEFAULT '',
			changes        TEXT,
			outcome        TEXT NOT NULL CHECK (outcome IN ('SUCCESS', 'FAILURE')),
			error_detail   TEXT NOT NULL DEFAULT '',
			request_id     TEXT NOT NULL DEFAULT '',
			created_at     TIMESTAMPTZ NOT NULL
		)`, s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

// Append inserts a record. Re-appending the same record id is a no-op.
func (s *Store) Append(ctx context.Context, record audit.Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (
			id, actor_id, action, resource, resource_id, source_address,
			user_agent, changes, outcome, error_detail, request_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`, s.table)

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.ActorID,
		record.Action,
		record.Resource,
		record.ResourceID,
		record.SourceAddress,
		record.UserAgent,
		record.Changes,
		string(record.Outcome),
		record.ErrorDetail,
		record.RequestID,
		record.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListRecent returns the N most recent records, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, actor_id, action, resource, resource_id, source_address,
			   user_agent, changes, outcome, error_detail, request_id, created_at
		FROM %s
		ORDER BY created_at DESC, seq DESC
		LIMIT $1
	`, s.table)

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var (
			rec     audit.Record
			outcome string
			changes sql.NullString
		)
		err := rows.Scan(
			&rec.ID,
			&rec.ActorID,
			&rec.Action,
			&rec.Resource,
			&rec.ResourceID,
			&rec.SourceAddress,
			&rec.UserAgent,
			&changes,
			&outcome,
			&rec.ErrorDetail,
			&rec.RequestID,
			&rec.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		rec.Outcome = audit.Outcome(outcome)
		if changes.Valid {
			c := changes.String
			rec.Changes = &c
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}
	return records, nil
}
