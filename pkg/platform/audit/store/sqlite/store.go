// Package sqlite stores audit records in a local SQLite database for
// single-node installs.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	audit "github.com/ritikyadav10888-oss/force-sports-and-wears-india-sub001/pkg/platform/audit"
)

// Store implements audit.Store and audit.Reader on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for an ephemeral database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite serializes writers; one connection keeps :memory: databases
	// shared and avoids SQLITE_BUSY under concurrent appends.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_log (
			seq            INTEGER PRIMARY KEY AUTOINCREMENT,
			id             TEXT NOT NULL UNIQUE,
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
			created_at     TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("create audit table: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append inserts a record. Re-appending the same record id is a no-op.
func (s *Store) Append(ctx context.Context, record audit.Record) error {
	var changes sql.NullString
	if record.Changes != nil {
		changes = sql.NullString{String: *record.Changes, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (
			id, actor_id, action, resource, resource_id, source_address,
			user_agent, changes, outcome, error_detail, request_id, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		record.ID.String(),
		record.ActorID,
		record.Action,
		record.Resource,
		record.ResourceID,
		record.SourceAddress,
		record.UserAgent,
		changes,
		string(record.Outcome),
		record.ErrorDetail,
		record.RequestID,
		record.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListRecent returns the N most recent records, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_id, action, resource, resource_id, source_address,
			   user_agent, changes, outcome, error_detail, request_id, created_at
		FROM audit_log
		ORDER BY seq DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var (
			rec       audit.Record
			id        string
			outcome   string
			changes   sql.NullString
			createdAt string
		)
		err := rows.Scan(
			&id,
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
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse audit record id: %w", err)
		}
		if rec.Timestamp, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse audit record time: %w", err)
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
