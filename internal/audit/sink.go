// Package audit records a side observation of identifiers idgend has
// issued, for after-the-fact inspection (e.g. "when was this ID minted,
// from which domain"). It is not part of the allocator's state: nothing in
// package idgen reads from it, and losing the audit database never affects
// correctness or uniqueness of future IDs, so it does not reintroduce the
// persistence this system's core explicitly excludes.
//
// Grounded on the teacher repository's examples/database/main.go, which
// stores snowflake.ID values directly via database/sql using the ID type's
// driver.Valuer/sql.Scanner implementation, against a mattn/go-sqlite3
// connection — the teacher's own go.mod dependency, otherwise exercised
// only by its examples.
package audit

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sxyafiq/idgen"
)

// Sink writes issued-batch records to a SQLite database.
type Sink struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures its schema exists.
func Open(path string) (*Sink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("audit: opening %s: %w", path, err)
	}
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS issued_batches (
			id          INTEGER PRIMARY KEY,
			domain      INTEGER NOT NULL,
			instance_id INTEGER NOT NULL,
			issued_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("audit: creating schema: %w", err)
	}
	return &Sink{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Sink) Close() error { return s.db.Close() }

// RecordBatch inserts one row per identifier in ids, tagged with the
// domain and instance they were issued for. Intended to be called
// asynchronously from the HTTP adapter's request path so a slow or failed
// audit write never delays or fails an identifier-generation response.
func (s *Sink) RecordBatch(ctx context.Context, ids []uint64, domain, instanceID uint64) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("audit: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO issued_batches (id, domain, instance_id) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("audit: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, word := range ids {
		if _, err := stmt.ExecContext(ctx, idgen.ID(word), domain, instanceID); err != nil {
			return fmt.Errorf("audit: insert id %d: %w", word, err)
		}
	}
	return tx.Commit()
}

// Record is one row of recorded history, used by Lookup.
type Record struct {
	ID         idgen.ID
	Domain     uint64
	InstanceID uint64
}

// Lookup returns the recorded domain and instance for a single identifier,
// if present.
func (s *Sink) Lookup(ctx context.Context, id idgen.ID) (Record, bool, error) {
	var rec Record
	err := s.db.QueryRowContext(ctx, `SELECT id, domain, instance_id FROM issued_batches WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Domain, &rec.InstanceID)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("audit: lookup %s: %w", id, err)
	}
	return rec, true, nil
}
