// Package manifest records translated statements in a SQLite database so
// that generated call sites can be traced back to their source.
package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/funvibe/esqlpp/internal/translate"
)

const schema = `
CREATE TABLE IF NOT EXISTS units (
	id            TEXT PRIMARY KEY,
	file          TEXT NOT NULL,
	translated_at TEXT NOT NULL,
	errors        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS statements (
	unit_id TEXT NOT NULL REFERENCES units(id),
	seq     INTEGER NOT NULL,
	line    INTEGER NOT NULL,
	kind    TEXT NOT NULL,
	serial  INTEGER NOT NULL,
	text    TEXT NOT NULL,
	PRIMARY KEY (unit_id, seq)
);`

// Unit describes one translated source file.
type Unit struct {
	ID     string
	File   string
	Errors int
}

// Store is an open manifest database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the manifest at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema in %s: %w", path, err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordUnit replaces everything stored for unit with records.
func (s *Store) RecordUnit(ctx context.Context, unit Unit, records []translate.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM statements WHERE unit_id = ?`, unit.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM units WHERE id = ?`, unit.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO units (id, file, translated_at, errors) VALUES (?, ?, ?, ?)`,
		unit.ID, unit.File, s.now().UTC().Format(time.RFC3339), unit.Errors); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO statements (unit_id, seq, line, kind, serial, text) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, rec := range records {
		if _, err = stmt.ExecContext(ctx, unit.ID, i, rec.Line, string(rec.Kind), rec.Serial, rec.Text); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LookupUnit returns the stored unit with id, or false.
func (s *Store) LookupUnit(ctx context.Context, id string) (Unit, bool, error) {
	var u Unit
	err := s.db.QueryRowContext(ctx,
		`SELECT id, file, errors FROM units WHERE id = ?`, id).Scan(&u.ID, &u.File, &u.Errors)
	if err == sql.ErrNoRows {
		return Unit{}, false, nil
	}
	if err != nil {
		return Unit{}, false, err
	}
	return u, true, nil
}

// Statements returns the records stored for a unit in source order.
func (s *Store) Statements(ctx context.Context, unitID string) ([]translate.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT line, kind, serial, text FROM statements WHERE unit_id = ? ORDER BY seq`, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []translate.Record
	for rows.Next() {
		var rec translate.Record
		var kind string
		if err := rows.Scan(&rec.Line, &kind, &rec.Serial, &rec.Text); err != nil {
			return nil, err
		}
		rec.Kind = translate.StatementKind(kind)
		out = append(out, rec)
	}
	return out, rows.Err()
}
