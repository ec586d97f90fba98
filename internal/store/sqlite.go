package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/discrepancy-api/internal/model"
)

// SQLiteStore persists the table in SQLite using modernc.org/sqlite.
// Records have no fixed schema, so cells are stored one row each with
// explicit row/column positions and a kind tag that round-trips the value
// type exactly.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and ensures the
// cells table exists.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	const migration = `
CREATE TABLE IF NOT EXISTS cells (
	row_idx INTEGER NOT NULL,
	col_idx INTEGER NOT NULL,
	field   TEXT NOT NULL,
	kind    TEXT NOT NULL,
	value   TEXT,
	PRIMARY KEY (row_idx, col_idx)
);`
	if _, err := db.Exec(migration); err != nil {
		db.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "sqlite: migrate")
	}

	return &SQLiteStore{db: db}, nil
}

// LoadTable reads every cell ordered by position and rebuilds the table.
func (s *SQLiteStore) LoadTable(ctx context.Context) (*model.Table, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT row_idx, field, kind, value FROM cells ORDER BY row_idx, col_idx`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query cells")
	}
	defer rows.Close() //nolint:errcheck

	table := model.NewTable()
	lastRow := -1
	var rec *model.Record

	for rows.Next() {
		var rowIdx int
		var field, kind string
		var value sql.NullString
		if err := rows.Scan(&rowIdx, &field, &kind, &value); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan cell")
		}

		if rowIdx != lastRow {
			rec = model.NewRecord()
			table.Append(rec)
			lastRow = rowIdx
		}

		switch kind {
		case "null":
			rec.Set(field, nil)
		case "number":
			rec.Set(field, model.ParseValue(value.String))
		default:
			rec.Set(field, value.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate cells")
	}

	return table, nil
}

// SaveTable replaces the stored table in a single transaction.
func (s *SQLiteStore) SaveTable(ctx context.Context, t *model.Table) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM cells`); err != nil {
		return eris.Wrap(err, "sqlite: clear cells")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cells (row_idx, col_idx, field, kind, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for rowIdx, rec := range t.Records {
		for colIdx, field := range rec.Fields() {
			v, _ := rec.Get(field)
			kind := "string"
			switch v.(type) {
			case nil:
				kind = "null"
			case float64:
				kind = "number"
			}
			if _, err := stmt.ExecContext(ctx, rowIdx, colIdx, field, kind, model.FormatValue(v)); err != nil {
				return eris.Wrapf(err, "sqlite: insert cell %d/%q", rowIdx, field)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return eris.Wrap(err, "sqlite: commit save")
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
