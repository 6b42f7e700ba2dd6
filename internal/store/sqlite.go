package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite. SQLite has no
// schemas, so a destination maps to the table "<schema>_<table>".
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func sqliteTable(dest Destination) string {
	return dest.Schema + "_" + dest.Table
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS %[1]s (
	_page_url    TEXT,
	_loaded_at   TEXT,
	_location    TEXT NOT NULL,
	_term        TEXT NOT NULL,
	_is_complete TEXT
);

CREATE INDEX IF NOT EXISTS %[2]s ON %[1]s(_location, _term);
`

func (s *SQLiteStore) Migrate(ctx context.Context, dest Destination) error {
	name := sqliteTable(dest)
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(sqliteMigration, quoteIdent(name), quoteIdent("idx_"+name+"_location_term")))
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Find(ctx context.Context, dest Destination, location, term string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT count(*) FROM %s WHERE _location = ? AND _term = ?`, quoteIdent(sqliteTable(dest))),
		location, term,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: find %q/%q", location, term)
	}
	return n, nil
}

func (s *SQLiteStore) Append(ctx context.Context, dest Destination, t *Table) (int64, error) {
	if t.Len() == 0 {
		return 0, nil
	}
	if err := s.Migrate(ctx, dest); err != nil {
		return 0, err
	}
	if err := s.addColumns(ctx, dest, t.Columns); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	cols := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(c)
		marks[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteIdent(sqliteTable(dest)), strings.Join(cols, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	var n int64
	for _, row := range t.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert row %d", n)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return n, nil
}

// addColumns adds a TEXT column for every column the table lacks.
// SQLite has no ADD COLUMN IF NOT EXISTS, so existing names are read first.
func (s *SQLiteStore) addColumns(ctx context.Context, dest Destination, columns []string) error {
	name := sqliteTable(dest)
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, name)
	if err != nil {
		return eris.Wrap(err, "sqlite: table info")
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			rows.Close()
			return eris.Wrap(err, "sqlite: scan table info")
		}
		existing[col] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return eris.Wrap(err, "sqlite: table info iterate")
	}

	for _, c := range columns {
		if existing[c] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s TEXT`, quoteIdent(name), quoteIdent(c))); err != nil {
			return eris.Wrapf(err, "sqlite: add column %s", c)
		}
		existing[c] = true
	}
	return nil
}

func (s *SQLiteStore) Summary(ctx context.Context, dest Destination) ([]LoadSummary, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT _location, _term, count(*), min(_is_complete = 'True'), coalesce(max(_loaded_at), '')
		FROM %s
		GROUP BY _location, _term
		ORDER BY _location, _term`, quoteIdent(sqliteTable(dest))))
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: summarize")
	}
	defer rows.Close()

	var out []LoadSummary
	for rows.Next() {
		var (
			ls       LoadSummary
			complete sql.NullInt64
		)
		if err := rows.Scan(&ls.Location, &ls.Term, &ls.Rows, &complete, &ls.LastLoaded); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan summary")
		}
		ls.Complete = complete.Valid && complete.Int64 == 1
		out = append(out, ls)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: summary iterate")
}
