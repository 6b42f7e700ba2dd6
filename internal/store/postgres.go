package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/Black-Wealth-Data-Center/bwdc-kwk/internal/db"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// NewPostgres creates a PostgresStore with a small connection pool. The
// loader is sequential, so two connections are plenty.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 2
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. The caller keeps ownership
// of the pool; Close is a no-op.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func pgIdent(dest Destination) pgx.Identifier {
	return pgx.Identifier{dest.Schema, dest.Table}
}

const postgresMigration = `
CREATE SCHEMA IF NOT EXISTS %[1]s;

CREATE TABLE IF NOT EXISTS %[2]s (
	_page_url    TEXT,
	_loaded_at   TEXT,
	_location    TEXT NOT NULL,
	_term        TEXT NOT NULL,
	_is_complete TEXT
);

CREATE INDEX IF NOT EXISTS %[3]s ON %[2]s (_location, _term);
`

func (s *PostgresStore) Migrate(ctx context.Context, dest Destination) error {
	sql := fmt.Sprintf(postgresMigration,
		pgx.Identifier{dest.Schema}.Sanitize(),
		pgIdent(dest).Sanitize(),
		pgx.Identifier{dest.Table + "_location_term_idx"}.Sanitize(),
	)
	_, err := s.pool.Exec(ctx, sql)
	return eris.Wrapf(err, "postgres: migrate %s", dest)
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, dest Destination, location, term string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT count(*) FROM %s WHERE _location = $1 AND _term = $2`, pgIdent(dest).Sanitize()),
		location, term,
	).Scan(&n)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: find %q/%q in %s", location, term, dest)
	}
	return n, nil
}

func (s *PostgresStore) Append(ctx context.Context, dest Destination, t *Table) (int64, error) {
	if t.Len() == 0 {
		return 0, nil
	}
	if err := s.Migrate(ctx, dest); err != nil {
		return 0, err
	}
	if err := s.addColumns(ctx, dest, t.Columns); err != nil {
		return 0, err
	}

	n, err := db.CopyInto(ctx, s.pool, pgIdent(dest), t.Columns, t.Rows)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: append to %s", dest)
	}
	return n, nil
}

// addColumns adds a TEXT column for every business field the table has
// not seen before. Existing columns are left alone.
func (s *PostgresStore) addColumns(ctx context.Context, dest Destination, columns []string) error {
	var clauses []string
	for _, c := range columns {
		if isMetadata(c) {
			continue
		}
		clauses = append(clauses, "ADD COLUMN IF NOT EXISTS "+pgx.Identifier{c}.Sanitize()+" TEXT")
	}
	if len(clauses) == 0 {
		return nil
	}

	sql := fmt.Sprintf("ALTER TABLE %s %s", pgIdent(dest).Sanitize(), strings.Join(clauses, ", "))
	if _, err := s.pool.Exec(ctx, sql); err != nil {
		return eris.Wrapf(err, "postgres: add columns to %s", dest)
	}
	return nil
}

func (s *PostgresStore) Summary(ctx context.Context, dest Destination) ([]LoadSummary, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT _location, _term, count(*),
			coalesce(bool_and(_is_complete = 'True'), false),
			coalesce(max(_loaded_at), '')
		FROM %s
		GROUP BY _location, _term
		ORDER BY _location, _term`, pgIdent(dest).Sanitize()))
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: summarize %s", dest)
	}
	defer rows.Close()

	var out []LoadSummary
	for rows.Next() {
		var ls LoadSummary
		if err := rows.Scan(&ls.Location, &ls.Term, &ls.Rows, &ls.Complete, &ls.LastLoaded); err != nil {
			return nil, eris.Wrap(err, "postgres: scan summary")
		}
		out = append(out, ls)
	}
	return out, eris.Wrap(rows.Err(), "postgres: summary iterate")
}
