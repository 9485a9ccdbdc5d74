// Package store persists company snapshots, the evaluation journal and
// BDESE progress in SQLite or PostgreSQL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrUnknownDriver = errors.New("store: unknown driver")
)

// Dialect is the SQL flavour of a database handle.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// DB is a database handle with its dialect.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Open opens driver ("sqlite" or "postgres") at dsn and creates the schema.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	d := Dialect(driver)
	switch d {
	case SQLite, Postgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if d == SQLite {
		// an in-memory database lives in a single connection
		sqlDB.SetMaxOpenConns(1)
	}
	db := Wrap(sqlDB, d)
	if err := db.Migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Wrap attaches a dialect to an open handle without migrating it.
func Wrap(db *sql.DB, d Dialect) *DB {
	return &DB{DB: db, dialect: d}
}

func (db *DB) Dialect() Dialect { return db.dialect }

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (db *DB) rebind(query string) string {
	if db.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS snapshots (
		siren TEXT NOT NULL,
		annee INTEGER NOT NULL,
		data TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (siren, annee)
	)`,
	`CREATE TABLE IF NOT EXISTS evaluations (
		report_id TEXT NOT NULL,
		siren TEXT NOT NULL,
		annee INTEGER NOT NULL,
		reglementation TEXT NOT NULL,
		status INTEGER NOT NULL,
		prochaine_echeance TEXT NOT NULL DEFAULT '',
		ruleset TEXT NOT NULL,
		digest TEXT NOT NULL,
		evaluated_at TEXT NOT NULL,
		PRIMARY KEY (report_id, reglementation)
	)`,
	`CREATE INDEX IF NOT EXISTS evaluations_siren ON evaluations (siren, annee)`,
	`CREATE TABLE IF NOT EXISTS bdese (
		siren TEXT NOT NULL,
		annee INTEGER NOT NULL,
		type INTEGER NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		complete BOOLEAN NOT NULL DEFAULT FALSE,
		indicateurs TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (siren, annee, user_id)
	)`,
}

// Migrate creates missing tables. It is idempotent.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
