package db

import (
	"context"
	"fmt"
)

// sqliteSchema is the SQLite schema, one statement per entry.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS costumes (
    seq         INTEGER PRIMARY KEY AUTOINCREMENT,
    id          TEXT NOT NULL UNIQUE,
    status      TEXT NOT NULL DEFAULT '',
    first_name  TEXT NOT NULL DEFAULT '',
    last_name   TEXT NOT NULL DEFAULT '',
    email       TEXT NOT NULL DEFAULT '',
    city        TEXT NOT NULL DEFAULT '',
    image_url   TEXT NOT NULL DEFAULT '',
    title       TEXT NOT NULL DEFAULT '',
    price       TEXT NOT NULL DEFAULT '',
    size        TEXT NOT NULL DEFAULT '',
    style       TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_costumes_status ON costumes(status)`,
	`CREATE TABLE IF NOT EXISTS costume_photos (
    costume_id TEXT PRIMARY KEY REFERENCES costumes(id) ON DELETE CASCADE,
    image      BLOB NOT NULL,
    thumb      BLOB NOT NULL,
    mime       TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
}

// postgresSchema mirrors sqliteSchema with PostgreSQL types.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS costumes (
    seq         BIGSERIAL PRIMARY KEY,
    id          TEXT NOT NULL UNIQUE,
    status      TEXT NOT NULL DEFAULT '',
    first_name  TEXT NOT NULL DEFAULT '',
    last_name   TEXT NOT NULL DEFAULT '',
    email       TEXT NOT NULL DEFAULT '',
    city        TEXT NOT NULL DEFAULT '',
    image_url   TEXT NOT NULL DEFAULT '',
    title       TEXT NOT NULL DEFAULT '',
    price       TEXT NOT NULL DEFAULT '',
    size        TEXT NOT NULL DEFAULT '',
    style       TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_costumes_status ON costumes(status)`,
	`CREATE TABLE IF NOT EXISTS costume_photos (
    costume_id TEXT PRIMARY KEY REFERENCES costumes(id) ON DELETE CASCADE,
    image      BYTEA NOT NULL,
    thumb      BYTEA NOT NULL,
    mime       TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
}

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(ctx context.Context, d *DB) error {
	stmts := sqliteSchema
	if d.Dialect == Postgres {
		stmts = postgresSchema
	}

	for i, stmt := range stmts {
		if _, err := d.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema (statement %d): %w", i+1, err)
		}
	}
	return nil
}
