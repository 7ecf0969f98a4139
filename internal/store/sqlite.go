package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
	Register("sqlite", newSQLiteStore)
}

func sqliteDialect(table string) dialect {
	quoted := `"` + table + `"`
	return dialect{
		driver: "sqlite",
		createTable: `CREATE TABLE IF NOT EXISTS ` + quoted + ` (
			"id" INTEGER NOT NULL PRIMARY KEY,
			"tmdb_id" INTEGER NOT NULL,
			"imdb_id" INTEGER NOT NULL
		)`,
		insert: `INSERT INTO ` + quoted + ` ("id", "tmdb_id", "imdb_id") VALUES (:id, :tmdb_id, :imdb_id)`,
		upsert: `INSERT INTO ` + quoted + ` ("id", "tmdb_id", "imdb_id") VALUES (:id, :tmdb_id, :imdb_id) ` +
			`ON CONFLICT ("id") DO UPDATE SET "tmdb_id" = excluded."tmdb_id", "imdb_id" = excluded."imdb_id"`,
		get:   `SELECT "id", "tmdb_id", "imdb_id" FROM ` + quoted + ` WHERE "id" = ?`,
		count: `SELECT COUNT(*) FROM ` + quoted,
	}
}

func newSQLiteStore(ctx context.Context, cfg Config) (Store, error) {
	path := cfg.DSN
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		return nil, fmt.Errorf("sqlite: database path is required")
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// Pragmas are per connection; keep exactly one.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	return &sqlStore{db: db, table: cfg.Table, dialect: sqliteDialect(cfg.Table)}, nil
}
