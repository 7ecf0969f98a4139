package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/Belphemur/MovieLinks/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func init() {
	Register("postgres", newPostgresStore)
}

// postgresStore implements Store with a pgx pool limited to one connection.
type postgresStore struct {
	pool   *pgxpool.Pool
	table  string
	quoted string
}

// postgresDSN builds a postgres:// URL from the discrete connection settings.
func postgresDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:   "/" + cfg.Database,
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	q := url.Values{}
	q.Set("pool_max_conns", "1")
	if secs := int(cfg.ConnectTimeout.Seconds()); secs > 0 {
		q.Set("connect_timeout", strconv.Itoa(secs))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func newPostgresStore(ctx context.Context, cfg Config) (Store, error) {
	pool, err := pgxpool.New(ctx, postgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("cannot connect pgxpool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return &postgresStore{
		pool:   pool,
		table:  cfg.Table,
		quoted: pgx.Identifier{cfg.Table}.Sanitize(),
	}, nil
}

func (s *postgresStore) Driver() string { return "postgres" }

func (s *postgresStore) Table() string { return s.table }

func (s *postgresStore) EnsureTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + s.quoted + ` (
			id      BIGINT PRIMARY KEY,
			tmdb_id BIGINT NOT NULL,
			imdb_id BIGINT NOT NULL
		)
	`
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *postgresStore) statement(mode models.WriteMode) string {
	query := `INSERT INTO ` + s.quoted + ` (id, tmdb_id, imdb_id) VALUES ($1, $2, $3)`
	if mode == models.WriteUpsert {
		query += ` ON CONFLICT (id) DO UPDATE SET tmdb_id = EXCLUDED.tmdb_id, imdb_id = EXCLUDED.imdb_id`
	}
	return query
}

func (s *postgresStore) Write(ctx context.Context, links []models.Link, mode models.WriteMode) (int, error) {
	query := s.statement(mode)

	switch len(links) {
	case 0:
		return 0, nil
	case 1:
		l := links[0]
		if _, err := s.pool.Exec(ctx, query, l.MovieID, l.TMDBID, l.IMDBID); err != nil {
			return 0, writeError(l, err)
		}
		return 1, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, l := range links {
		batch.Queue(query, l.MovieID, l.TMDBID, l.IMDBID)
	}

	br := tx.SendBatch(ctx, batch)
	for _, l := range links {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return 0, writeError(l, err)
		}
	}
	if err := br.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(links), nil
}

func (s *postgresStore) Get(ctx context.Context, movieID int64) (*models.Link, error) {
	query := `SELECT id, tmdb_id, imdb_id FROM ` + s.quoted + ` WHERE id = $1`

	var l models.Link
	err := s.pool.QueryRow(ctx, query, movieID).Scan(&l.MovieID, &l.TMDBID, &l.IMDBID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get link %d: %w", movieID, err)
	}
	return &l, nil
}

func (s *postgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+s.quoted).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return n, nil
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}
