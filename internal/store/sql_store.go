package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Belphemur/MovieLinks/internal/apperrors"
	"github.com/Belphemur/MovieLinks/internal/models"
	"github.com/jmoiron/sqlx"
)

// dialect holds the statements that differ between database/sql drivers.
type dialect struct {
	driver      string
	createTable string
	insert      string // named parameters :id, :tmdb_id, :imdb_id
	upsert      string
	get         string
	count       string
}

// sqlStore implements Store on top of database/sql via sqlx. MySQL and
// SQLite share it.
type sqlStore struct {
	db      *sqlx.DB
	table   string
	dialect dialect
}

func (s *sqlStore) Driver() string { return s.dialect.driver }

func (s *sqlStore) Table() string { return s.table }

func (s *sqlStore) EnsureTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.createTable); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *sqlStore) statement(mode models.WriteMode) string {
	if mode == models.WriteUpsert {
		return s.dialect.upsert
	}
	return s.dialect.insert
}

func (s *sqlStore) Write(ctx context.Context, links []models.Link, mode models.WriteMode) (int, error) {
	switch len(links) {
	case 0:
		return 0, nil
	case 1:
		if _, err := s.db.NamedExecContext(ctx, s.statement(mode), links[0]); err != nil {
			return 0, writeError(links[0], err)
		}
		return 1, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareNamedContext(ctx, s.statement(mode))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, link := range links {
		if _, err := stmt.ExecContext(ctx, link); err != nil {
			return 0, writeError(link, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(links), nil
}

func (s *sqlStore) Get(ctx context.Context, movieID int64) (*models.Link, error) {
	var link models.Link
	if err := s.db.GetContext(ctx, &link, s.dialect.get, movieID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get link %d: %w", movieID, err)
	}
	return &link, nil
}

func (s *sqlStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, s.dialect.count); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table, err)
	}
	return n, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// writeError converts a driver error for link into the package's error types.
func writeError(link models.Link, err error) error {
	if isDuplicate(err) {
		return &apperrors.ErrDuplicateLink{ID: link.MovieID}
	}
	return fmt.Errorf("insert link %d: %w", link.MovieID, err)
}
