package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"

	"Postboard/internal/core/posts"
)

// querier is the subset of *sql.DB and *sql.Tx the repositories need
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type postgresStore struct {
	db          *sql.DB
	posts       posts.Repository
	authorships posts.AuthorshipRepository
}

// NewStore creates a posts.Store backed by PostgreSQL
func NewStore(db *sql.DB) posts.Store {
	return &postgresStore{
		db:          db,
		posts:       &postgresPostRepo{db: db},
		authorships: &postgresAuthorshipRepo{db: db},
	}
}

func (s *postgresStore) Posts() posts.Repository {
	return s.posts
}

func (s *postgresStore) Authorships() posts.AuthorshipRepository {
	return s.authorships
}

// WithinTx runs fn with repositories bound to a single transaction
func (s *postgresStore) WithinTx(
	ctx context.Context,
	fn func(ctx context.Context, postRepo posts.Repository, authorRepo posts.AuthorshipRepository) error,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && rollbackErr != sql.ErrTxDone {
			log.Printf("Failed to rollback transaction: %v", rollbackErr)
		}
	}()

	if err := fn(ctx, &postgresPostRepo{db: tx}, &postgresAuthorshipRepo{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign_key_violation (23503)
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
