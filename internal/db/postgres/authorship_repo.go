package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"Postboard/internal/core/posts"
)

type postgresAuthorshipRepo struct {
	db querier
}

// NewAuthorshipRepository creates a new PostgreSQL repository for the user_posts join table
func NewAuthorshipRepository(db *sql.DB) posts.AuthorshipRepository {
	return &postgresAuthorshipRepo{db: db}
}

// Create links a user to a post
// Re-linking an existing pair is a no-op
func (r *postgresAuthorshipRepo) Create(ctx context.Context, authorship posts.Authorship) error {
	query := `
		INSERT INTO user_posts (user_id, post_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, post_id) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, authorship.UserID, authorship.PostID); err != nil {
		if isForeignKeyViolation(err) {
			return posts.ErrNotFound
		}
		return fmt.Errorf("failed to insert authorship: %w", err)
	}

	return nil
}

// ListAuthorIDs returns the authors of a post ordered by user ID
func (r *postgresAuthorshipRepo) ListAuthorIDs(ctx context.Context, postID int64) ([]int64, error) {
	query := `
		SELECT user_id
		FROM user_posts
		WHERE post_id = $1
		ORDER BY user_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query post authors: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("WARN: failed to close rows: %v", err)
		}
	}()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan post author: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating post authors: %w", err)
	}

	return ids, nil
}

// DeleteByPost removes every author link of a post
func (r *postgresAuthorshipRepo) DeleteByPost(ctx context.Context, postID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_posts WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("failed to delete post authors: %w", err)
	}
	return nil
}
