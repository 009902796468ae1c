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

type postgresPostRepo struct {
	db querier
}

// NewPostRepository creates a new PostgreSQL post repository
func NewPostRepository(db *sql.DB) posts.Repository {
	return &postgresPostRepo{db: db}
}

const postColumns = `p.id, p.text, p.tags, p.reads, p.likes, p.popularity, p.created_at, p.updated_at`

// Create inserts a new post into the posts table
// Metrics start at their column defaults
func (r *postgresPostRepo) Create(ctx context.Context, post *posts.Post) error {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		INSERT INTO posts (text, tags, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING id, reads, likes, popularity, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query, post.Text, pq.Array(tags)).Scan(
		&post.ID, &post.Reads, &post.Likes, &post.Popularity,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	post.Tags = tags

	return nil
}

// GetByID retrieves a post by its primary key
func (r *postgresPostRepo) GetByID(ctx context.Context, id int64) (*posts.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts p WHERE p.id = $1`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, posts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}

	return post, nil
}

// ListByAuthor retrieves every post linked to the author through user_posts
func (r *postgresPostRepo) ListByAuthor(ctx context.Context, authorID int64) ([]*posts.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts p
		INNER JOIN user_posts up ON up.post_id = p.id
		WHERE up.user_id = $1
		ORDER BY p.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to query author posts: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("WARN: failed to close rows: %v", err)
		}
	}()

	result := []*posts.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan author post: %w", err)
		}
		result = append(result, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating author posts results: %w", err)
	}

	return result, nil
}

// Update writes the post's text and tags back and bumps updated_at
func (r *postgresPostRepo) Update(ctx context.Context, post *posts.Post) error {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}

	query := `
		UPDATE posts
		SET text = $2, tags = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query, post.ID, post.Text, pq.Array(tags)).Scan(&post.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return posts.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	post.Tags = tags

	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(row rowScanner) (*posts.Post, error) {
	var (
		post posts.Post
		tags pq.StringArray
	)

	err := row.Scan(
		&post.ID, &post.Text, &tags,
		&post.Reads, &post.Likes, &post.Popularity,
		&post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	post.Tags = []string(tags)
	if post.Tags == nil {
		post.Tags = []string{}
	}

	return &post, nil
}
