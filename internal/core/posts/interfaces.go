package posts

import "context"

// Service defines the business logic interface for posts
// The caller's user ID is passed explicitly; zero means unauthenticated
type Service interface {
	// CreatePost inserts a post and records the caller as its sole author
	CreatePost(ctx context.Context, callerID int64, req CreatePostRequest) (*Post, error)

	// ListPosts returns the posts written by any of the requested authors,
	// each post once, sorted by the requested field
	ListPosts(ctx context.Context, callerID int64, req ListPostsRequest) ([]*Post, error)

	// UpdatePost patches text, tags and/or the author set of a post the caller authored
	UpdatePost(ctx context.Context, callerID, postID int64, req UpdatePostRequest) (*UpdatedPost, error)
}

// Repository defines the data access interface for posts
type Repository interface {
	// Create inserts a post and fills in its generated ID and defaults
	Create(ctx context.Context, post *Post) error

	// GetByID returns ErrNotFound when no post has the given ID
	GetByID(ctx context.Context, id int64) (*Post, error)

	// ListByAuthor returns every post the user authored, ordered by post ID
	ListByAuthor(ctx context.Context, authorID int64) ([]*Post, error)

	// Update writes text and tags back to the row
	Update(ctx context.Context, post *Post) error
}

// AuthorshipRepository defines the data access interface for the user_posts join table
type AuthorshipRepository interface {
	Create(ctx context.Context, authorship Authorship) error

	// ListAuthorIDs returns the user IDs linked to a post, ascending
	ListAuthorIDs(ctx context.Context, postID int64) ([]int64, error)

	DeleteByPost(ctx context.Context, postID int64) error
}

// Store groups the repositories and runs multi-write operations atomically
type Store interface {
	Posts() Repository
	Authorships() AuthorshipRepository

	// WithinTx runs fn against transaction-bound repositories.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, posts Repository, authorships AuthorshipRepository) error) error
}
