package posts

import (
	"encoding/json"
	"time"
)

// Sort fields accepted by ListPosts
const (
	SortByID         = "id"
	SortByReads      = "reads"
	SortByLikes      = "likes"
	SortByPopularity = "popularity"
)

// Sort directions accepted by ListPosts
const (
	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

// Post represents a post row in the posts table
// Reads, likes and popularity are engagement metrics maintained outside this API
type Post struct {
	CreatedAt  time.Time `json:"-" db:"created_at"`
	UpdatedAt  time.Time `json:"-" db:"updated_at"`
	Text       string    `json:"text" db:"text"`
	Tags       []string  `json:"tags" db:"tags"`
	ID         int64     `json:"id" db:"id"`
	Reads      int       `json:"reads" db:"reads"`
	Likes      int       `json:"likes" db:"likes"`
	Popularity float64   `json:"popularity" db:"popularity"`
}

// Authorship links a user to a post they authored
// The (UserID, PostID) pair is the whole identity of the row
type Authorship struct {
	UserID int64 `db:"user_id"`
	PostID int64 `db:"post_id"`
}

// CreatePostRequest represents the body of POST /posts
type CreatePostRequest struct {
	Text string   `json:"text" validate:"required"`
	Tags []string `json:"tags,omitempty"`
}

// ListPostsRequest represents the query parameters of GET /posts
// AuthorIDs is the raw comma separated list; the service parses it.
// A nil SortBy or Direction was absent and takes the default; a present empty value is invalid.
type ListPostsRequest struct {
	SortBy    *string `query:"sortBy" validate:"omitnil,oneof=id reads likes popularity"`
	Direction *string `query:"direction" validate:"omitnil,oneof=asc desc"`
	AuthorIDs string  `query:"authorIds" validate:"required"`
}

// ListPostsResponse is the body returned by GET /posts
type ListPostsResponse struct {
	Posts []*Post `json:"posts"`
}

// UpdatePostRequest carries the raw body of PATCH /posts/{postId}
// The body is parsed only after the caller is known to be an author
type UpdatePostRequest struct {
	Body json.RawMessage
}

// patchFields is the wire shape of an update body
// Fields stay raw until each one is type-checked
type patchFields struct {
	Text      json.RawMessage `json:"text"`
	Tags      json.RawMessage `json:"tags"`
	AuthorIDs json.RawMessage `json:"authorIds"`
}

// UpdatedPost is a post together with its resolved author list
type UpdatedPost struct {
	*Post
	AuthorIDs []int64 `json:"authorIds"`
}

// UpdatePostResponse is the body returned by PATCH /posts/{postId}
type UpdatePostResponse struct {
	Post *UpdatedPost `json:"post"`
}

// postPatch holds the decoded, validated fields of an UpdatePostRequest
// A nil field was absent (or JSON null) in the request
type postPatch struct {
	Text      *string
	Tags      *[]string
	AuthorIDs *[]int64
}
