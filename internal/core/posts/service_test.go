package posts

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

// patchBody wraps a raw PATCH body
func patchBody(body string) UpdatePostRequest {
	return UpdatePostRequest{Body: json.RawMessage(body)}
}

func TestCreatePost_Success(t *testing.T) {
	store := newMemStore()
	service := NewPostService(store)

	post, err := service.CreatePost(context.Background(), 7, CreatePostRequest{
		Text: "hello",
		Tags: []string{"travel", "food"},
	})
	require.NoError(t, err)

	assert.NotZero(t, post.ID)
	assert.Equal(t, "hello", post.Text)
	assert.Equal(t, []string{"travel", "food"}, post.Tags)

	stored, err := store.Posts().GetByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", stored.Text)
	assert.Equal(t, []int64{7}, store.authorsOf(post.ID), "creator should be the sole author")
}

func TestCreatePost_DefaultsTagsToEmpty(t *testing.T) {
	service := NewPostService(newMemStore())

	post, err := service.CreatePost(context.Background(), 1, CreatePostRequest{Text: "no tags"})
	require.NoError(t, err)
	assert.NotNil(t, post.Tags)
	assert.Empty(t, post.Tags)
}

func TestCreatePost_MissingText(t *testing.T) {
	store := newMemStore()
	service := NewPostService(store)

	_, err := service.CreatePost(context.Background(), 1, CreatePostRequest{Tags: []string{"a"}})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "Must provide text for the new post", ValidationMessage(err))
	assert.Empty(t, store.posts, "nothing should be persisted")
	assert.Empty(t, store.authorships)
}

func TestCreatePost_RequiresCaller(t *testing.T) {
	store := newMemStore()
	service := NewPostService(store)

	_, err := service.CreatePost(context.Background(), 0, CreatePostRequest{Text: "hello"})
	assert.ErrorIs(t, err, ErrAuthRequired)
	assert.Empty(t, store.posts)
}

func TestCreatePost_AuthorshipFailureRollsBack(t *testing.T) {
	store := newMemStore()
	store.failAuthorshipCreate = true
	service := NewPostService(store)

	_, err := service.CreatePost(context.Background(), 1, CreatePostRequest{Text: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errInjected)
	assert.Empty(t, store.posts, "post insert should roll back with the authorship insert")
}

func TestListPosts_UnionWithoutDuplicates(t *testing.T) {
	store := newMemStore()
	a := store.seedPost(Post{Text: "A"}, 1)
	b := store.seedPost(Post{Text: "B"}, 1, 2)
	c := store.seedPost(Post{Text: "C"}, 2)
	store.seedPost(Post{Text: "D"}, 3)
	service := NewPostService(store)

	result, err := service.ListPosts(context.Background(), 1, ListPostsRequest{AuthorIDs: "1,2"})
	require.NoError(t, err)

	ids := postIDs(result)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, ids)
}

func TestListPosts_SortByLikesDesc(t *testing.T) {
	store := newMemStore()
	store.seedPost(Post{Text: "low", Likes: 1}, 1)
	store.seedPost(Post{Text: "high", Likes: 50}, 2)
	store.seedPost(Post{Text: "mid", Likes: 10}, 1)
	store.seedPost(Post{Text: "mid-too", Likes: 10}, 2)
	service := NewPostService(store)

	result, err := service.ListPosts(context.Background(), 1, ListPostsRequest{
		AuthorIDs: "1, 2",
		SortBy:    strPtr(SortByLikes),
		Direction: strPtr(DirectionDesc),
	})
	require.NoError(t, err)
	require.Len(t, result, 4)

	for i := 1; i < len(result); i++ {
		assert.GreaterOrEqual(t, result[i-1].Likes, result[i].Likes, "likes should be non-increasing")
	}
	assert.Equal(t, "high", result[0].Text)
	assert.Equal(t, "mid", result[1].Text, "ties fall back to ascending id")
	assert.Equal(t, "mid-too", result[2].Text)
}

func TestListPosts_DefaultsToIDAscending(t *testing.T) {
	store := newMemStore()
	store.seedPost(Post{ID: 30, Text: "x"}, 1)
	store.seedPost(Post{ID: 10, Text: "y"}, 1)
	store.seedPost(Post{ID: 20, Text: "z"}, 1)
	service := NewPostService(store)

	result, err := service.ListPosts(context.Background(), 1, ListPostsRequest{AuthorIDs: "1"})
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 20, 30}, postIDs(result))
}

func TestListPosts_EmptyResultIsNotNil(t *testing.T) {
	service := NewPostService(newMemStore())

	result, err := service.ListPosts(context.Background(), 1, ListPostsRequest{AuthorIDs: "42"})
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestListPosts_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     ListPostsRequest
		message string
	}{
		{
			name:    "missing authorIds",
			req:     ListPostsRequest{},
			message: "authorIds are required",
		},
		{
			name:    "invalid sortBy",
			req:     ListPostsRequest{AuthorIDs: "1", SortBy: strPtr("comments")},
			message: "Invalid sortBy value",
		},
		{
			name:    "invalid direction",
			req:     ListPostsRequest{AuthorIDs: "1", Direction: strPtr("sideways")},
			message: "Invalid direction value",
		},
		{
			name:    "empty sortBy",
			req:     ListPostsRequest{AuthorIDs: "1", SortBy: strPtr("")},
			message: "Invalid sortBy value",
		},
		{
			name:    "empty direction",
			req:     ListPostsRequest{AuthorIDs: "1", Direction: strPtr("")},
			message: "Invalid direction value",
		},
		{
			name:    "non numeric author id",
			req:     ListPostsRequest{AuthorIDs: "1,abc"},
			message: "authorIds must be a comma separated list of author ids",
		},
		{
			name:    "empty author id segment",
			req:     ListPostsRequest{AuthorIDs: "1,,2"},
			message: "authorIds must be a comma separated list of author ids",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			store.seedPost(Post{Text: "A"}, 1)
			service := NewPostService(store)

			result, err := service.ListPosts(context.Background(), 1, tt.req)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.message, ValidationMessage(err))
		})
	}
}

func TestListPosts_RequiresCaller(t *testing.T) {
	service := NewPostService(newMemStore())

	_, err := service.ListPosts(context.Background(), 0, ListPostsRequest{AuthorIDs: "1"})
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestCreateThenList_RoundTrip(t *testing.T) {
	service := NewPostService(newMemStore())
	ctx := context.Background()

	created, err := service.CreatePost(ctx, 5, CreatePostRequest{Text: "round trip", Tags: []string{"x"}})
	require.NoError(t, err)

	listed, err := service.ListPosts(ctx, 5, ListPostsRequest{AuthorIDs: "5"})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, created.Text, listed[0].Text)
	assert.Equal(t, created.Tags, listed[0].Tags)
	assert.Equal(t, created.Likes, listed[0].Likes)
	assert.Equal(t, created.Reads, listed[0].Reads)
	assert.Equal(t, created.Popularity, listed[0].Popularity)
}

func TestUpdatePost_TextAndTags(t *testing.T) {
	store := newMemStore()
	p := store.seedPost(Post{Text: "old", Tags: []string{"a"}, Likes: 3}, 1, 2)
	service := NewPostService(store)

	updated, err := service.UpdatePost(context.Background(), 2, p.ID, patchBody(`{"text":"new","tags":["b","c"]}`))
	require.NoError(t, err)

	assert.Equal(t, "new", updated.Text)
	assert.Equal(t, []string{"b", "c"}, updated.Tags)
	assert.Equal(t, 3, updated.Likes)
	assert.Equal(t, []int64{1, 2}, updated.AuthorIDs, "authors unchanged when authorIds is absent")
	assert.Equal(t, []int64{1, 2}, store.authorsOf(p.ID))

	stored, err := store.Posts().GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", stored.Text)
	assert.Equal(t, []string{"b", "c"}, stored.Tags)
}

func TestUpdatePost_ReplacesAuthors(t *testing.T) {
	store := newMemStore()
	p := store.seedPost(Post{Text: "shared"}, 1, 2)
	service := NewPostService(store)

	updated, err := service.UpdatePost(context.Background(), 1, p.ID, patchBody(`{"authorIds":[3, 4, 3]}`))
	require.NoError(t, err)

	assert.Equal(t, []int64{3, 4}, updated.AuthorIDs)
	assert.Equal(t, []int64{3, 4}, store.authorsOf(p.ID), "old pairs gone, new pairs present")
	assert.Equal(t, "shared", updated.Text)
}

func TestUpdatePost_NullFieldsAreIgnored(t *testing.T) {
	store := newMemStore()
	p := store.seedPost(Post{Text: "keep", Tags: []string{"t"}}, 1)
	service := NewPostService(store)

	updated, err := service.UpdatePost(context.Background(), 1, p.ID, patchBody(`{"text":null,"authorIds":null}`))
	require.NoError(t, err)
	assert.Equal(t, "keep", updated.Text)
	assert.Equal(t, []string{"t"}, updated.Tags)
	assert.Equal(t, []int64{1}, updated.AuthorIDs)
}

func TestUpdatePost_NotFound(t *testing.T) {
	service := NewPostService(newMemStore())

	_, err := service.UpdatePost(context.Background(), 1, 99, patchBody(`{"text":"x"}`))
	assert.True(t, IsNotFound(err))
}

func TestUpdatePost_NonAuthorForbidden(t *testing.T) {
	store := newMemStore()
	p := store.seedPost(Post{Text: "mine", Tags: []string{"a"}}, 1)
	service := NewPostService(store)

	_, err := service.UpdatePost(context.Background(), 2, p.ID, patchBody(`{"text":"hijacked","authorIds":[2]}`))
	assert.True(t, IsForbidden(err))

	stored, getErr := store.Posts().GetByID(context.Background(), p.ID)
	require.NoError(t, getErr)
	assert.Equal(t, "mine", stored.Text, "post should be unchanged")
	assert.Equal(t, []int64{1}, store.authorsOf(p.ID))
}

func TestUpdatePost_ForbiddenBeforeTypeErrors(t *testing.T) {
	store := newMemStore()
	p := store.seedPost(Post{Text: "mine"}, 1)
	service := NewPostService(store)

	_, err := service.UpdatePost(context.Background(), 2, p.ID, patchBody(`{"text":42}`))
	assert.True(t, IsForbidden(err), "non-authors learn nothing about body validity")
}

func TestUpdatePost_MalformedBodyChecksOrder(t *testing.T) {
	bodies := []string{`{"text":`, `[1,2]`, `"x"`, ``, `null`}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			store := newMemStore()
			p := store.seedPost(Post{Text: "mine"}, 1)
			service := NewPostService(store)

			_, err := service.UpdatePost(context.Background(), 1, p.ID+100, patchBody(body))
			assert.True(t, IsNotFound(err), "missing post wins over a bad body")

			_, err = service.UpdatePost(context.Background(), 2, p.ID, patchBody(body))
			assert.True(t, IsForbidden(err), "non-author wins over a bad body")

			_, err = service.UpdatePost(context.Background(), 1, p.ID, patchBody(body))
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, "Request body must be a JSON object", ValidationMessage(err))
		})
	}
}

func TestUpdatePost_TypeValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     UpdatePostRequest
		message string
	}{
		{
			name:    "text not a string",
			req:     patchBody(`{"text":123}`),
			message: "text must be a string",
		},
		{
			name:    "tags not an array",
			req:     patchBody(`{"tags":"tech"}`),
			message: "tags must be an array of strings",
		},
		{
			name:    "tags with a non string",
			req:     patchBody(`{"tags":["ok", 5]}`),
			message: "tags must be an array of strings",
		},
		{
			name:    "authorIds with a string",
			req:     patchBody(`{"authorIds":[1, "2"]}`),
			message: "authorIds must be an array of author ids",
		},
		{
			name:    "authorIds with a float",
			req:     patchBody(`{"authorIds":[1.5]}`),
			message: "authorIds must be an array of author ids",
		},
		{
			name:    "authorIds not an array",
			req:     patchBody(`{"authorIds":1}`),
			message: "authorIds must be an array of author ids",
		},
		{
			name:    "authorIds empty",
			req:     patchBody(`{"authorIds":[]}`),
			message: "authorIds must contain at least one author id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			p := store.seedPost(Post{Text: "orig", Tags: []string{"x"}}, 1)
			service := NewPostService(store)

			_, err := service.UpdatePost(context.Background(), 1, p.ID, tt.req)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.message, ValidationMessage(err))

			stored, getErr := store.Posts().GetByID(context.Background(), p.ID)
			require.NoError(t, getErr)
			assert.Equal(t, "orig", stored.Text)
			assert.Equal(t, []int64{1}, store.authorsOf(p.ID))
		})
	}
}

func TestUpdatePost_RequiresCaller(t *testing.T) {
	store := newMemStore()
	p := store.seedPost(Post{Text: "x"}, 1)
	service := NewPostService(store)

	_, err := service.UpdatePost(context.Background(), 0, p.ID, patchBody(`{}`))
	assert.ErrorIs(t, err, ErrAuthRequired)
}

// mockStore exercises repository failures the in-memory store cannot produce
type mockStore struct {
	mock.Mock
}

func (m *mockStore) Posts() Repository {
	return m.Called().Get(0).(Repository)
}

func (m *mockStore) Authorships() AuthorshipRepository {
	return m.Called().Get(0).(AuthorshipRepository)
}

func (m *mockStore) WithinTx(ctx context.Context, fn func(ctx context.Context, posts Repository, authorships AuthorshipRepository) error) error {
	return m.Called(ctx, fn).Error(0)
}

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) Create(ctx context.Context, post *Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *mockPostRepo) GetByID(ctx context.Context, id int64) (*Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*Post)
	return post, args.Error(1)
}

func (m *mockPostRepo) ListByAuthor(ctx context.Context, authorID int64) ([]*Post, error) {
	args := m.Called(ctx, authorID)
	result, _ := args.Get(0).([]*Post)
	return result, args.Error(1)
}

func (m *mockPostRepo) Update(ctx context.Context, post *Post) error {
	return m.Called(ctx, post).Error(0)
}

func TestListPosts_RepositoryError(t *testing.T) {
	dbErr := errors.New("connection refused")

	repo := &mockPostRepo{}
	repo.On("ListByAuthor", mock.Anything, int64(1)).Return([]*Post{{ID: 1}}, nil)
	repo.On("ListByAuthor", mock.Anything, int64(2)).Return(nil, dbErr)

	store := &mockStore{}
	store.On("Posts").Return(repo)

	service := NewPostService(store)
	_, err := service.ListPosts(context.Background(), 1, ListPostsRequest{AuthorIDs: "1,2"})

	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	assert.False(t, IsValidationError(err))
	repo.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestCreatePost_TransactionError(t *testing.T) {
	txErr := errors.New("failed to begin transaction")

	store := &mockStore{}
	store.On("WithinTx", mock.Anything, mock.Anything).Return(txErr)

	service := NewPostService(store)
	post, err := service.CreatePost(context.Background(), 1, CreatePostRequest{Text: "hello"})

	assert.Nil(t, post)
	assert.ErrorIs(t, err, txErr)
	store.AssertExpectations(t)
}

func postIDs(posts []*Post) []int64 {
	ids := make([]int64, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
