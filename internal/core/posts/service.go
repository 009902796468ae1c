package posts

import (
	"context"
	"fmt"
	"log"
)

type postService struct {
	store Store
}

// NewPostService creates a new post service
func NewPostService(store Store) Service {
	return &postService{
		store: store,
	}
}

// CreatePost creates a new post authored by the caller
// Flow:
// 1. Require a caller identity
// 2. Validate input
// 3. Insert post and authorship in one transaction
func (s *postService) CreatePost(ctx context.Context, callerID int64, req CreatePostRequest) (*Post, error) {
	if callerID <= 0 {
		return nil, ErrAuthRequired
	}

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	post := &Post{
		Text: req.Text,
		Tags: req.Tags,
	}
	if post.Tags == nil {
		post.Tags = []string{}
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, postRepo Repository, authorRepo AuthorshipRepository) error {
		if err := postRepo.Create(ctx, post); err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		if err := authorRepo.Create(ctx, Authorship{UserID: callerID, PostID: post.ID}); err != nil {
			return fmt.Errorf("failed to record authorship: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[POST-CREATE] Author: %d, Post: %d, Tags: %d", callerID, post.ID, len(post.Tags))

	return post, nil
}

// ListPosts returns the union of the requested authors' posts, sorted
// Posts shared by several requested authors appear once
func (s *postService) ListPosts(ctx context.Context, callerID int64, req ListPostsRequest) ([]*Post, error) {
	if callerID <= 0 {
		return nil, ErrAuthRequired
	}

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	authorIDs, err := parseAuthorIDs(req.AuthorIDs)
	if err != nil {
		return nil, err
	}

	sortBy := SortByID
	if req.SortBy != nil {
		sortBy = *req.SortBy
	}
	desc := req.Direction != nil && *req.Direction == DirectionDesc

	set := newPostSet()
	repo := s.store.Posts()
	for _, authorID := range authorIDs {
		authored, err := repo.ListByAuthor(ctx, authorID)
		if err != nil {
			return nil, fmt.Errorf("failed to list posts for author %d: %w", authorID, err)
		}
		set.addAll(authored)
	}

	result := set.list()
	sortPosts(result, sortBy, desc)

	return result, nil
}

// UpdatePost patches a post the caller authored
// Flow:
// 1. Require a caller identity
// 2. Load the post (404) and its authors (403 unless the caller is one)
// 3. Type-check the patch body
// 4. Apply text/tags and replace the author set, all in one transaction
func (s *postService) UpdatePost(ctx context.Context, callerID, postID int64, req UpdatePostRequest) (*UpdatedPost, error) {
	if callerID <= 0 {
		return nil, ErrAuthRequired
	}

	var updated *UpdatedPost
	err := s.store.WithinTx(ctx, func(ctx context.Context, postRepo Repository, authorRepo AuthorshipRepository) error {
		post, err := postRepo.GetByID(ctx, postID)
		if err != nil {
			return err
		}

		currentAuthors, err := authorRepo.ListAuthorIDs(ctx, postID)
		if err != nil {
			return fmt.Errorf("failed to list authors of post %d: %w", postID, err)
		}
		if !containsID(currentAuthors, callerID) {
			log.Printf("[POST-UPDATE] Forbidden: user %d is not an author of post %d", callerID, postID)
			return ErrForbidden
		}

		patch, err := req.decode()
		if err != nil {
			return err
		}

		if patch.Tags != nil {
			post.Tags = *patch.Tags
		}
		if patch.Text != nil {
			post.Text = *patch.Text
		}
		if patch.Tags != nil || patch.Text != nil {
			if err := postRepo.Update(ctx, post); err != nil {
				return fmt.Errorf("failed to update post %d: %w", postID, err)
			}
		}

		authorIDs := currentAuthors
		if patch.AuthorIDs != nil {
			if err := authorRepo.DeleteByPost(ctx, postID); err != nil {
				return fmt.Errorf("failed to clear authors of post %d: %w", postID, err)
			}
			for _, authorID := range *patch.AuthorIDs {
				if err := authorRepo.Create(ctx, Authorship{UserID: authorID, PostID: postID}); err != nil {
					return fmt.Errorf("failed to add author %d to post %d: %w", authorID, postID, err)
				}
			}
			authorIDs = *patch.AuthorIDs
		}

		updated = &UpdatedPost{Post: post, AuthorIDs: authorIDs}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[POST-UPDATE] Post: %d, Editor: %d, Authors: %v", postID, callerID, updated.AuthorIDs)

	return updated, nil
}

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
