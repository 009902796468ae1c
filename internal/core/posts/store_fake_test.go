package posts

import (
	"context"
	"errors"
	"sort"
)

// memStore is an in-memory Store; WithinTx restores a snapshot when fn fails
type memStore struct {
	posts       map[int64]*Post
	authorships map[Authorship]struct{}
	nextID      int64

	// failAuthorshipCreate makes the next authorship insert fail
	failAuthorshipCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		posts:       make(map[int64]*Post),
		authorships: make(map[Authorship]struct{}),
	}
}

var errInjected = errors.New("injected failure")

func (s *memStore) Posts() Repository                 { return memPostRepo{s} }
func (s *memStore) Authorships() AuthorshipRepository { return memAuthorshipRepo{s} }

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, posts Repository, authorships AuthorshipRepository) error) error {
	postsSnap := make(map[int64]*Post, len(s.posts))
	for id, p := range s.posts {
		cp := *p
		cp.Tags = append([]string(nil), p.Tags...)
		postsSnap[id] = &cp
	}
	authorSnap := make(map[Authorship]struct{}, len(s.authorships))
	for a := range s.authorships {
		authorSnap[a] = struct{}{}
	}
	nextID := s.nextID

	if err := fn(ctx, memPostRepo{s}, memAuthorshipRepo{s}); err != nil {
		s.posts = postsSnap
		s.authorships = authorSnap
		s.nextID = nextID
		return err
	}
	return nil
}

// seedPost stores a post with metrics and authors directly
func (s *memStore) seedPost(p Post, authors ...int64) *Post {
	s.nextID++
	if p.ID == 0 {
		p.ID = s.nextID
	} else if p.ID > s.nextID {
		s.nextID = p.ID
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	stored := p
	s.posts[p.ID] = &stored
	for _, a := range authors {
		s.authorships[Authorship{UserID: a, PostID: p.ID}] = struct{}{}
	}
	return &stored
}

func (s *memStore) authorsOf(postID int64) []int64 {
	ids, _ := memAuthorshipRepo{s}.ListAuthorIDs(context.Background(), postID)
	return ids
}

type memPostRepo struct{ s *memStore }

func (r memPostRepo) Create(ctx context.Context, post *Post) error {
	r.s.nextID++
	post.ID = r.s.nextID
	if post.Tags == nil {
		post.Tags = []string{}
	}
	cp := *post
	r.s.posts[post.ID] = &cp
	return nil
}

func (r memPostRepo) GetByID(ctx context.Context, id int64) (*Post, error) {
	p, ok := r.s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPostRepo) ListByAuthor(ctx context.Context, authorID int64) ([]*Post, error) {
	out := []*Post{}
	for a := range r.s.authorships {
		if a.UserID != authorID {
			continue
		}
		cp := *r.s.posts[a.PostID]
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPostRepo) Update(ctx context.Context, post *Post) error {
	if _, ok := r.s.posts[post.ID]; !ok {
		return ErrNotFound
	}
	cp := *post
	r.s.posts[post.ID] = &cp
	return nil
}

type memAuthorshipRepo struct{ s *memStore }

func (r memAuthorshipRepo) Create(ctx context.Context, a Authorship) error {
	if r.s.failAuthorshipCreate {
		r.s.failAuthorshipCreate = false
		return errInjected
	}
	if _, ok := r.s.posts[a.PostID]; !ok {
		return ErrNotFound
	}
	r.s.authorships[a] = struct{}{}
	return nil
}

func (r memAuthorshipRepo) ListAuthorIDs(ctx context.Context, postID int64) ([]int64, error) {
	ids := []int64{}
	for a := range r.s.authorships {
		if a.PostID == postID {
			ids = append(ids, a.UserID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r memAuthorshipRepo) DeleteByPost(ctx context.Context, postID int64) error {
	for a := range r.s.authorships {
		if a.PostID == postID {
			delete(r.s.authorships, a)
		}
	}
	return nil
}
