package posts

import "sort"

// postSet de-duplicates posts by ID while remembering first-seen order
type postSet struct {
	byID  map[int64]*Post
	order []int64
}

func newPostSet() *postSet {
	return &postSet{byID: make(map[int64]*Post)}
}

func (s *postSet) addAll(posts []*Post) {
	for _, p := range posts {
		if _, ok := s.byID[p.ID]; ok {
			continue
		}
		s.byID[p.ID] = p
		s.order = append(s.order, p.ID)
	}
}

// list returns the posts in first-seen order; never nil
func (s *postSet) list() []*Post {
	out := make([]*Post, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// sortPosts orders posts by field, descending when desc is set.
// Ties always fall back to ascending ID so the order is deterministic.
func sortPosts(posts []*Post, field string, desc bool) {
	sort.Slice(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		c := compareField(a, b, field)
		if c == 0 {
			return a.ID < b.ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareField(a, b *Post, field string) int {
	switch field {
	case SortByReads:
		return compareInts(int64(a.Reads), int64(b.Reads))
	case SortByLikes:
		return compareInts(int64(a.Likes), int64(b.Likes))
	case SortByPopularity:
		switch {
		case a.Popularity < b.Popularity:
			return -1
		case a.Popularity > b.Popularity:
			return 1
		}
		return 0
	default:
		return compareInts(a.ID, b.ID)
	}
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
