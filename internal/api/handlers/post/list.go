package post

import (
	"net/http"

	"Postboard/internal/api/middleware"
	"Postboard/internal/core/posts"
)

// ListHandler handles listing posts by author
type ListHandler struct {
	service posts.Service
}

// NewListHandler creates a new list handler
func NewListHandler(service posts.Service) *ListHandler {
	return &ListHandler{
		service: service,
	}
}

// HandleList handles GET /posts?authorIds=1,2&sortBy=likes&direction=desc
// Response: { "posts": [...] }
func (h *ListHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	query := r.URL.Query()
	req := posts.ListPostsRequest{AuthorIDs: query.Get("authorIds")}
	// Only a missing parameter falls back to the default; "sortBy=" is rejected
	if query.Has("sortBy") {
		sortBy := query.Get("sortBy")
		req.SortBy = &sortBy
	}
	if query.Has("direction") {
		direction := query.Get("direction")
		req.Direction = &direction
	}

	result, err := h.service.ListPosts(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if result == nil {
		result = []*posts.Post{}
	}

	writeJSON(w, posts.ListPostsResponse{Posts: result})
}
