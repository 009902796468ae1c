package post

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"Postboard/internal/api/middleware"
	"Postboard/internal/core/posts"
)

// UpdateHandler handles partial post updates
type UpdateHandler struct {
	service posts.Service
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(service posts.Service) *UpdateHandler {
	return &UpdateHandler{
		service: service,
	}
}

// HandleUpdate handles PATCH /posts/{postId}
// Request body: any of { "text": "...", "tags": [...], "authorIds": [...] }
// Response: { "post": { ..., "authorIds": [...] } }
func (h *UpdateHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	// A postId that is not an integer cannot name a post
	postID, err := strconv.ParseInt(chi.URLParam(r, "postId"), 10, 64)
	if err != nil || postID <= 0 {
		writeError(w, http.StatusNotFound, "PostNotFound", "Post not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	// The body is handed to the service unparsed; existence and authorship are checked first
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge",
				"Request body too large (max 1MB)")
			return
		}
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	updated, err := h.service.UpdatePost(r.Context(), userID, postID, posts.UpdatePostRequest{Body: body})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, posts.UpdatePostResponse{Post: updated})
}
