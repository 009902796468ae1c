package post

import (
	"encoding/json"
	"net/http"

	"Postboard/internal/api/middleware"
	"Postboard/internal/core/posts"
)

// maxBodyBytes bounds request bodies on write endpoints
const maxBodyBytes = 1 * 1024 * 1024

// CreateHandler handles post creation requests
type CreateHandler struct {
	service posts.Service
}

// NewCreateHandler creates a new create handler
func NewCreateHandler(service posts.Service) *CreateHandler {
	return &CreateHandler{
		service: service,
	}
}

// HandleCreate handles POST /posts
// Request body: { "text": "...", "tags": ["..."] }
// Response: the created post
func (h *CreateHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	// Caller identity is injected by the auth middleware
	userID := middleware.GetUserID(r)
	if userID == 0 {
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req posts.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isBodyTooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "RequestTooLarge",
				"Request body too large (max 1MB)")
			return
		}
		writeError(w, http.StatusBadRequest, "InvalidRequest", "Invalid request body")
		return
	}

	post, err := h.service.CreatePost(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, post)
}
