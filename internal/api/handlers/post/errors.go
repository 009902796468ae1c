package post

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"Postboard/internal/core/posts"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(errorResponse{
		Error:   errorType,
		Message: message,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// writeJSON writes a 200 JSON response
// The body is encoded before headers go out so encoding failures still produce a 500
func writeJSON(w http.ResponseWriter, body interface{}) {
	responseBytes, err := json.Marshal(body)
	if err != nil {
		log.Printf("ERROR: Failed to encode post response: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError", "Failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(responseBytes); err != nil {
		log.Printf("ERROR: Failed to write post response: %v", err)
	}
}

// handleServiceError maps service errors to HTTP responses
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case posts.IsAuthRequired(err):
		writeError(w, http.StatusUnauthorized, "AuthRequired", "Authentication required")

	case posts.IsValidationError(err):
		writeError(w, http.StatusBadRequest, "InvalidRequest", posts.ValidationMessage(err))

	case posts.IsNotFound(err):
		writeError(w, http.StatusNotFound, "PostNotFound", "Post not found")

	case posts.IsForbidden(err):
		writeError(w, http.StatusForbidden, "NotAuthorized", "User is not author of this post")

	default:
		// Don't leak internal error details to clients
		log.Printf("Unexpected error in post handler: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalServerError",
			"An internal error occurred")
	}
}

// isBodyTooLarge reports whether a decode error came from http.MaxBytesReader
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
