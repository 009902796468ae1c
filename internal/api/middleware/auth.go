package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"Postboard/internal/auth"
)

// Context keys for storing caller information
type contextKey string

const (
	UserIDKey contextKey = "user_id"
	ClaimsKey contextKey = "auth_claims"
)

// AuthMiddleware is implemented by every authentication gate the routes accept
type AuthMiddleware interface {
	RequireAuth(next http.Handler) http.Handler
}

// BearerAuthMiddleware enforces bearer token authentication for protected routes
type BearerAuthMiddleware struct {
	verifier auth.Verifier
}

// NewBearerAuthMiddleware creates a new bearer token auth middleware
func NewBearerAuthMiddleware(verifier auth.Verifier) *BearerAuthMiddleware {
	return &BearerAuthMiddleware{
		verifier: verifier,
	}
}

// RequireAuth middleware ensures the caller presents a valid token
// If not authenticated, returns 401
// If authenticated, injects the user ID and claims into context
func (m *BearerAuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeAuthError(w, "Missing Authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeAuthError(w, "Invalid Authorization header format. Expected: Bearer <token>")
			return
		}

		claims, err := m.verifier.Verify(r.Context(), auth.StripBearerPrefix(authHeader))
		if err != nil {
			log.Printf("[AUTH_FAILURE] type=verification_failed ip=%s method=%s path=%s error=%v",
				r.RemoteAddr, r.Method, r.URL.Path, err)
			writeAuthError(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, ClaimsKey, claims)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the caller's user ID from the request context
// Returns 0 if not authenticated
func GetUserID(r *http.Request) int64 {
	return GetCallerID(r.Context())
}

// GetCallerID extracts the caller's user ID from a context
// Returns 0 if not authenticated
func GetCallerID(ctx context.Context) int64 {
	id, _ := ctx.Value(UserIDKey).(int64)
	return id
}

// GetClaims extracts the verified token claims from the request context
// Returns nil if not authenticated
func GetClaims(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(ClaimsKey).(*auth.Claims)
	return claims
}

// SetTestUserID sets the user ID in the context for testing purposes
// This function should ONLY be used in tests to mock authenticated users
func SetTestUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// writeAuthError writes a JSON error response for authentication failures
func writeAuthError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	response := `{"error":"AuthenticationRequired","message":"` + message + `"}`
	if _, err := w.Write([]byte(response)); err != nil {
		log.Printf("Failed to write auth error response: %v", err)
	}
}
