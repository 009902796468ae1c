// Package auth verifies bearer tokens and resolves them to a caller identity.
//
// Two verifiers are provided: HMACVerifier for HS256 tokens signed with a
// shared secret, and JWKSVerifier for asymmetric tokens whose keys are
// published at a JWKS URL. In both cases the 'sub' claim carries the numeric
// user ID.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidToken is returned when a token fails parsing or signature checks
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidSubject is returned when the 'sub' claim is not a positive user ID
	ErrInvalidSubject = errors.New("token subject is not a user id")
)

// Claims is the caller identity extracted from a verified token
type Claims struct {
	ExpiresAt time.Time
	Issuer    string
	UserID    int64
}

// Verifier validates a raw bearer token
type Verifier interface {
	Verify(ctx context.Context, token string) (*Claims, error)
}

// parseSubject converts a 'sub' claim into a user ID
func parseSubject(sub string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(sub), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSubject, sub)
	}
	return id, nil
}

// StripBearerPrefix removes the "Bearer " prefix from an Authorization header value
func StripBearerPrefix(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
