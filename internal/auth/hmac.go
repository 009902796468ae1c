package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HMACVerifier verifies HS256 tokens signed with a shared secret
type HMACVerifier struct {
	issuer string
	secret []byte
}

// NewHMACVerifier creates a verifier for the given secret.
// When issuer is non-empty the 'iss' claim must match it.
func NewHMACVerifier(secret []byte, issuer string) (*HMACVerifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("HMAC secret must not be empty")
	}
	return &HMACVerifier{secret: secret, issuer: issuer}, nil
}

// Verify checks signature, expiry and issuer and returns the caller identity
func (v *HMACVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var registered jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(StripBearerPrefix(token), &registered, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := parseSubject(registered.Subject)
	if err != nil {
		return nil, err
	}

	claims := &Claims{
		UserID: userID,
		Issuer: registered.Issuer,
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}

// IssueHS256 signs a token for userID that expires after ttl
// Used by the dev token tool and tests
func IssueHS256(secret []byte, userID int64, issuer string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
