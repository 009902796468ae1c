package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// JWKSVerifier verifies asymmetrically signed tokens against a remote JWKS.
// Keys are cached and refreshed in the background.
type JWKSVerifier struct {
	cache  *jwk.Cache
	url    string
	issuer string
}

// NewJWKSVerifier registers the JWKS URL and fetches it once so misconfiguration fails at startup.
// The cache's refresh loop stops when ctx is cancelled.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer string, refresh time.Duration) (*JWKSVerifier, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(refresh)); err != nil {
		return nil, fmt.Errorf("failed to register JWKS URL: %w", err)
	}
	if _, err := cache.Refresh(ctx, jwksURL); err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", jwksURL, err)
	}

	return &JWKSVerifier{
		cache:  cache,
		url:    jwksURL,
		issuer: issuer,
	}, nil
}

// Verify checks the token signature against the cached key set and validates its claims
func (v *JWKSVerifier) Verify(ctx context.Context, token string) (*Claims, error) {
	set, err := v.cache.Get(ctx, v.url)
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %w", err)
	}

	opts := []jwt.ParseOption{
		jwt.WithKeySet(set, jws.WithInferAlgorithmFromKey(true)),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(30 * time.Second),
		jwt.WithRequiredClaim(jwt.ExpirationKey),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseString(StripBearerPrefix(token), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := parseSubject(parsed.Subject())
	if err != nil {
		return nil, err
	}

	return &Claims{
		UserID:    userID,
		Issuer:    parsed.Issuer(),
		ExpiresAt: parsed.Expiration(),
	}, nil
}
