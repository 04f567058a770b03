package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperr "github.com/KirkDiggler/profile-onboarding/internal/errors"
)

// TokenVerifier checks HS256 bearer tokens and turns them into principals
type TokenVerifier struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenVerifier creates a verifier; issuer may be empty to skip the check
func NewTokenVerifier(secret, issuer string, ttl time.Duration) (*TokenVerifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, apperr.InvalidArgument("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenVerifier{secret: []byte(secret), issuer: issuer, ttl: ttl}, nil
}

// Verify parses the token and returns its subject
func (v *TokenVerifier) Verify(token string) (Principal, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return Principal{}, apperr.Unauthenticated("missing bearer token")
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return Principal{}, apperr.WrapWithCode(err, apperr.CodeUnauthenticated, "invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Principal{}, apperr.Unauthenticated("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Principal{}, apperr.Unauthenticated("token has no subject")
	}

	name, _ := claims["name"].(string)
	return Principal{ID: sub, Name: name}, nil
}

// Issue signs a token for p. Used by tests and local tooling.
func (v *TokenVerifier) Issue(p Principal) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": p.ID,
		"iat": now.Unix(),
		"exp": now.Add(v.ttl).Unix(),
	}
	if p.Name != "" {
		claims["name"] = p.Name
	}
	if v.issuer != "" {
		claims["iss"] = v.issuer
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
