package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"figurinha-studio/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Access is the outcome of authorizing a request.
type Access int

const (
	AccessUnauthenticated Access = iota
	AccessUnauthorized
	AccessAuthorized
)

func (a Access) String() string {
	switch a {
	case AccessAuthorized:
		return "authorized"
	case AccessUnauthorized:
		return "unauthorized"
	default:
		return "unauthenticated"
	}
}

// Claims carry the subject and the role at issue time. The stored profile role is authoritative.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type accessTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newAccessTokens(secret []byte, ttl time.Duration) *accessTokens {
	return &accessTokens{secret: secret, ttl: ttl, now: time.Now}
}

func (a *accessTokens) Issue(userID, role string) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	now := a.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *accessTokens) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authorize resolves a bearer token to a profile and checks it against requiredRole.
// An empty requiredRole or RoleCustomer admits any signed-in profile.
func (s *Service) Authorize(ctx context.Context, bearer, requiredRole string) (Access, *domain.Profile, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(bearer), "Bearer "))
	if raw == "" {
		return AccessUnauthenticated, nil, nil
	}
	claims, err := s.access.Parse(raw)
	if err != nil {
		return AccessUnauthenticated, nil, nil
	}
	profile, err := s.users.GetProfile(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return AccessUnauthenticated, nil, nil
		}
		return AccessUnauthenticated, nil, err
	}
	if requiredRole == domain.RoleAdmin && !profile.IsAdmin() {
		return AccessUnauthorized, profile, nil
	}
	return AccessAuthorized, profile, nil
}
