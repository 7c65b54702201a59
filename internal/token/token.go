// Package token issues and reads the bearer tokens exchanged between the
// loaner service and its clients.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/duynhne/loaner-service/internal/clock"
	"github.com/duynhne/loaner-service/internal/core/domain"
)

// ErrMalformed indicates the token payload could not be decoded.
var ErrMalformed = errors.New("malformed token")

// Claims is the JWT payload. The subject is the user id.
type Claims struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthUser returns the identity carried by the claims.
func (c *Claims) AuthUser() domain.AuthUser {
	return domain.AuthUser{ID: c.Subject, Name: c.Name, Email: c.Email, Role: c.Role}
}

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clock.Clock
}

// NewIssuer creates an Issuer. A non-positive ttl defaults to one hour.
func NewIssuer(secret, issuer string, ttl time.Duration, clk clock.Clock) *Issuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Issuer{secret: []byte(secret), issuer: issuer, ttl: ttl, clock: clk}
}

// Issue signs a token for user and returns it with its expiry.
func (i *Issuer) Issue(user domain.AuthUser) (string, time.Time, error) {
	now := i.clock.Now()
	expiresAt := now.Add(i.ttl)
	claims := &Claims{
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature, issuer and expiry and returns the claims.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)

	parsed, err := parser.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// ExpiresAt decodes the exp claim of raw without verifying the signature.
// Clients use it to schedule expiry; they cannot verify the token anyway.
func ExpiresAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty token: %w", ErrMalformed)
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("missing exp claim: %w", ErrMalformed)
	}
	return claims.ExpiresAt.Time, nil
}
