// Package tokens is the JWT codec for the session manager. Access and
// refresh tokens are HS256-signed with two distinct secrets. Access claims
// carry only the subject: the current role is always read from the store on
// verify, so a role change takes effect without reissuing tokens.
package tokens

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/crafthaus/shop-api/internal/apperr"
)

const (
	AccessTTL  = 12 * time.Hour
	RefreshTTL = 7 * 24 * time.Hour

	refreshType = "refresh"
)

type AccessClaims struct {
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

func SignAccess(userID uint, secret []byte, now time.Time) (string, time.Time, error) {
	exp := now.Add(AccessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func SignRefresh(userID uint, secret []byte, now time.Time) (string, time.Time, error) {
	exp := now.Add(RefreshTTL)
	claims := RefreshClaims{
		Type: refreshType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseAccess returns the subject user id. Expiry is reported as
// apperr.ErrExpired so the client knows to call refresh instead of
// logging in again; every other failure is ErrUnauthenticated.
func ParseAccess(raw string, secret []byte) (uint, error) {
	var claims AccessClaims
	if err := parse(raw, secret, &claims); err != nil {
		return 0, err
	}
	return subject(claims.Subject)
}

func ParseRefresh(raw string, secret []byte) (uint, error) {
	var claims RefreshClaims
	if err := parse(raw, secret, &claims); err != nil {
		return 0, err
	}
	if claims.Type != refreshType {
		return 0, fmt.Errorf("not a refresh token: %w", apperr.ErrUnauthenticated)
	}
	return subject(claims.Subject)
}

func parse(raw string, secret []byte, claims jwt.Claims) error {
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return secret, nil
	})
	switch {
	case err == nil && tkn.Valid:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperr.ErrExpired
	default:
		return fmt.Errorf("invalid token: %w", apperr.ErrUnauthenticated)
	}
}

func subject(sub string) (uint, error) {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject: %w", apperr.ErrUnauthenticated)
	}
	return uint(id), nil
}
