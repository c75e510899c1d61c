// Package apperr is the error taxonomy shared by the services. Call sites
// wrap a sentinel with fmt.Errorf("...: %w", ...) and the HTTP layer maps
// it to a status in one place, so services never import net/http.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrExpired           = errors.New("token expired")
	ErrRevoked           = errors.New("token revoked")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
	ErrUnavailable       = errors.New("service unavailable")
)

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, ErrExpired), errors.Is(err, ErrRevoked):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
