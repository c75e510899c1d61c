// Package auth is the request gate: it pulls the bearer token out of the
// request, resolves it through the session manager and attaches the
// identity for downstream handlers. Tokens are accepted from either the
// Authorization header or the access cookie.
package auth

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/crafthaus/shop-api/internal/apperr"
	authsvc "github.com/crafthaus/shop-api/internal/service/auth"
)

const identityKey = "identity"

type Middleware struct {
	Svc *authsvc.Service
}

func New(svc *authsvc.Service) *Middleware {
	return &Middleware{Svc: svc}
}

func BearerToken(c echo.Context, cookieName string) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tok
		}
	}
	if ck, err := c.Cookie(cookieName); err == nil {
		return ck.Value
	}
	return ""
}

func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := BearerToken(c, "accessToken")
		id, err := m.Svc.Verify(c.Request().Context(), token)
		if err != nil {
			return httpError(err)
		}
		c.Set(identityKey, id)
		return next(c)
	}
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireAuth(func(c echo.Context) error {
		id := Identity(c)
		if err := m.Svc.RequireRole(id, authsvc.RoleAdmin); err != nil {
			return httpError(err)
		}
		return next(c)
	})
}

// Identity returns the verified caller, or nil outside a protected route.
func Identity(c echo.Context) *authsvc.Identity {
	if v, ok := c.Get(identityKey).(*authsvc.Identity); ok {
		return v
	}
	return nil
}

func httpError(err error) *echo.HTTPError {
	if errors.Is(err, apperr.ErrExpired) {
		return echo.NewHTTPError(apperr.HTTPStatus(err), echo.Map{
			"message": err.Error(),
			"code":    "TOKEN_EXPIRED",
		})
	}
	return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
}
