package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/crafthaus/shop-api/internal/apperr"
)

// httpError maps a service error to an echo HTTPError. The TOKEN_EXPIRED
// client code is attached only by the request gate: an expired refresh
// token here is a plain 401, otherwise a client following the code would
// loop on refresh.
func httpError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperr.HTTPStatus(err), err.Error())
}
