package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	mwauth "github.com/crafthaus/shop-api/internal/middleware/auth"
	"github.com/crafthaus/shop-api/internal/service/admin"
)

type AdminHTTP struct {
	Svc *admin.Service
}

func (h *AdminHTTP) UpdateUserRole(c echo.Context) error {
	actor := mwauth.Identity(c)

	targetID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.UpdateUserRole(c.Request().Context(), actor.ID, uint(targetID), req.Role)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "user role updated",
		"user":    user,
	})
}

func (h *AdminHTTP) GetUsers(c echo.Context) error {
	users, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"count": len(users),
		"users": users,
	})
}

func (h *AdminHTTP) DeleteUser(c echo.Context) error {
	actor := mwauth.Identity(c)

	targetID, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.Svc.DeleteUser(c.Request().Context(), actor.ID, uint(targetID)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted_user_id": targetID})
}

func (h *AdminHTTP) GetStats(c echo.Context) error {
	stats, err := h.Svc.Stats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stats)
}
