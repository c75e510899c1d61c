package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crafthaus/shop-api/internal/logging"
	mwauth "github.com/crafthaus/shop-api/internal/middleware/auth"
	"github.com/crafthaus/shop-api/internal/repo"
	"github.com/crafthaus/shop-api/internal/service/auth"
)

type AuthHTTP struct {
	Svc  *auth.Service
	Repo *repo.GormRepo
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, pair, err := h.Svc.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(CreateCookie(AccessCookie, pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(CreateCookie(RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp))

	return c.JSON(http.StatusCreated, echo.Map{
		"user": echo.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, pair, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(CreateCookie(AccessCookie, pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(CreateCookie(RefreshCookie, pair.RefreshToken, "/", pair.RefreshExp))

	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"is_admin":      user.Role == auth.RoleAdmin,
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	token := mwauth.BearerToken(c, RefreshCookie)
	access, exp, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(CreateCookie(AccessCookie, access, "/", exp))
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "access token refreshed",
		"access_token": access,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	id := mwauth.Identity(c)
	if ck, err := c.Cookie(RefreshCookie); err == nil && id != nil {
		if err := h.Svc.Logout(ctx, id.ID, ck.Value); err != nil {
			l.Error("logout_failed", "error", err)
			c.SetCookie(DeleteCookie(AccessCookie, "/"))
			c.SetCookie(DeleteCookie(RefreshCookie, "/"))
			return httpError(err)
		}
	}

	c.SetCookie(DeleteCookie(AccessCookie, "/"))
	c.SetCookie(DeleteCookie(RefreshCookie, "/"))

	l.Info("logout_successful")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()

	id := mwauth.Identity(c)
	user, err := h.Repo.FindUserByID(ctx, id.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"role":         user.Role,
		"member_since": user.CreatedAt,
	})
}

func (h *AuthHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	id := mwauth.Identity(c)
	user, err := h.Repo.FindUserByID(ctx, id.ID)
	if err != nil {
		return httpError(err)
	}

	if req.Email != "" && req.Email != user.Email {
		taken, err := h.Repo.EmailTaken(ctx, req.Email, user.ID)
		if err != nil {
			return httpError(err)
		}
		if taken {
			return echo.NewHTTPError(http.StatusConflict, "email already exists")
		}
		user.Email = req.Email
	}
	if req.Name != "" {
		user.Name = req.Name
	}

	if err := h.Repo.SaveUser(ctx, user); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
	})
}
