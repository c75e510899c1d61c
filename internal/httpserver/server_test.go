package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/crafthaus/shop-api/internal/config"
	"github.com/crafthaus/shop-api/internal/events"
	mwauth "github.com/crafthaus/shop-api/internal/middleware/auth"
	"github.com/crafthaus/shop-api/internal/models"
	"github.com/crafthaus/shop-api/internal/repo"
	"github.com/crafthaus/shop-api/internal/service/admin"
	"github.com/crafthaus/shop-api/internal/service/auth"
	"github.com/crafthaus/shop-api/internal/service/cart"
	"github.com/crafthaus/shop-api/internal/service/catalog"
	"github.com/crafthaus/shop-api/internal/tokens"
)

func newTestServer(t *testing.T) (*echo.Echo, *repo.GormRepo, *auth.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	r := repo.New(db)
	authSvc := &auth.Service{
		Repo:          r,
		JWTSecret:     []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Events:        events.Nop{},
	}
	cartSvc := cart.NewService(r, events.Nop{})
	catalogSvc := &catalog.Service{Repo: r, Events: events.Nop{}}
	adminSvc := &admin.Service{Repo: r}

	e := echo.New()
	Register(e, &Deps{
		Auth:        &AuthHTTP{Svc: authSvc, Repo: r},
		Cart:        &CartHTTP{Svc: cartSvc},
		Products:    &ProductHTTP{Svc: catalogSvc},
		Collections: &CollectionHTTP{Svc: catalogSvc},
		Admin:       &AdminHTTP{Svc: adminSvc},
		Gate:        mwauth.New(authSvc),
	})
	return e, r, authSvc
}

func doJSON(e *echo.Echo, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, e *echo.Echo, email string) (access, refresh string) {
	t.Helper()

	rec := doJSON(e, http.MethodPost, "/api/user/register", "", echo.Map{
		"name":     "Test User",
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	return resp.AccessToken, resp.RefreshToken
}

func seedProduct(t *testing.T, r *repo.GormRepo, price float64, stock uint) *models.Product {
	t.Helper()
	ctx := context.Background()

	col := &models.Collection{Title: "default"}
	require.NoError(t, r.CreateCollection(ctx, col))

	p := &models.Product{
		Title:        "Lamp",
		SKU:          uuid.NewString(),
		Price:        price,
		Stock:        stock,
		CollectionID: col.ID,
	}
	require.NoError(t, r.CreateProduct(ctx, p))
	return p
}

func TestRegisterLoginCartFlow(t *testing.T) {
	e, r, _ := newTestServer(t)

	access, _ := registerUser(t, e, "flow@example.com")
	p := seedProduct(t, r, 10, 3)

	rec := doJSON(e, http.MethodPost, "/api/cart", access, echo.Map{
		"product_id": p.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got models.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Items, 1)
	require.Equal(t, uint(2), got.Items[0].Quantity)
	require.Equal(t, 20.0, got.TotalPrice)

	// Adding past the stock ceiling must fail without touching the cart.
	rec = doJSON(e, http.MethodPost, "/api/cart", access, echo.Map{
		"product_id": p.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/cart", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, uint(2), got.Items[0].Quantity)
	require.Equal(t, 20.0, got.TotalPrice)
}

func TestCartRequiresAuth(t *testing.T) {
	e, _, _ := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/cart", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEmptyCartOnFirstRead(t *testing.T) {
	e, _, _ := newTestServer(t)

	access, _ := registerUser(t, e, "empty@example.com")
	rec := doJSON(e, http.MethodGet, "/api/cart", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Cart
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Empty(t, got.Items)
	require.Zero(t, got.TotalPrice)
}

func TestLoginWrongPassword(t *testing.T) {
	e, _, _ := newTestServer(t)
	registerUser(t, e, "login@example.com")

	rec := doJSON(e, http.MethodPost, "/api/user/login", "", echo.Map{
		"email": "login@example.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesForbiddenForPlainUser(t *testing.T) {
	e, _, _ := newTestServer(t)

	access, _ := registerUser(t, e, "user@example.com")
	rec := doJSON(e, http.MethodGet, "/api/admin/stats", access, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoleIsReadLive(t *testing.T) {
	e, r, _ := newTestServer(t)
	ctx := context.Background()

	access, _ := registerUser(t, e, "admin@example.com")

	// Promote after the token was minted. The gate must still see admin
	// because the role is looked up on every request, not baked into
	// the token.
	user, err := r.FindUserByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	user.Role = auth.RoleAdmin
	require.NoError(t, r.SaveUser(ctx, user))

	rec := doJSON(e, http.MethodGet, "/api/admin/stats", access, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRefreshMintsNewAccessToken(t *testing.T) {
	e, _, _ := newTestServer(t)

	_, refresh := registerUser(t, e, "refresh@example.com")

	rec := doJSON(e, http.MethodPost, "/api/user/refresh", refresh, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	e, _, _ := newTestServer(t)

	access, refresh := registerUser(t, e, "logout@example.com")

	req := httptest.NewRequest(http.MethodPost, "/api/user/logout", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+access)
	req.AddCookie(&http.Cookie{Name: RefreshCookie, Value: refresh})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec2 := doJSON(e, http.MethodPost, "/api/user/refresh", refresh, nil)
	require.Equal(t, http.StatusUnauthorized, rec2.Code)
}

func TestExpiredAccessTokenCarriesClientCode(t *testing.T) {
	e, _, svc := newTestServer(t)

	registerUser(t, e, "expired@example.com")

	stale, _, err := tokens.SignAccess(1, svc.JWTSecret, time.Now().Add(-tokens.AccessTTL-time.Minute))
	require.NoError(t, err)

	rec := doJSON(e, http.MethodGet, "/api/user/me", stale, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "TOKEN_EXPIRED")
}

func TestExpiredRefreshTokenIsPlainUnauthorized(t *testing.T) {
	e, _, svc := newTestServer(t)

	registerUser(t, e, "stale-refresh@example.com")

	stale, _, err := tokens.SignRefresh(1, svc.RefreshSecret, time.Now().Add(-tokens.RefreshTTL-time.Minute))
	require.NoError(t, err)

	// No TOKEN_EXPIRED code here: refreshing cannot fix an expired
	// refresh token, the client must log in again.
	rec := doJSON(e, http.MethodPost, "/api/user/refresh", stale, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.NotContains(t, rec.Body.String(), "TOKEN_EXPIRED")
}

func TestMeReturnsProfile(t *testing.T) {
	e, _, _ := newTestServer(t)

	access, _ := registerUser(t, e, "me@example.com")
	rec := doJSON(e, http.MethodGet, "/api/user/me", access, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "me@example.com")
}

func TestAdminUpdateUserRoleEndpoint(t *testing.T) {
	e, r, _ := newTestServer(t)
	ctx := context.Background()

	adminAccess, _ := registerUser(t, e, "root@example.com")
	adminUser, err := r.FindUserByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	adminUser.Role = auth.RoleAdmin
	require.NoError(t, r.SaveUser(ctx, adminUser))

	registerUser(t, e, "member@example.com")
	member, err := r.FindUserByEmail(ctx, "member@example.com")
	require.NoError(t, err)

	rec := doJSON(e, http.MethodPatch,
		fmt.Sprintf("/api/admin/users/%d/role", member.ID), adminAccess,
		echo.Map{"role": auth.RoleAdmin})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got, err := r.FindUserByID(ctx, member.ID)
	require.NoError(t, err)
	require.Equal(t, auth.RoleAdmin, got.Role)
}

func TestProductListIsPublic(t *testing.T) {
	e, r, _ := newTestServer(t)
	seedProduct(t, r, 25, 10)

	rec := doJSON(e, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Lamp")
}
