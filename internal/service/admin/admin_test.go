package admin

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/crafthaus/shop-api/internal/apperr"
	"github.com/crafthaus/shop-api/internal/config"
	"github.com/crafthaus/shop-api/internal/models"
	"github.com/crafthaus/shop-api/internal/repo"
	"github.com/crafthaus/shop-api/internal/service/auth"
)

func newTestService(t *testing.T) (*Service, *repo.GormRepo) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	r := repo.New(db)
	return &Service{Repo: r}, r
}

func seedUser(t *testing.T, r *repo.GormRepo, email, role string) *models.User {
	t.Helper()
	u := &models.User{Name: "u", Email: email, PasswordHash: "x", Role: role}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func TestUpdateUserRole(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()

	adminUser := seedUser(t, r, "admin@x.com", auth.RoleAdmin)
	target := seedUser(t, r, "user@x.com", auth.RoleUser)

	updated, err := svc.UpdateUserRole(ctx, adminUser.ID, target.ID, auth.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, auth.RoleAdmin, updated.Role)

	got, err := r.FindUserByID(ctx, target.ID)
	require.NoError(t, err)
	require.Equal(t, auth.RoleAdmin, got.Role)
}

func TestUpdateUserRoleInvalidRole(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()

	adminUser := seedUser(t, r, "admin@x.com", auth.RoleAdmin)
	target := seedUser(t, r, "user@x.com", auth.RoleUser)

	_, err := svc.UpdateUserRole(ctx, adminUser.ID, target.ID, "superuser")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateUserRoleSelfModification(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()

	adminUser := seedUser(t, r, "admin@x.com", auth.RoleAdmin)

	_, err := svc.UpdateUserRole(ctx, adminUser.ID, adminUser.ID, auth.RoleUser)
	require.ErrorIs(t, err, apperr.ErrValidation)
	require.Contains(t, err.Error(), "own role")
}

func TestUpdateUserRoleTargetMissing(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()

	adminUser := seedUser(t, r, "admin@x.com", auth.RoleAdmin)

	_, err := svc.UpdateUserRole(ctx, adminUser.ID, adminUser.ID+999, auth.RoleAdmin)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteUserCannotDeleteSelf(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()

	adminUser := seedUser(t, r, "admin@x.com", auth.RoleAdmin)

	err := svc.DeleteUser(ctx, adminUser.ID, adminUser.ID)
	require.ErrorIs(t, err, apperr.ErrValidation)

	target := seedUser(t, r, "user@x.com", auth.RoleUser)
	require.NoError(t, svc.DeleteUser(ctx, adminUser.ID, target.ID))

	_, err = r.FindUserByID(ctx, target.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStatsRevenueFoldsOrderTotals(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()

	seedUser(t, r, "a@x.com", auth.RoleUser)
	seedUser(t, r, "b@x.com", auth.RoleUser)

	require.NoError(t, r.DB.Create(&models.Order{UserID: 1, TotalPrice: 100, Status: "paid"}).Error)
	require.NoError(t, r.DB.Create(&models.Order{UserID: 2, TotalPrice: 49.5, Status: "paid"}).Error)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), stats.TotalUsers)
	require.Equal(t, int64(2), stats.TotalOrders)
	require.Equal(t, 149.5, stats.Revenue)
}

func TestStatsEmptyStore(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.TotalUsers)
	require.Zero(t, stats.Revenue)
}
