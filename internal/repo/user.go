package repo

import (
	"context"
	"fmt"

	"github.com/crafthaus/shop-api/internal/apperr"
	"github.com/crafthaus/shop-api/internal/models"
)

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}

func (r *GormRepo) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, storeErr(err)
	}
	return &user, nil
}

func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	tx := r.DB.WithContext(ctx).Where("email = ?", user.Email).FirstOrCreate(user)
	if tx.Error != nil {
		return storeErr(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("user with this email %w", apperr.ErrConflict)
	}
	return nil
}

func (r *GormRepo) SaveUser(ctx context.Context, user *models.User) error {
	return storeErr(r.DB.WithContext(ctx).Save(user).Error)
}

// SetRefreshToken overwrites the single stored refresh token value for the
// user. Last writer wins: logging in elsewhere revokes other sessions.
func (r *GormRepo) SetRefreshToken(ctx context.Context, userID uint, token string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ClearRefreshToken removes the stored value only if it still equals the
// one being logged out, so a concurrent login elsewhere is not revoked.
func (r *GormRepo) ClearRefreshToken(ctx context.Context, userID uint, current string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", userID, current).
		Update("refresh_token", "")
	return storeErr(res.Error)
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, storeErr(err)
	}
	return users, nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %w", apperr.ErrNotFound)
	}
	return nil
}

func (r *GormRepo) EmailTaken(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	if err != nil {
		return false, storeErr(err)
	}
	return count > 0, nil
}
