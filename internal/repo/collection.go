package repo

import (
	"context"
	"fmt"

	"github.com/crafthaus/shop-api/internal/apperr"
	"github.com/crafthaus/shop-api/internal/models"
)

func (r *GormRepo) FindCollection(ctx context.Context, id uint) (*models.Collection, error) {
	var col models.Collection
	if err := r.DB.WithContext(ctx).First(&col, id).Error; err != nil {
		return nil, storeErr(err)
	}
	return &col, nil
}

func (r *GormRepo) ListCollections(ctx context.Context, offset, limit int) ([]models.Collection, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Collection{}).Count(&total).Error; err != nil {
		return nil, 0, storeErr(err)
	}
	var items []models.Collection
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return items, total, nil
}

func (r *GormRepo) CreateCollection(ctx context.Context, col *models.Collection) error {
	return storeErr(r.DB.WithContext(ctx).Create(col).Error)
}

func (r *GormRepo) SaveCollection(ctx context.Context, col *models.Collection) error {
	return storeErr(r.DB.WithContext(ctx).Save(col).Error)
}

func (r *GormRepo) DeleteCollection(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Collection{}, id)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("collection %w", apperr.ErrNotFound)
	}
	return nil
}
