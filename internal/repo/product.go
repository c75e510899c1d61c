package repo

import (
	"context"
	"fmt"

	"github.com/crafthaus/shop-api/internal/apperr"
	"github.com/crafthaus/shop-api/internal/models"
)

func (r *GormRepo) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).Preload("Images").First(&product, id).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return &product, nil
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int) ([]models.Product, int64, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Count(&total).Error; err != nil {
		return nil, 0, storeErr(err)
	}
	var items []models.Product
	err := r.DB.WithContext(ctx).Preload("Images").
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return items, total, nil
}

func (r *GormRepo) ListProductsByCollection(ctx context.Context, collectionID uint, offset, limit int) ([]models.Product, int64, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("collection_id = ?", collectionID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, storeErr(err)
	}
	var items []models.Product
	err := r.DB.WithContext(ctx).Preload("Images").
		Where("collection_id = ?", collectionID).
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return items, total, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	return storeErr(r.DB.WithContext(ctx).Create(product).Error)
}

func (r *GormRepo) SaveProduct(ctx context.Context, product *models.Product) error {
	return storeErr(r.DB.WithContext(ctx).Save(product).Error)
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		return storeErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %w", apperr.ErrNotFound)
	}
	return nil
}
