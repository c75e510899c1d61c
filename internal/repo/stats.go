package repo

import (
	"context"

	"github.com/crafthaus/shop-api/internal/models"
)

type Stats struct {
	TotalUsers    int64   `json:"total_users"`
	TotalProducts int64   `json:"total_products"`
	TotalOrders   int64   `json:"total_orders"`
	Revenue       float64 `json:"revenue"`
}

func (r *GormRepo) AggregateStats(ctx context.Context) (*Stats, error) {
	db := r.DB.WithContext(ctx)
	var s Stats

	if err := db.Model(&models.User{}).Count(&s.TotalUsers).Error; err != nil {
		return nil, storeErr(err)
	}
	if err := db.Model(&models.Product{}).Count(&s.TotalProducts).Error; err != nil {
		return nil, storeErr(err)
	}
	if err := db.Model(&models.Order{}).Count(&s.TotalOrders).Error; err != nil {
		return nil, storeErr(err)
	}

	var revenue *float64
	err := db.Model(&models.Order{}).
		Select("SUM(total_price)").
		Scan(&revenue).Error
	if err != nil {
		return nil, storeErr(err)
	}
	if revenue != nil {
		s.Revenue = *revenue
	}
	return &s, nil
}
