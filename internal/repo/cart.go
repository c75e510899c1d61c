package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/crafthaus/shop-api/internal/models"
)

func (r *GormRepo) FindCart(ctx context.Context, userID uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB.WithContext(ctx).Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if err != nil {
		return nil, storeErr(err)
	}
	return &cart, nil
}

func (r *GormRepo) CreateCart(ctx context.Context, cart *models.Cart) error {
	return storeErr(r.DB.WithContext(ctx).Create(cart).Error)
}

// SaveCart persists the cart total and its full line set in one
// transaction. Lines missing from cart.Items are deleted, the rest are
// upserted, so a failed write leaves the stored cart untouched.
func (r *GormRepo) SaveCart(ctx context.Context, cart *models.Cart) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Cart{}).
			Where("id = ?", cart.ID).
			Update("total_price", cart.TotalPrice).Error; err != nil {
			return err
		}

		keep := make([]uint, 0, len(cart.Items))
		for i := range cart.Items {
			if cart.Items[i].ID != 0 {
				keep = append(keep, cart.Items[i].ID)
			}
		}
		del := tx.Where("cart_id = ?", cart.ID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		for i := range cart.Items {
			cart.Items[i].CartID = cart.ID
			if err := tx.Save(&cart.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return storeErr(err)
}
