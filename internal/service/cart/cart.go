// Package cart owns the per-user cart aggregate. Line quantities are
// checked against stock at admission time only; the unit price is
// snapshotted when a product first enters the cart and sticks through
// merges. The total is a full fold over the lines after every mutation.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/crafthaus/shop-api/internal/apperr"
	"github.com/crafthaus/shop-api/internal/events"
	"github.com/crafthaus/shop-api/internal/logging"
	"github.com/crafthaus/shop-api/internal/models"
	"github.com/crafthaus/shop-api/internal/repo"
)

type Service struct {
	Repo   *repo.GormRepo
	Events events.Publisher

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewService(r *repo.GormRepo, pub events.Publisher) *Service {
	return &Service{
		Repo:   r,
		Events: pub,
		locks:  make(map[uint]*sync.Mutex),
	}
}

// userLock serializes mutations per user so two concurrent writes cannot
// read the same cart state and race past the stock check.
func (s *Service) userLock(userID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// GetCart returns the user's cart, or an empty one if nothing has been
// added yet. The empty cart is not persisted until the first AddItem.
func (s *Service) GetCart(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.Repo.FindCart(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) AddItem(ctx context.Context, userID, productID, quantity uint) (*models.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", apperr.ErrValidation)
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.Repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("product %w", apperr.ErrNotFound)
		}
		return nil, err
	}

	cart, err := s.Repo.FindCart(ctx, userID)
	fresh := false
	if errors.Is(err, apperr.ErrNotFound) {
		cart = &models.Cart{UserID: userID}
		fresh = true
	} else if err != nil {
		return nil, err
	}

	if line := findLine(cart, productID); line != nil {
		var headroom uint
		if product.Stock > line.Quantity {
			headroom = product.Stock - line.Quantity
		}
		if quantity > headroom {
			return nil, fmt.Errorf(
				"cannot add %d more items, only %d available: %w",
				quantity, headroom, apperr.ErrInsufficientStock,
			)
		}
		line.Quantity += quantity
	} else {
		if quantity > product.Stock {
			return nil, fmt.Errorf(
				"only %d items available in stock: %w",
				product.Stock, apperr.ErrInsufficientStock,
			)
		}
		// Materialize the cart row only once the add is admissible, so a
		// rejected first add leaves nothing behind.
		if fresh {
			if err := s.Repo.CreateCart(ctx, cart); err != nil {
				return nil, err
			}
		}
		cart.Items = append(cart.Items, models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
		})
	}

	recompute(cart)
	if err := s.Repo.SaveCart(ctx, cart); err != nil {
		return nil, err
	}

	s.publish(ctx, userID, map[string]any{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": productID,
		"quantity":  quantity,
	})
	return cart, nil
}

// UpdateItem sets the line quantity to an absolute value.
func (s *Service) UpdateItem(ctx context.Context, userID, productID, quantity uint) (*models.Cart, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", apperr.ErrValidation)
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.Repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("product %w", apperr.ErrNotFound)
		}
		return nil, err
	}
	if quantity > product.Stock {
		return nil, fmt.Errorf(
			"only %d items available in stock: %w",
			product.Stock, apperr.ErrInsufficientStock,
		)
	}

	cart, err := s.Repo.FindCart(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("cart %w", apperr.ErrNotFound)
		}
		return nil, err
	}

	line := findLine(cart, productID)
	if line == nil {
		return nil, fmt.Errorf("item not in cart: %w", apperr.ErrNotFound)
	}
	line.Quantity = quantity

	recompute(cart)
	if err := s.Repo.SaveCart(ctx, cart); err != nil {
		return nil, err
	}

	s.publish(ctx, userID, map[string]any{
		"type":      "cart_item_updated",
		"userID":    userID,
		"productID": productID,
		"quantity":  quantity,
	})
	return cart, nil
}

// RemoveItem filters the line out of the cart. Removing a product that is
// not in the cart is a no-op success.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uint) (*models.Cart, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.Repo.FindCart(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	for _, it := range cart.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	cart.Items = kept

	recompute(cart)
	if err := s.Repo.SaveCart(ctx, cart); err != nil {
		return nil, err
	}

	s.publish(ctx, userID, map[string]any{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
	})
	return cart, nil
}

func (s *Service) ClearCart(ctx context.Context, userID uint) (*models.Cart, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	cart, err := s.Repo.FindCart(ctx, userID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("cart %w", apperr.ErrNotFound)
		}
		return nil, err
	}

	cart.Items = nil
	recompute(cart)
	if err := s.Repo.SaveCart(ctx, cart); err != nil {
		return nil, err
	}

	s.publish(ctx, userID, map[string]any{
		"type":   "cart_cleared",
		"userID": userID,
	})
	cart.Items = []models.CartItem{}
	return cart, nil
}

func findLine(cart *models.Cart, productID uint) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			return &cart.Items[i]
		}
	}
	return nil
}

func recompute(cart *models.Cart) {
	total := 0.0
	for _, it := range cart.Items {
		total += it.Price * float64(it.Quantity)
	}
	cart.TotalPrice = total
}

func (s *Service) publish(ctx context.Context, userID uint, event map[string]any) {
	if s.Events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.Events.Publish(pubCtx, events.TopicCartEvents, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", events.TopicCartEvents, "error", err)
	}
}
