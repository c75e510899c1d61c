package cart

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
	"github.com/crafthaus/shop-api/internal/events"
	"github.com/crafthaus/shop-api/internal/models"
	"github.com/crafthaus/shop-api/internal/repo"
)

func newTestService(t *testing.T) (*Service, *repo.GormRepo) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	r := repo.New(db)
	return NewService(r, events.Nop{}), r
}

func seedProduct(t *testing.T, r *repo.GormRepo, price float64, stock uint) *models.Product {
	t.Helper()
	ctx := context.Background()

	col := &models.Collection{Title: "default"}
	require.NoError(t, r.CreateCollection(ctx, col))

	p := &models.Product{
		Title:        "product",
		Description:  "test product",
		Price:        price,
		Stock:        stock,
		CollectionID: col.ID,
	}
	require.NoError(t, r.CreateProduct(ctx, p))
	return p
}

func fold(cart *models.Cart) float64 {
	total := 0.0
	for _, it := range cart.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

func TestGetCartEmptyOnFirstRead(t *testing.T) {
	svc, _ := newTestService(t)

	cart, err := svc.GetCart(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
	require.Zero(t, cart.TotalPrice)
}

func TestAddItemScenario(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, r, 10, 3)

	cart, err := svc.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, uint(2), cart.Items[0].Quantity)
	require.Equal(t, 10.0, cart.Items[0].Price)
	require.Equal(t, 20.0, cart.TotalPrice)

	_, err = svc.AddItem(ctx, 1, p.ID, 2)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	require.Contains(t, err.Error(), "only 1 available")

	cart, err = svc.AddItem(ctx, 1, p.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, uint(3), cart.Items[0].Quantity)
	require.Equal(t, 30.0, cart.TotalPrice)
}

func TestAddItemValidation(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, r, 10, 3)

	_, err := svc.AddItem(ctx, 1, p.ID, 0)
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.AddItem(ctx, 1, p.ID+999, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAddItemOverStockDoesNotMutate(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, r, 10, 3)

	_, err := svc.AddItem(ctx, 1, p.ID, 4)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)

	cart, err := svc.GetCart(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
	require.Zero(t, cart.TotalPrice)

	// The rejected add must not have materialized a cart row.
	require.Zero(t, cart.ID)
	_, err = svc.ClearCart(ctx, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMergeKeepsPriceSnapshot(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, r, 10, 10)

	_, err := svc.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)

	p.Price = 15
	require.NoError(t, r.SaveProduct(ctx, p))

	cart, err := svc.AddItem(ctx, 1, p.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	require.Equal(t, uint(5), cart.Items[0].Quantity)
	require.Equal(t, 10.0, cart.Items[0].Price)
	require.Equal(t, 50.0, cart.TotalPrice)
}

func TestTotalIsAlwaysFoldOfLines(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()
	p1 := seedProduct(t, r, 10, 100)
	p2 := seedProduct(t, r, 2.5, 100)
	p3 := seedProduct(t, r, 7, 100)

	var cart *models.Cart
	var err error

	cart, err = svc.AddItem(ctx, 1, p1.ID, 3)
	require.NoError(t, err)
	require.Equal(t, fold(cart), cart.TotalPrice)

	cart, err = svc.AddItem(ctx, 1, p2.ID, 4)
	require.NoError(t, err)
	require.Equal(t, fold(cart), cart.TotalPrice)

	cart, err = svc.UpdateItem(ctx, 1, p1.ID, 1)
	require.NoError(t, err)
	require.Equal(t, fold(cart), cart.TotalPrice)

	cart, err = svc.AddItem(ctx, 1, p3.ID, 2)
	require.NoError(t, err)
	require.Equal(t, fold(cart), cart.TotalPrice)

	cart, err = svc.RemoveItem(ctx, 1, p2.ID)
	require.NoError(t, err)
	require.Equal(t, fold(cart), cart.TotalPrice)
	require.Equal(t, 24.0, cart.TotalPrice)
}

func TestUpdateItemSetsAbsoluteQuantity(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, r, 10, 5)

	_, err := svc.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)

	cart, err := svc.UpdateItem(ctx, 1, p.ID, 5)
	require.NoError(t, err)
	require.Equal(t, uint(5), cart.Items[0].Quantity)
	require.Equal(t, 50.0, cart.TotalPrice)

	_, err = svc.UpdateItem(ctx, 1, p.ID, 6)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
}

func TestUpdateItemNotFoundCauses(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, r, 10, 5)

	_, err := svc.UpdateItem(ctx, 1, p.ID+999, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.Contains(t, err.Error(), "product")

	_, err = svc.UpdateItem(ctx, 1, p.ID, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.Contains(t, err.Error(), "cart")

	p2 := seedProduct(t, r, 5, 5)
	_, err = svc.AddItem(ctx, 1, p2.ID, 1)
	require.NoError(t, err)

	_, err = svc.UpdateItem(ctx, 1, p.ID, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.Contains(t, err.Error(), "item not in cart")
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, r, 10, 5)

	cart, err := svc.RemoveItem(ctx, 1, p.ID)
	require.NoError(t, err)
	require.Empty(t, cart.Items)

	_, err = svc.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)

	cart, err = svc.RemoveItem(ctx, 1, p.ID)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
	require.Zero(t, cart.TotalPrice)

	cart, err = svc.RemoveItem(ctx, 1, p.ID)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
}

func TestClearCart(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()

	_, err := svc.ClearCart(ctx, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	p := seedProduct(t, r, 10, 5)
	_, err = svc.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)

	cart, err := svc.ClearCart(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, cart.Items)
	require.Zero(t, cart.TotalPrice)

	// The cart row survives the clear.
	cart, err = svc.GetCart(ctx, 1)
	require.NoError(t, err)
	require.NotZero(t, cart.ID)
	require.Empty(t, cart.Items)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, r := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, r, 10, 5)

	_, err := svc.AddItem(ctx, 1, p.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 2, p.ID, 3)
	require.NoError(t, err)

	cart1, err := svc.GetCart(ctx, 1)
	require.NoError(t, err)
	cart2, err := svc.GetCart(ctx, 2)
	require.NoError(t, err)

	require.Equal(t, 20.0, cart1.TotalPrice)
	require.Equal(t, 30.0, cart2.TotalPrice)
}
