package store

import (
	"context"
	"time"

	"github.com/devketanpro/eafoods-preorder/internal/model"
)

// PlaceOrderInput carries a fully validated order into the store. The store
// assigns the order ID and performs the stock check+decrement and the order
// insert as one indivisible step.
type PlaceOrderInput struct {
	UserID          string
	ProductID       string
	ProductName     string
	Slot            model.DeliverySlot
	Quantity        int
	DeliveryAddress string
	CreatedAt       time.Time
	DeliveryDate    time.Time
}

// Store persists products, stock balances and pre-orders. Implementations
// must make PlaceOrder and CancelOrder linearizable per product: two
// concurrent placements may never both pass the stock check when only one
// could be satisfied.
type Store interface {
	CreateProduct(ctx context.Context, name, description string) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)

	// FindProductsByName returns the case-insensitive exact match (nil if
	// none) and all case-insensitive substring matches.
	FindProductsByName(ctx context.Context, name string) (*model.Product, []model.Product, error)

	// SetStock upserts the stock record for a product. Window policy is
	// enforced by the caller, not here.
	SetStock(ctx context.Context, productID string, quantity int, now time.Time) (*model.StockRecord, error)
	GetStock(ctx context.Context, productID string) (*model.StockRecord, error)

	// PlaceOrder atomically decrements stock and creates the order. Fails
	// with KindNotFound when no stock record exists and KindInsufficientStock
	// when available quantity is below the requested quantity.
	PlaceOrder(ctx context.Context, in PlaceOrderInput) (*model.PreOrder, error)

	// CancelOrder atomically marks the order cancelled and restores its
	// quantity to stock. An order that does not exist or is not owned by
	// userID fails with KindNotFound; a cancelled one with
	// KindAlreadyCancelled.
	CancelOrder(ctx context.Context, orderID, userID string, now time.Time) (*model.PreOrder, error)

	GetOrder(ctx context.Context, orderID string) (*model.PreOrder, error)
	OrdersBySlot(ctx context.Context, slot model.DeliverySlot) ([]model.PreOrder, error)

	// TopProducts aggregates quantities of non-cancelled orders whose
	// delivery date falls within [start, end], descending by total.
	TopProducts(ctx context.Context, start, end time.Time) ([]model.ProductSales, error)
}
