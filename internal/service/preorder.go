package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/devketanpro/eafoods-preorder/internal/model"
	"github.com/devketanpro/eafoods-preorder/internal/store"
)

// PreOrderService is the reservation engine. It validates placement requests,
// resolves the product, computes the delivery date and delegates the atomic
// stock transaction to the store. All failures are *model.Error kinds; the
// store is never mutated on a failed validation.
type PreOrderService struct {
	store   store.Store
	catalog *Catalog
}

func NewPreOrderService(st store.Store) *PreOrderService {
	return &PreOrderService{
		store:   st,
		catalog: NewCatalog(st),
	}
}

// PlaceOrderRequest carries the raw placement input. Quantity must already
// be parsed to an integer by the transport; everything else is validated
// here.
type PlaceOrderRequest struct {
	UserID      string
	ProductName string
	Quantity    int
	Slot        string
	Address     string
}

// PlaceOrder runs the validation chain in a fixed order (first failing check
// wins), then atomically decrements stock and creates the order.
func (s *PreOrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest, now time.Time) (*model.PreOrder, error) {
	product, err := s.catalog.Resolve(ctx, req.ProductName)
	if err != nil {
		return nil, err
	}

	if req.Quantity <= 0 {
		return nil, model.Errorf(model.KindInvalidInput, "quantity must be greater than zero")
	}

	slot, ok := model.ParseSlot(req.Slot)
	if !ok {
		return nil, model.Errorf(model.KindInvalidInput,
			"invalid slot, choose one of: %s", strings.Join(model.SlotNames(), ", "))
	}

	address := strings.TrimSpace(req.Address)
	if err := validateAddress(address); err != nil {
		return nil, err
	}

	// Advisory read: gives a fast not-found and an accurate availability
	// message. The store re-checks under its own lock, so losing a race
	// here still cannot oversell.
	stock, err := s.store.GetStock(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if stock.Quantity < req.Quantity {
		return nil, model.InsufficientStockError(product.Name, stock.Quantity)
	}

	return s.store.PlaceOrder(ctx, store.PlaceOrderInput{
		UserID:          req.UserID,
		ProductID:       product.ID,
		ProductName:     product.Name,
		Slot:            slot,
		Quantity:        req.Quantity,
		DeliveryAddress: address,
		CreatedAt:       now,
		DeliveryDate:    DeliveryDate(now),
	})
}

// CancelOrder marks the caller's order cancelled and restores its quantity
// to stock, exactly once. Orders of other users are indistinguishable from
// missing ones.
func (s *PreOrderService) CancelOrder(ctx context.Context, orderID, userID string, now time.Time) (*model.PreOrder, error) {
	return s.store.CancelOrder(ctx, orderID, userID, now)
}

// AdjustStock sets a product's stock level directly. Allowed only inside the
// replenishment windows; outside them nothing is written.
func (s *PreOrderService) AdjustStock(ctx context.Context, productID string, quantity int, now time.Time) (*model.StockRecord, error) {
	if quantity < 0 {
		return nil, model.Errorf(model.KindInvalidInput, "quantity must not be negative")
	}
	if !WithinStockUpdateWindow(now) {
		return nil, model.Errorf(model.KindOutOfWindow,
			"stock can only be updated during allowed windows: morning (8AM-12PM) or evening (6PM-7PM)")
	}
	return s.store.SetStock(ctx, productID, quantity, now)
}

// ResolveProduct exposes catalog resolution to the API layer.
func (s *PreOrderService) ResolveProduct(ctx context.Context, name string) (*model.Product, error) {
	return s.catalog.Resolve(ctx, name)
}

func (s *PreOrderService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.store.ListProducts(ctx)
}

func (s *PreOrderService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.store.GetProduct(ctx, id)
}

func (s *PreOrderService) GetStock(ctx context.Context, productID string) (*model.StockRecord, error) {
	return s.store.GetStock(ctx, productID)
}

func (s *PreOrderService) GetOrder(ctx context.Context, orderID string) (*model.PreOrder, error) {
	return s.store.GetOrder(ctx, orderID)
}

// OrdersBySlot lists active orders for a slot, for fulfillment.
func (s *PreOrderService) OrdersBySlot(ctx context.Context, slotInput string) ([]model.PreOrder, error) {
	slot, ok := model.ParseSlot(slotInput)
	if !ok {
		return nil, model.Errorf(model.KindInvalidInput,
			"invalid slot, choose one of: %s", strings.Join(model.SlotNames(), ", "))
	}
	return s.store.OrdersBySlot(ctx, slot)
}

// TopProducts aggregates non-cancelled order quantities per product over the
// delivery-date range, descending. Swapped bounds are tolerated.
func (s *PreOrderService) TopProducts(ctx context.Context, start, end time.Time) ([]model.ProductSales, error) {
	if start.After(end) {
		start, end = end, start
	}
	return s.store.TopProducts(ctx, start, end)
}

// validateAddress enforces the delivery address rules: non-empty, at least
// one letter, and only letters, digits, spaces and ",.-".
func validateAddress(address string) error {
	if address == "" {
		return model.Errorf(model.KindInvalidInput, "delivery address cannot be empty")
	}

	hasLetter := false
	for _, r := range address {
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	if !hasLetter {
		return model.Errorf(model.KindInvalidInput, "delivery address must contain at least one letter")
	}

	for _, r := range address {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			r == ',' || r == '.' || r == '-' {
			continue
		}
		return model.Errorf(model.KindInvalidInput,
			"delivery address can only contain letters, numbers, spaces, and ,.-")
	}
	return nil
}
