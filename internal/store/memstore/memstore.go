// Package memstore holds the whole ledger in process memory behind a single
// mutex. Placement and cancellation run under the write lock, which makes
// them trivially linearizable; it is the default backend and the one the
// test suites run against.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/devketanpro/eafoods-preorder/internal/model"
	"github.com/devketanpro/eafoods-preorder/internal/store"
)

type Store struct {
	mu         sync.RWMutex
	products   map[string]*model.Product
	productIDs []string // product ids in creation order, for stable listings
	stock      map[string]*model.StockRecord
	preorders  map[string]*model.PreOrder
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		products:  make(map[string]*model.Product),
		stock:     make(map[string]*model.StockRecord),
		preorders: make(map[string]*model.PreOrder),
	}
}

func (s *Store) CreateProduct(ctx context.Context, name, description string) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.products {
		if strings.EqualFold(p.Name, name) {
			return nil, model.Errorf(model.KindInvalidInput, "product %q already exists", p.Name)
		}
	}

	p := &model.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
	}
	s.products[p.ID] = p
	s.productIDs = append(s.productIDs, p.ID)

	cp := *p
	return &cp, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Product, 0, len(s.productIDs))
	for _, id := range s.productIDs {
		out = append(out, *s.products[id])
	}
	return out, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, model.Errorf(model.KindNotFound, "product not found: %s", id)
	}
	cp := *p
	return &cp, nil
}

func (s *Store) FindProductsByName(ctx context.Context, name string) (*model.Product, []model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(name)
	var exact *model.Product
	var partial []model.Product
	for _, id := range s.productIDs {
		p := s.products[id]
		lower := strings.ToLower(p.Name)
		if lower == needle {
			cp := *p
			exact = &cp
		}
		if strings.Contains(lower, needle) {
			partial = append(partial, *p)
		}
	}
	return exact, partial, nil
}

func (s *Store) SetStock(ctx context.Context, productID string, quantity int, now time.Time) (*model.StockRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return nil, model.Errorf(model.KindNotFound, "product not found: %s", productID)
	}

	rec, ok := s.stock[productID]
	if !ok {
		rec = &model.StockRecord{ProductID: productID}
		s.stock[productID] = rec
	}
	rec.Quantity = quantity
	rec.UpdatedAt = now

	cp := *rec
	return &cp, nil
}

func (s *Store) GetStock(ctx context.Context, productID string) (*model.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.stock[productID]
	if !ok {
		return nil, model.Errorf(model.KindNotFound, "no stock record for product: %s", productID)
	}
	cp := *rec
	return &cp, nil
}

// PlaceOrder re-checks stock under the write lock, so a placement that lost
// the race to a concurrent one fails here even if its earlier read saw
// enough quantity.
func (s *Store) PlaceOrder(ctx context.Context, in store.PlaceOrderInput) (*model.PreOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.stock[in.ProductID]
	if !ok {
		return nil, model.Errorf(model.KindNotFound, "no stock record for product: %s", in.ProductID)
	}
	if rec.Quantity < in.Quantity {
		return nil, model.InsufficientStockError(in.ProductName, rec.Quantity)
	}

	rec.Quantity -= in.Quantity
	rec.UpdatedAt = in.CreatedAt

	o := &model.PreOrder{
		ID:              uuid.New().String(),
		UserID:          in.UserID,
		ProductID:       in.ProductID,
		Slot:            in.Slot,
		Quantity:        in.Quantity,
		DeliveryAddress: in.DeliveryAddress,
		CreatedAt:       in.CreatedAt,
		DeliveryDate:    in.DeliveryDate,
	}
	s.preorders[o.ID] = o

	cp := *o
	return &cp, nil
}

func (s *Store) CancelOrder(ctx context.Context, orderID, userID string, now time.Time) (*model.PreOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.preorders[orderID]
	if !ok || o.UserID != userID {
		// Not-owned is reported as not-found so order ids of other users
		// cannot be probed.
		return nil, model.Errorf(model.KindNotFound, "order not found or not authorized: %s", orderID)
	}
	if o.IsCancelled {
		return nil, model.Errorf(model.KindAlreadyCancelled, "order already cancelled: %s", orderID)
	}

	o.IsCancelled = true
	if rec, ok := s.stock[o.ProductID]; ok {
		rec.Quantity += o.Quantity
		rec.UpdatedAt = now
	}

	cp := *o
	return &cp, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*model.PreOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.preorders[orderID]
	if !ok {
		return nil, model.Errorf(model.KindNotFound, "order not found: %s", orderID)
	}
	cp := *o
	return &cp, nil
}

func (s *Store) OrdersBySlot(ctx context.Context, slot model.DeliverySlot) ([]model.PreOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.PreOrder
	for _, o := range s.preorders {
		if o.Slot == slot && !o.IsCancelled {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) TopProducts(ctx context.Context, start, end time.Time) ([]model.ProductSales, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Compare calendar dates, not instants, so locations do not matter.
	from, to := start.Format(time.DateOnly), end.Format(time.DateOnly)
	totals := make(map[string]int)
	for _, o := range s.preorders {
		if o.IsCancelled {
			continue
		}
		d := o.DeliveryDate.Format(time.DateOnly)
		if d < from || d > to {
			continue
		}
		totals[o.ProductID] += o.Quantity
	}

	out := make([]model.ProductSales, 0, len(totals))
	for id, total := range totals {
		out = append(out, model.ProductSales{Product: *s.products[id], Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Product.Name < out[j].Product.Name
	})
	return out, nil
}
