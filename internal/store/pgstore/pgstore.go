// Package pgstore backs the ledger with PostgreSQL. Placement relies on a
// row-conditional UPDATE (quantity >= requested) inside the same transaction
// as the order insert; cancellation locks the order row FOR UPDATE before
// flipping the flag and restoring stock.
package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devketanpro/eafoods-preorder/internal/model"
	"github.com/devketanpro/eafoods-preorder/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Connect builds the pool, pings the database and bootstraps the schema.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	config.MaxConns = 20
	config.MinConns = 2

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s := &Store{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) CreateProduct(ctx context.Context, name, description string) (*model.Product, error) {
	p := &model.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO products (id, name, description) VALUES ($1, $2, $3)`,
		p.ID, p.Name, p.Description,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return nil, model.Errorf(model.KindInvalidInput, "product %q already exists", name)
		}
		return nil, err
	}
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description FROM products ORDER BY created_at, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProducts(rows)
}

func (s *Store) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.Errorf(model.KindNotFound, "product not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) FindProductsByName(ctx context.Context, name string) (*model.Product, []model.Product, error) {
	var exact *model.Product
	var p model.Product
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description FROM products WHERE LOWER(name) = LOWER($1)`, name,
	).Scan(&p.ID, &p.Name, &p.Description)
	switch {
	case err == nil:
		exact = &p
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description FROM products
		 WHERE name ILIKE '%' || $1 || '%' ORDER BY created_at, name`, name)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	partial, err := scanProducts(rows)
	if err != nil {
		return nil, nil, err
	}
	return exact, partial, nil
}

func (s *Store) SetStock(ctx context.Context, productID string, quantity int, now time.Time) (*model.StockRecord, error) {
	if _, err := s.GetProduct(ctx, productID); err != nil {
		return nil, err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO stock_balances (product_id, quantity, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		productID, quantity, now,
	)
	if err != nil {
		return nil, err
	}
	return &model.StockRecord{ProductID: productID, Quantity: quantity, UpdatedAt: now}, nil
}

func (s *Store) GetStock(ctx context.Context, productID string) (*model.StockRecord, error) {
	var rec model.StockRecord
	err := s.pool.QueryRow(ctx,
		`SELECT product_id, quantity, updated_at FROM stock_balances WHERE product_id = $1`,
		productID,
	).Scan(&rec.ProductID, &rec.Quantity, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.Errorf(model.KindNotFound, "no stock record for product: %s", productID)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) PlaceOrder(ctx context.Context, in store.PlaceOrderInput) (*model.PreOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// The conditional update is the oversell guard: it decrements only when
	// enough stock remains, in a single statement.
	tag, err := tx.Exec(ctx, `
		UPDATE stock_balances
		SET quantity = quantity - $2, updated_at = $3
		WHERE product_id = $1 AND quantity >= $2`,
		in.ProductID, in.Quantity, in.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		var available int
		err := tx.QueryRow(ctx,
			`SELECT quantity FROM stock_balances WHERE product_id = $1`, in.ProductID,
		).Scan(&available)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.Errorf(model.KindNotFound, "no stock record for product: %s", in.ProductID)
		}
		if err != nil {
			return nil, err
		}
		return nil, model.InsufficientStockError(in.ProductName, available)
	}

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
	_, err = tx.Exec(ctx, `
		INSERT INTO preorders
			(id, user_id, product_id, slot, quantity, delivery_address, created_at, delivery_date, is_cancelled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE)`,
		o.ID, o.UserID, o.ProductID, string(o.Slot), o.Quantity, o.DeliveryAddress, o.CreatedAt, o.DeliveryDate,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Store) CancelOrder(ctx context.Context, orderID, userID string, now time.Time) (*model.PreOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var o model.PreOrder
	var slot string
	err = tx.QueryRow(ctx, `
		SELECT id, user_id, product_id, slot, quantity, delivery_address, created_at, delivery_date, is_cancelled
		FROM preorders WHERE id = $1 AND user_id = $2
		FOR UPDATE`,
		orderID, userID,
	).Scan(&o.ID, &o.UserID, &o.ProductID, &slot, &o.Quantity, &o.DeliveryAddress, &o.CreatedAt, &o.DeliveryDate, &o.IsCancelled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.Errorf(model.KindNotFound, "order not found or not authorized: %s", orderID)
	}
	if err != nil {
		return nil, err
	}
	o.Slot = model.DeliverySlot(slot)

	if o.IsCancelled {
		return nil, model.Errorf(model.KindAlreadyCancelled, "order already cancelled: %s", orderID)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE preorders SET is_cancelled = TRUE WHERE id = $1`, o.ID); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE stock_balances SET quantity = quantity + $2, updated_at = $3
		WHERE product_id = $1`,
		o.ProductID, o.Quantity, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	o.IsCancelled = true
	return &o, nil
}

func (s *Store) GetOrder(ctx context.Context, orderID string) (*model.PreOrder, error) {
	var o model.PreOrder
	var slot string
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, product_id, slot, quantity, delivery_address, created_at, delivery_date, is_cancelled
		FROM preorders WHERE id = $1`, orderID,
	).Scan(&o.ID, &o.UserID, &o.ProductID, &slot, &o.Quantity, &o.DeliveryAddress, &o.CreatedAt, &o.DeliveryDate, &o.IsCancelled)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.Errorf(model.KindNotFound, "order not found: %s", orderID)
	}
	if err != nil {
		return nil, err
	}
	o.Slot = model.DeliverySlot(slot)
	return &o, nil
}

func (s *Store) OrdersBySlot(ctx context.Context, slot model.DeliverySlot) ([]model.PreOrder, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, product_id, slot, quantity, delivery_address, created_at, delivery_date, is_cancelled
		FROM preorders WHERE slot = $1 AND NOT is_cancelled
		ORDER BY created_at`, string(slot))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PreOrder
	for rows.Next() {
		var o model.PreOrder
		var sl string
		if err := rows.Scan(&o.ID, &o.UserID, &o.ProductID, &sl, &o.Quantity, &o.DeliveryAddress, &o.CreatedAt, &o.DeliveryDate, &o.IsCancelled); err != nil {
			return nil, err
		}
		o.Slot = model.DeliverySlot(sl)
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) TopProducts(ctx context.Context, start, end time.Time) ([]model.ProductSales, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.name, p.description, SUM(o.quantity) AS total
		FROM preorders o
		JOIN products p ON p.id = o.product_id
		WHERE NOT o.is_cancelled AND o.delivery_date BETWEEN $1 AND $2
		GROUP BY p.id, p.name, p.description
		ORDER BY total DESC, p.name`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ProductSales
	for rows.Next() {
		var row model.ProductSales
		if err := rows.Scan(&row.Product.ID, &row.Product.Name, &row.Product.Description, &row.Total); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func scanProducts(rows pgx.Rows) ([]model.Product, error) {
	var out []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
