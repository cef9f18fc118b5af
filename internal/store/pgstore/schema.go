package pgstore

import "context"

// initSchema is idempotent; it runs on every startup.
func (s *Store) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS stock_balances (
		product_id TEXT PRIMARY KEY REFERENCES products(id) ON DELETE CASCADE,
		quantity INT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		updated_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS preorders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		product_id TEXT NOT NULL REFERENCES products(id),
		slot TEXT NOT NULL,
		quantity INT NOT NULL CHECK (quantity > 0),
		delivery_address TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		delivery_date DATE NOT NULL,
		is_cancelled BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_preorders_slot ON preorders(slot) WHERE NOT is_cancelled;
	CREATE INDEX IF NOT EXISTS idx_preorders_delivery_date ON preorders(delivery_date);
	CREATE INDEX IF NOT EXISTS idx_preorders_user ON preorders(user_id);
	`

	_, err := s.pool.Exec(ctx, schema)
	return err
}
