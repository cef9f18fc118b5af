// Package seed creates the baseline catalog so a fresh deployment has
// products and stock to take orders against.
package seed

import (
	"context"
	"strings"
	"time"

	"github.com/devketanpro/eafoods-preorder/internal/model"
	"github.com/devketanpro/eafoods-preorder/internal/store"
)

const defaultStock = 50

var products = []struct {
	Name        string
	Description string
}{
	{"Apple", "Fresh red apples"},
	{"Banana", "Organic ripe bananas"},
	{"Carrot", "Crunchy orange carrots"},
	{"Tomato", "Juicy farm tomatoes"},
	{"Milk", "1L organic cow milk"},
	{"Bread", "Whole wheat bread loaf"},
	{"Eggs", "Pack of 12 free-range eggs"},
}

// Run creates any missing baseline products and gives each product without a
// stock record a default balance. Existing rows are left untouched, so it is
// safe on every startup. Returns the number of products created.
func Run(ctx context.Context, st store.Store, now time.Time) (int, error) {
	existing, err := st.ListProducts(ctx)
	if err != nil {
		return 0, err
	}
	byName := make(map[string]model.Product, len(existing))
	for _, p := range existing {
		byName[strings.ToLower(p.Name)] = p
	}

	created := 0
	for _, def := range products {
		p, ok := byName[strings.ToLower(def.Name)]
		if !ok {
			np, err := st.CreateProduct(ctx, def.Name, def.Description)
			if err != nil {
				return created, err
			}
			p = *np
			created++
		}
		if _, err := st.GetStock(ctx, p.ID); model.IsKind(err, model.KindNotFound) {
			if _, err := st.SetStock(ctx, p.ID, defaultStock, now); err != nil {
				return created, err
			}
		} else if err != nil {
			return created, err
		}
	}
	return created, nil
}
