package service

import (
	"context"
	"strings"

	"github.com/devketanpro/eafoods-preorder/internal/model"
	"github.com/devketanpro/eafoods-preorder/internal/store"
)

// Catalog resolves free-text product names against the product registry.
type Catalog struct {
	store store.Store
}

func NewCatalog(st store.Store) *Catalog {
	return &Catalog{store: st}
}

// Resolve returns the product whose name equals name case-insensitively.
// With no exact match it fails KindAmbiguous carrying all substring matches
// as candidates, or KindNotFound when there are none. The caller must never
// pick a candidate silently.
func (c *Catalog) Resolve(ctx context.Context, name string) (*model.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.Errorf(model.KindInvalidInput, "product name is required")
	}

	exact, partial, err := c.store.FindProductsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if exact != nil {
		return exact, nil
	}
	if len(partial) == 0 {
		return nil, model.Errorf(model.KindNotFound, "no products found for %q", name)
	}
	return nil, model.AmbiguousError(name, partial)
}
