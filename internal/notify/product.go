package notify

import (
	"errors"

	"github.com/julianstephens/skinlog/internal/models"
	"github.com/julianstephens/skinlog/internal/storage"
)

type ProductEventKind int

const (
	ProductChanged ProductEventKind = iota
	ProductDeleted
	ProductError
)

type ProductEvent struct {
	Kind    ProductEventKind
	Product models.Product
	Changes []models.ProductFieldChange
	Err     error
}

// ProductReader is the part of the store ObserveProduct needs.
type ProductReader interface {
	GetProduct(id string) (models.Product, error)
}

// ObserveProduct reports field-level changes to one product. The first
// read only records a baseline. Deleted and Error end the subscription.
func ObserveProduct(h *Hub, store ProductReader, id string, fn func(ProductEvent)) *Token {
	var prev models.Product
	initialized := false

	s := &subscription{scopes: map[models.Scope]bool{models.ScopeProducts: true}}
	s.fail = func(err error) {
		h.deliver(s, func() { fn(ProductEvent{Kind: ProductError, Err: err}) })
	}
	s.refresh = func() bool {
		p, err := store.GetProduct(id)
		if errors.Is(err, storage.ErrNotFound) {
			h.deliver(s, func() { fn(ProductEvent{Kind: ProductDeleted, Product: prev}) })
			return true
		}
		if err != nil {
			s.fail(err)
			return true
		}
		if !initialized {
			initialized = true
			prev = p
			return false
		}
		changes := models.DiffProduct(prev, p)
		prev = p
		if len(changes) == 0 {
			return false
		}
		h.deliver(s, func() { fn(ProductEvent{Kind: ProductChanged, Product: p, Changes: changes}) })
		return false
	}
	return h.register(s)
}
