package models

type CollectionKind string

const (
	CollectionStash    CollectionKind = "stash"
	CollectionWishList CollectionKind = "wishlist"
)

// Collection is a per-user singleton container of products.
type Collection struct {
	ID       string         `json:"id"`
	Kind     CollectionKind `json:"kind"`
	Products []Product      `json:"products"`
}

func (c Collection) ProductIDs() []string {
	return productIDs(c.Products)
}

func (k CollectionKind) Scope() Scope {
	if k == CollectionWishList {
		return ScopeWishList
	}
	return ScopeStash
}

// Scope names a store collection touched by a write.
type Scope string

const (
	ScopeProducts    Scope = "products"
	ScopeStash       Scope = "stash"
	ScopeWishList    Scope = "wishlist"
	ScopeRoutines    Scope = "routines"
	ScopeLogs        Scope = "logs"
	ScopeRoutineLogs Scope = "routine_logs"
)

// AllScopes is used when a change source cannot tell what changed.
var AllScopes = []Scope{
	ScopeProducts,
	ScopeStash,
	ScopeWishList,
	ScopeRoutines,
	ScopeLogs,
	ScopeRoutineLogs,
}
