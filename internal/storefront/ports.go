// Package storefront defines the collaborator ports the commerce surface
// is built from. Catalog, cart, order and payment handling live in their
// own services; this package only describes the capabilities they expose
// and ties them to the identity resolved by the session guard.
package storefront

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product is the catalog projection the storefront reads.
type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	InStock     bool      `json:"in_stock"`
}

// CartLine is one product/quantity pair in an account's cart.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Order is a placed order header.
type Order struct {
	ID         uuid.UUID  `json:"id"`
	AccountID  uuid.UUID  `json:"account_id"`
	Lines      []CartLine `json:"lines"`
	TotalCents int64      `json:"total_cents"`
	Status     string     `json:"status"`
	PlacedAt   time.Time  `json:"placed_at"`
}

// PaymentIntent references an external payment to be confirmed client-side.
type PaymentIntent struct {
	OrderID      uuid.UUID `json:"order_id"`
	ClientSecret string    `json:"client_secret"`
}

// PlacedOrder is the placement response, with the payment intent when a
// processor is configured.
type PlacedOrder struct {
	Order   *Order         `json:"order"`
	Payment *PaymentIntent `json:"payment,omitempty"`
}

// Catalog lists and resolves products.
type Catalog interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)
}

// CartStore keeps one cart per account.
type CartStore interface {
	GetCart(ctx context.Context, accountID uuid.UUID) ([]CartLine, error)
	PutCart(ctx context.Context, accountID uuid.UUID, lines []CartLine) error
}

// OrderStore persists placed orders.
type OrderStore interface {
	PlaceOrder(ctx context.Context, accountID uuid.UUID, lines []CartLine) (*Order, error)
	ListOrders(ctx context.Context, accountID uuid.UUID) ([]Order, error)
}

// PaymentIntents creates payment intents with the external processor.
type PaymentIntents interface {
	CreateIntent(ctx context.Context, order *Order) (*PaymentIntent, error)
}
