// Package cart owns per-user cart lines. Stock is validated against the
// catalog at mutation time only; nothing is reserved, so stock can be carted
// past what physically exists by concurrent users. That window is inherited
// from the original design and kept on purpose.
package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

type Line struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type Cart struct {
	UserID string `json:"user_id"`
	Lines  []Line `json:"lines"`
}

var (
	ErrQuantityNotPositive = errors.New("quantity must be positive")
	ErrProductNotFound     = errors.New("product not found")
	ErrItemNotInCart       = errors.New("item not in cart")
	ErrInsufficientStock   = errors.New("insufficient stock")
)

// ProductInfo is the cart-local view of a catalog record. The cart never holds
// a reference into the catalog; it only ever sees copies through this type.
type ProductInfo struct {
	ID        int64
	Name      string
	Price     decimal.Decimal
	Inventory int
}

// ProductSource is the narrow contract the cart has with the catalog.
type ProductSource interface {
	Product(id int64) (ProductInfo, bool)
}

type Store interface {
	GetCart(userID string) Cart
	AddItem(userID string, productID int64, quantity int) (Cart, error)
	RemoveItem(userID string, productID int64) (Cart, error)
	ClearCart(userID string) Cart
}
