// Package catalog is the single authority over product records: existence,
// price and inventory. All state lives in process memory; callers only ever
// receive copies, never views into the store.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory_count"`
}

// ErrValidation is the base class for rejected input. Specific causes wrap it
// so callers can errors.Is against either level.
var ErrValidation = errors.New("validation failed")

var (
	ErrNameRequired      = fmt.Errorf("%w: name must not be empty", ErrValidation)
	ErrNegativePrice     = fmt.Errorf("%w: price must not be negative", ErrValidation)
	ErrNegativeInventory = fmt.Errorf("%w: inventory_count must not be negative", ErrValidation)
)

// Filter is a transient query descriptor. Nil/zero fields constrain nothing;
// set fields combine with AND.
type Filter struct {
	NameContains string
	MinPrice     *decimal.Decimal // inclusive
	MaxPrice     *decimal.Decimal // inclusive
	InStock      *bool            // true: inventory > 0, false: inventory == 0
}

// Matches reports whether p satisfies every set predicate.
func (f Filter) Matches(p Product) bool {
	if f.NameContains != "" &&
		!strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.InStock != nil {
		if *f.InStock && p.Inventory <= 0 {
			return false
		}
		if !*f.InStock && p.Inventory != 0 {
			return false
		}
	}
	return true
}

type Store interface {
	Create(name, description string, price decimal.Decimal, inventory int) (Product, error)
	List() []Product
	Get(id int64) (Product, bool)
	UpdateInventory(id int64, count int) (Product, bool, error)
	FilterProducts(f Filter) []Product
	Delete(id int64) bool
}

func validate(name string, price decimal.Decimal, inventory int) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if price.IsNegative() {
		return ErrNegativePrice
	}
	if inventory < 0 {
		return ErrNegativeInventory
	}
	return nil
}
