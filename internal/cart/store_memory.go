package cart

import (
	"hash/fnv"
	"sync"
)

const shardCount = 16

type shard struct {
	mu    sync.RWMutex
	carts map[string][]Line
}

// MemStore partitions carts across a fixed set of shards keyed by user id, so
// mutations for different users rarely contend on the same lock. Lines are a
// slice, not a map, to keep insertion order stable.
type MemStore struct {
	products ProductSource
	shards   [shardCount]*shard
}

func NewMemStore(products ProductSource) *MemStore {
	s := &MemStore{products: products}
	for i := range s.shards {
		s.shards[i] = &shard{carts: make(map[string][]Line)}
	}
	return s
}

func NewStore(products ProductSource) Store {
	return NewMemStore(products)
}

func (s *MemStore) shardFor(userID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return s.shards[h.Sum32()%shardCount]
}

// GetCart returns a snapshot of the user's cart, creating an empty record on
// first access.
func (s *MemStore) GetCart(userID string) Cart {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	lines, ok := sh.carts[userID]
	if !ok {
		sh.carts[userID] = []Line{}
	}
	return Cart{UserID: userID, Lines: copyLines(lines)}
}

// AddItem validates the product and its stock, then increments (or creates)
// the user's line for it. The catalog read completes before the shard lock is
// taken; the two stores never hold each other's locks at the same time.
//
// Stock is checked against the would-be total line quantity but never
// decremented here. Reservation belongs to a checkout stage this core does not
// have.
func (s *MemStore) AddItem(userID string, productID int64, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, ErrQuantityNotPositive
	}

	p, ok := s.products.Product(productID)
	if !ok {
		return Cart{}, ErrProductNotFound
	}

	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	lines := sh.carts[userID]

	idx := -1
	existing := 0
	for i, l := range lines {
		if l.ProductID == productID {
			idx = i
			existing = l.Quantity
			break
		}
	}

	if existing+quantity > p.Inventory {
		return Cart{}, ErrInsufficientStock
	}

	if idx >= 0 {
		lines[idx].Quantity += quantity
	} else {
		lines = append(lines, Line{ProductID: productID, Quantity: quantity})
	}
	sh.carts[userID] = lines

	return Cart{UserID: userID, Lines: copyLines(lines)}, nil
}

// RemoveItem deletes the whole line regardless of quantity.
func (s *MemStore) RemoveItem(userID string, productID int64) (Cart, error) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	lines, ok := sh.carts[userID]
	if !ok {
		return Cart{}, ErrItemNotInCart
	}

	idx := -1
	for i, l := range lines {
		if l.ProductID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Cart{}, ErrItemNotInCart
	}

	lines = append(lines[:idx], lines[idx+1:]...)
	sh.carts[userID] = lines

	return Cart{UserID: userID, Lines: copyLines(lines)}, nil
}

// ClearCart empties the line list but keeps the cart record. Idempotent.
func (s *MemStore) ClearCart(userID string) Cart {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	sh.carts[userID] = []Line{}
	return Cart{UserID: userID, Lines: []Line{}}
}

func copyLines(lines []Line) []Line {
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}
