package catalog

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// MemStore keeps products in a mutex-guarded map. The id counter lives behind
// the same lock as the map, so allocating an id and inserting the record is a
// single atomic step: concurrent Creates can neither collide nor lose a record.
type MemStore struct {
	mu     sync.RWMutex
	nextID int64
	m      map[int64]Product
}

func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, m: make(map[int64]Product)}
}

func NewStore() Store {
	return NewMemStore()
}

func (s *MemStore) Create(name, description string, price decimal.Decimal, inventory int) (Product, error) {
	if err := validate(name, price, inventory); err != nil {
		return Product{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := Product{
		ID:          s.nextID,
		Name:        name,
		Description: description,
		Price:       price,
		Inventory:   inventory,
	}
	s.nextID++
	s.m[p.ID] = p

	return p, nil
}

func (s *MemStore) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *MemStore) Get(id int64) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok
}

// UpdateInventory replaces the stored count wholesale. Readers either see the
// old record or the new one, never a half-written mix.
func (s *MemStore) UpdateInventory(id int64, count int) (Product, bool, error) {
	if count < 0 {
		return Product{}, false, ErrNegativeInventory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, false, nil
	}

	p.Inventory = count
	s.m[id] = p
	return p, true, nil
}

func (s *MemStore) FilterProducts(f Filter) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		if f.Matches(p) {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Delete is a hard removal. Carts referencing the product are left alone;
// dangling lines are the documented behavior, not cleaned up here.
func (s *MemStore) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.m[id]
	if ok {
		delete(s.m, id)
	}
	return ok
}
