package cart

import (
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// stubSource is an in-test catalog: a plain map handed out by value, the same
// contract the real adapter provides.
type stubSource struct {
	mu sync.RWMutex
	m  map[int64]ProductInfo
}

func newStubSource(products ...ProductInfo) *stubSource {
	s := &stubSource{m: make(map[int64]ProductInfo)}
	for _, p := range products {
		s.m[p.ID] = p
	}
	return s
}

func (s *stubSource) Product(id int64) (ProductInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	return p, ok
}

func (s *stubSource) remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
}

func widget(stock int) ProductInfo {
	return ProductInfo{ID: 1, Name: "Widget", Price: decimal.RequireFromString("19.99"), Inventory: stock}
}

func TestGetCart_CreatesEmptyOnFirstAccess(t *testing.T) {
	s := NewMemStore(newStubSource())

	c := s.GetCart("userA")
	require.Equal(t, "userA", c.UserID)
	require.Empty(t, c.Lines)
}

func TestAddItem_BasicFlow(t *testing.T) {
	s := NewMemStore(newStubSource(widget(10)))

	c, err := s.AddItem("userA", 1, 3)
	require.NoError(t, err)
	require.Equal(t, []Line{{ProductID: 1, Quantity: 3}}, c.Lines)

	c, err = s.AddItem("userA", 1, 3)
	require.NoError(t, err)
	require.Equal(t, []Line{{ProductID: 1, Quantity: 6}}, c.Lines)

	c, err = s.RemoveItem("userA", 1)
	require.NoError(t, err)
	require.Empty(t, c.Lines)
}

func TestAddItem_ProductNotFound(t *testing.T) {
	s := NewMemStore(newStubSource())

	_, err := s.AddItem("userB", 999, 1)
	require.ErrorIs(t, err, ErrProductNotFound)
	require.Empty(t, s.GetCart("userB").Lines, "a failed add must leave the cart untouched")
}

func TestAddItem_QuantityMustBePositive(t *testing.T) {
	s := NewMemStore(newStubSource(widget(10)))

	_, err := s.AddItem("userA", 1, 0)
	require.ErrorIs(t, err, ErrQuantityNotPositive)

	_, err = s.AddItem("userA", 1, -2)
	require.ErrorIs(t, err, ErrQuantityNotPositive)

	require.Empty(t, s.GetCart("userA").Lines)
}

func TestAddItem_StockGating(t *testing.T) {
	s := NewMemStore(newStubSource(widget(5)))

	_, err := s.AddItem("userA", 1, 6)
	require.ErrorIs(t, err, ErrInsufficientStock)
	require.Empty(t, s.GetCart("userA").Lines, "no partial line on rejection")

	_, err = s.AddItem("userA", 1, 5)
	require.NoError(t, err)
}

func TestAddItem_StockGatingCountsExistingLine(t *testing.T) {
	s := NewMemStore(newStubSource(widget(5)))

	_, err := s.AddItem("userA", 1, 3)
	require.NoError(t, err)

	_, err = s.AddItem("userA", 1, 3)
	require.ErrorIs(t, err, ErrInsufficientStock)

	require.Equal(t, []Line{{ProductID: 1, Quantity: 3}}, s.GetCart("userA").Lines,
		"the existing line survives a rejected top-up unchanged")
}

func TestAddItem_DoesNotReserveStock(t *testing.T) {
	// Two users may both cart the full stock; validate-but-don't-reserve is
	// the intended behavior, deferred to a checkout stage this core lacks.
	s := NewMemStore(newStubSource(widget(5)))

	_, err := s.AddItem("userA", 1, 5)
	require.NoError(t, err)
	_, err = s.AddItem("userB", 1, 5)
	require.NoError(t, err)
}

func TestAddItem_PreservesInsertionOrder(t *testing.T) {
	src := newStubSource(
		ProductInfo{ID: 1, Name: "A", Price: decimal.New(1, 0), Inventory: 10},
		ProductInfo{ID: 2, Name: "B", Price: decimal.New(2, 0), Inventory: 10},
		ProductInfo{ID: 3, Name: "C", Price: decimal.New(3, 0), Inventory: 10},
	)
	s := NewMemStore(src)

	for _, id := range []int64{2, 3, 1} {
		_, err := s.AddItem("userA", id, 1)
		require.NoError(t, err)
	}

	// topping up an existing line must not move it
	_, err := s.AddItem("userA", 3, 1)
	require.NoError(t, err)

	c := s.GetCart("userA")
	require.Equal(t, []Line{
		{ProductID: 2, Quantity: 1},
		{ProductID: 3, Quantity: 2},
		{ProductID: 1, Quantity: 1},
	}, c.Lines)
}

func TestRemoveItem_NotInCart(t *testing.T) {
	s := NewMemStore(newStubSource(widget(10)))

	_, err := s.RemoveItem("userA", 1)
	require.ErrorIs(t, err, ErrItemNotInCart)

	_, err = s.AddItem("userA", 1, 1)
	require.NoError(t, err)

	_, err = s.RemoveItem("userA", 2)
	require.ErrorIs(t, err, ErrItemNotInCart)
	require.Len(t, s.GetCart("userA").Lines, 1)
}

func TestClearCart_Idempotent(t *testing.T) {
	s := NewMemStore(newStubSource(widget(10)))

	_, err := s.AddItem("userA", 1, 2)
	require.NoError(t, err)

	c := s.ClearCart("userA")
	require.Empty(t, c.Lines)

	c = s.ClearCart("userA")
	require.Empty(t, c.Lines)

	c = s.ClearCart("nobody")
	require.Empty(t, c.Lines)
}

func TestDeletedProductLeavesDanglingLine(t *testing.T) {
	src := newStubSource(widget(10))
	s := NewMemStore(src)

	_, err := s.AddItem("userA", 1, 2)
	require.NoError(t, err)

	src.remove(1)

	// The line stays; the catalog does not cascade into carts.
	require.Equal(t, []Line{{ProductID: 1, Quantity: 2}}, s.GetCart("userA").Lines)

	// It can still be removed explicitly.
	c, err := s.RemoveItem("userA", 1)
	require.NoError(t, err)
	require.Empty(t, c.Lines)
}

func TestAddItem_ConcurrentSameUser(t *testing.T) {
	const n = 100

	s := NewMemStore(newStubSource(widget(n)))

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.AddItem("userA", 1, 1); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, []Line{{ProductID: 1, Quantity: n}}, s.GetCart("userA").Lines)
}

func TestAddItem_ConcurrentDistinctUsers(t *testing.T) {
	const users = 64

	s := NewMemStore(newStubSource(widget(1000)))

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user-%d", i)
			if _, err := s.AddItem(user, 1, 1); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < users; i++ {
		user := fmt.Sprintf("user-%d", i)
		require.Equal(t, []Line{{ProductID: 1, Quantity: 1}}, s.GetCart(user).Lines)
	}
}

func TestGetCart_ReturnsCopies(t *testing.T) {
	s := NewMemStore(newStubSource(widget(10)))

	_, err := s.AddItem("userA", 1, 2)
	require.NoError(t, err)

	c := s.GetCart("userA")
	c.Lines[0].Quantity = 999

	require.Equal(t, 2, s.GetCart("userA").Lines[0].Quantity,
		"callers mutate snapshots, never the store")
}
