package catalog_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"Shopcore/internal/catalog"
)

func mustDec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func newTS(t *testing.T) (*httptest.Server, catalog.Store) {
	t.Helper()

	store := catalog.NewMemStore()
	s := &catalog.Server{
		Store:    store,
		Log:      zap.NewNop(),
		Validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Mount("/products", s.Routes())

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, store
}

func doJSON(t *testing.T, method, url string, body any, out any, wantStatus int) {
	t.Helper()

	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, wantStatus, resp.StatusCode)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
}

func TestProductsCRUD(t *testing.T) {
	ts, _ := newTS(t)

	var created map[string]any
	doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{
		"name":            "Widget",
		"description":     "a widget",
		"price":           "19.99",
		"inventory_count": 10,
	}, &created, http.StatusCreated)
	require.EqualValues(t, 1, created["id"])

	var got map[string]any
	doJSON(t, http.MethodGet, ts.URL+"/products/1", nil, &got, http.StatusOK)
	require.Equal(t, "Widget", got["name"])

	var updated map[string]any
	doJSON(t, http.MethodPut, ts.URL+"/products/1/inventory", map[string]any{
		"inventory_count": 4,
	}, &updated, http.StatusOK)
	require.EqualValues(t, 4, updated["inventory_count"])

	doJSON(t, http.MethodDelete, ts.URL+"/products/1", nil, nil, http.StatusNoContent)
	doJSON(t, http.MethodGet, ts.URL+"/products/1", nil, nil, http.StatusNotFound)
	doJSON(t, http.MethodDelete, ts.URL+"/products/1", nil, nil, http.StatusNotFound)
}

func TestCreateProduct_Rejections(t *testing.T) {
	ts, _ := newTS(t)

	// validator catches the missing name
	doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{
		"price":           "1",
		"inventory_count": 1,
	}, nil, http.StatusBadRequest)

	// the store catches the negative price
	doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{
		"name":            "Widget",
		"price":           "-1",
		"inventory_count": 1,
	}, nil, http.StatusBadRequest)

	doJSON(t, http.MethodPost, ts.URL+"/products", map[string]any{
		"name":  "Widget",
		"price": "1",
		"junk":  true,
	}, nil, http.StatusBadRequest)

	var all []map[string]any
	doJSON(t, http.MethodGet, ts.URL+"/products", nil, &all, http.StatusOK)
	require.Empty(t, all)
}

func TestUpdateInventory_Rejections(t *testing.T) {
	ts, store := newTS(t)

	p, err := store.Create("Widget", "", mustDec("19.99"), 10)
	require.NoError(t, err)

	doJSON(t, http.MethodPut, ts.URL+"/products/1/inventory", map[string]any{
		"inventory_count": -5,
	}, nil, http.StatusBadRequest)

	doJSON(t, http.MethodPut, ts.URL+"/products/999/inventory", map[string]any{
		"inventory_count": 5,
	}, nil, http.StatusNotFound)

	got, _ := store.Get(p.ID)
	require.Equal(t, 10, got.Inventory)
}

func TestListProducts_Filter(t *testing.T) {
	ts, store := newTS(t)

	_, err := store.Create("Red Mug", "", mustDec("5"), 2)
	require.NoError(t, err)
	_, err = store.Create("Blue Mug", "", mustDec("15"), 0)
	require.NoError(t, err)

	var got []map[string]any
	doJSON(t, http.MethodGet, ts.URL+"/products?name=mug&in_stock=true", nil, &got, http.StatusOK)
	require.Len(t, got, 1)
	require.Equal(t, "Red Mug", got[0]["name"])

	doJSON(t, http.MethodGet, ts.URL+"/products?min_price=5&max_price=15", nil, &got, http.StatusOK)
	require.Len(t, got, 2)

	doJSON(t, http.MethodGet, ts.URL+"/products?min_price=notanumber", nil, nil, http.StatusBadRequest)
	doJSON(t, http.MethodGet, ts.URL+"/products?in_stock=maybe", nil, nil, http.StatusBadRequest)
}
