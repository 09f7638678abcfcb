package cart

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"Shopcore/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Store    Store
	Products ProductSource
	Log      *zap.Logger
	Validate *validator.Validate
}

// Routes returns the cart surface, mounted by the caller at /cart behind AuthJWT.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.get)
	r.Post("/items", s.addItem)
	r.Delete("/items/{productID}", s.removeItem)
	r.Delete("/", s.clear)

	return r
}

type addItemReq struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type lineView struct {
	ProductID   int64            `json:"product_id"`
	Name        string           `json:"name,omitempty"`
	Quantity    int              `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	Subtotal    *decimal.Decimal `json:"subtotal,omitempty"`
	Unavailable bool             `json:"unavailable,omitempty"`
}

type cartView struct {
	UserID string          `json:"user_id"`
	Lines  []lineView      `json:"lines"`
	Total  decimal.Decimal `json:"total"`
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, s.render(s.Store.GetCart(u.ID)))
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	var req addItemReq
	if err := s.decode(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad request", map[string]any{"cause": err.Error()})
		return
	}

	c, err := s.Store.AddItem(u.ID, req.ProductID, req.Quantity)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, s.render(c))
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad product id", nil)
		return
	}

	c, err := s.Store.RemoveItem(u.ID, productID)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, s.render(c))
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no user", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, s.render(s.Store.ClearCart(u.ID)))
}

// render prices each line from the current catalog snapshot. A line whose
// product has since been deleted stays in the cart but is marked unavailable.
func (s *Server) render(c Cart) cartView {
	v := cartView{
		UserID: c.UserID,
		Lines:  make([]lineView, 0, len(c.Lines)),
		Total:  decimal.Zero,
	}

	for _, l := range c.Lines {
		lv := lineView{ProductID: l.ProductID, Quantity: l.Quantity}

		p, ok := s.Products.Product(l.ProductID)
		if !ok {
			lv.Unavailable = true
			v.Lines = append(v.Lines, lv)
			continue
		}

		sub := p.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
		lv.Name = p.Name
		lv.UnitPrice = &p.Price
		lv.Subtotal = &sub
		v.Total = v.Total.Add(sub)

		v.Lines = append(v.Lines, lv)
	}

	return v
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("extra data after json object")
	}

	if s.Validate == nil {
		return nil
	}
	return s.Validate.Struct(dst)
}

func (s *Server) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrQuantityNotPositive):
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, ErrProductNotFound):
		kit.WriteError(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrItemNotInCart):
		kit.WriteError(w, r, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, ErrInsufficientStock):
		kit.WriteError(w, r, http.StatusConflict, err.Error(), nil)
	default:
		if s.Log != nil {
			s.Log.Error("cart store failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
