package httpserver

import (
	"net/http"

	"github.com/ppetrovv/bisera/internal/cart"
	"github.com/ppetrovv/bisera/internal/domain"
)

// cartStore assembles the per-request cart façade: the signed cookie is always
// the local side, and authenticated requests get the server rows as mirror.
func (s *Server) cartStore(w http.ResponseWriter, r *http.Request) *cart.Store {
	local := newCookieCart(w, r, s.cookieSecret)
	var remote cart.Remote
	if id, ok := customerID(r); ok {
		remote = &remoteCart{customerID: id, carts: s.carts, products: s.products}
	}
	return cart.New(local, remote)
}

func cartView(lines []cart.Line) map[string]any {
	if lines == nil {
		lines = []cart.Line{}
	}
	subtotal := 0.0
	for _, l := range lines {
		subtotal += l.Price * float64(l.Quantity)
	}
	return map[string]any{"items": lines, "subtotal": subtotal}
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	st := s.cartStore(w, r)
	// On fetch failure Hydrate hands back the local view, which is still a
	// usable cart.
	lines, _ := st.Hydrate(r.Context())
	writeJSON(w, http.StatusOK, cartView(lines))
}

func (s *Server) handleAddToCart(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductCode string `json:"productCode"`
		Quantity    int    `json:"quantity"`
	}
	if err := decodeJSON(r, &in); err != nil || in.ProductCode == "" {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	p, err := s.products.FindByCode(r.Context(), in.ProductCode)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	imgs := p.Images
	if imgs == nil {
		imgs = []string{}
	}
	st := s.cartStore(w, r)
	defer st.Flush()
	lines := st.AddItem(cart.Line{
		ProductCode: p.Code,
		Name:        p.Name,
		Price:       p.Price,
		Images:      imgs,
		Quantity:    in.Quantity,
	})
	writeJSON(w, http.StatusOK, cartView(lines))
}

func (s *Server) handleUpdateCart(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProductCode string `json:"productCode"`
		Quantity    int    `json:"quantity"`
	}
	if err := decodeJSON(r, &in); err != nil || in.ProductCode == "" {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	st := s.cartStore(w, r)
	defer st.Flush()
	lines := st.UpdateItem(in.ProductCode, in.Quantity)
	writeJSON(w, http.StatusOK, cartView(lines))
}

func (s *Server) handleRemoveFromCart(w http.ResponseWriter, r *http.Request) {
	st := s.cartStore(w, r)
	defer st.Flush()
	lines := st.RemoveItem(r.PathValue("code"))
	writeJSON(w, http.StatusOK, cartView(lines))
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	st := s.cartStore(w, r)
	defer st.Flush()
	st.Clear()
	writeJSON(w, http.StatusOK, cartView(nil))
}

// handleCustomerCart lets staff inspect the server-side cart of a customer.
func (s *Server) handleCustomerCart(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "невалиден идентификатор")
		return
	}
	rows, err := s.carts.ListByCustomer(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if rows == nil {
		rows = []domain.CartItem{}
	}
	writeJSON(w, http.StatusOK, rows)
}
