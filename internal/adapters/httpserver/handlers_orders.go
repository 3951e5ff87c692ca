package httpserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ppetrovv/bisera/internal/domain"
	"github.com/ppetrovv/bisera/internal/usecase"
)

func parseID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(r.PathValue(name))
}

type orderView struct {
	ID             uuid.UUID             `json:"id"`
	Name           string                `json:"name"`
	Email          string                `json:"email"`
	Phone          string                `json:"phone"`
	City           string                `json:"city"`
	Address        string                `json:"address"`
	Status         domain.OrderStatus    `json:"status"`
	Items          domain.OrderItems     `json:"items"`
	Total          float64               `json:"total"`
	ShippingCost   float64               `json:"shippingCost"`
	DeliveryMethod domain.DeliveryMethod `json:"deliveryMethod"`
	IsCompleted    bool                  `json:"isCompleted"`
	CreatedAt      time.Time             `json:"createdAt"`
}

// viewOrder derives the wire shape: total, shipping cost and delivery method
// are recomputed from the stored snapshot on every read.
func viewOrder(o *domain.Order) orderView {
	items := o.Items
	if items == nil {
		items = domain.OrderItems{}
	}
	return orderView{
		ID:             o.ID,
		Name:           o.Name,
		Email:          o.Email,
		Phone:          o.Phone,
		City:           o.City,
		Address:        o.Address,
		Status:         o.Status,
		Items:          items,
		Total:          o.Total(),
		ShippingCost:   domain.ShippingCostFor(o.Address),
		DeliveryMethod: o.DeliveryMethod(),
		IsCompleted:    o.IsCompleted,
		CreatedAt:      o.CreatedAt,
	}
}

func viewOrders(orders []domain.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for i := range orders {
		out = append(out, viewOrder(&orders[i]))
	}
	return out
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var in usecase.CheckoutInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	st := s.cartStore(w, r)
	if len(in.Items) == 0 {
		// No explicit item list; fall back to the session cart.
		for _, l := range st.Items() {
			in.Items = append(in.Items, usecase.CheckoutItem{ProductCode: l.ProductCode, Quantity: l.Quantity})
		}
	}
	if id, ok := customerID(r); ok {
		in.CustomerID = &id
	}
	o, err := s.orders.Checkout(r.Context(), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	// The checkout consumed the cart; empty both sides of it.
	st.Clear()
	st.Flush()
	writeJSON(w, http.StatusCreated, viewOrder(o))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "невалиден идентификатор")
		return
	}
	o, err := s.orders.Get(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOrder(o))
}

type transitionRequest struct {
	OrderID uuid.UUID `json:"orderId"`
}

// handleCancelOrder is the public cancellation endpoint. Repeated calls and
// calls racing a staff decision answer with whatever status actually holds.
func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	var in transitionRequest
	if err := decodeJSON(r, &in); err != nil || in.OrderID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "невалидна заявка")
		return
	}
	status, err := s.orders.Cancel(r.Context(), in.OrderID)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	id, _ := customerID(r)
	orders, err := s.orders.ListByCustomer(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOrders(orders))
}
