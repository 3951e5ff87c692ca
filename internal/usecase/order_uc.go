package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ppetrovv/bisera/internal/domain"
)

type OrderUC struct {
	Orders   domain.OrderRepo
	Products domain.ProductRepo
	Carts    domain.CartRepo
	Mailer   domain.Mailer
}

type CheckoutItem struct {
	ProductCode string `json:"productCode"`
	Quantity    int    `json:"quantity"`
}

type CheckoutInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	City    string `json:"city"`
	Address string `json:"address"`

	Items []CheckoutItem `json:"items"`

	// Set by the handler for authenticated checkouts.
	CustomerID *uuid.UUID `json:"-"`
}

var errEmptyCart = domain.Validation("количката е празна")

// Checkout validates the input, snapshots the requested products at their
// current prices and creates a pending order. For authenticated customers the
// server-side cart is cleared afterwards.
func (uc *OrderUC) Checkout(ctx context.Context, in CheckoutInput) (*domain.Order, error) {
	for _, field := range []string{in.Name, in.Email, in.Phone, in.City} {
		if strings.TrimSpace(field) == "" {
			return nil, domain.Validation("липсват задължителни данни за поръчката")
		}
	}
	if len(in.Items) == 0 {
		return nil, errEmptyCart
	}

	items := make(domain.OrderItems, 0, len(in.Items))
	for _, ci := range in.Items {
		if ci.Quantity < 1 {
			ci.Quantity = 1
		}
		p, err := uc.Products.FindByCode(ctx, ci.ProductCode)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ErrNotFound
			}
			return nil, err
		}
		imgs := p.Images
		if imgs == nil {
			imgs = []string{}
		}
		items = append(items, domain.OrderItem{
			ProductCode: p.Code,
			Name:        p.Name,
			Images:      imgs,
			Price:       p.Price,
			Quantity:    ci.Quantity,
		})
	}

	o := &domain.Order{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:      strings.TrimSpace(in.Phone),
		City:       strings.TrimSpace(in.City),
		Address:    strings.TrimSpace(in.Address),
		CustomerID: in.CustomerID,
		Items:      items,
		Status:     domain.OrderStatusPending,
	}
	if err := uc.Orders.Create(ctx, o); err != nil {
		return nil, err
	}

	if in.CustomerID != nil {
		if err := uc.Carts.Clear(ctx, *in.CustomerID); err != nil {
			log.Error().Err(err).Str("order", o.ID.String()).Msg("checkout: cart clear failed")
		}
	}
	return o, nil
}

// Confirm moves a pending order to confirmed. Non-pending orders are left
// untouched and their current status is returned; that makes repeated or late
// calls idempotent no-ops rather than errors.
func (uc *OrderUC) Confirm(ctx context.Context, id uuid.UUID) (domain.OrderStatus, error) {
	return uc.transition(ctx, id, domain.OrderStatusConfirmed)
}

// Cancel is symmetric to Confirm.
func (uc *OrderUC) Cancel(ctx context.Context, id uuid.UUID) (domain.OrderStatus, error) {
	return uc.transition(ctx, id, domain.OrderStatusCancelled)
}

func (uc *OrderUC) transition(ctx context.Context, id uuid.UUID, to domain.OrderStatus) (domain.OrderStatus, error) {
	// The status guard lives in the UPDATE itself; losing a concurrent race
	// means zero rows changed, and the caller gets whatever actually landed.
	won, err := uc.Orders.UpdateStatusIfPending(ctx, id, to)
	if err != nil {
		return "", err
	}
	if !won {
		o, err := uc.Orders.FindByID(ctx, id)
		if err != nil {
			return "", err
		}
		return o.Status, nil
	}

	o, err := uc.Orders.FindByID(ctx, id)
	if err != nil {
		// The write landed; report the requested status even if the re-read
		// failed.
		log.Error().Err(err).Str("order", id.String()).Msg("order: re-read after transition failed")
		o = &domain.Order{ID: id, Status: to}
	}
	if uc.Mailer != nil {
		nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := uc.Mailer.SendOrderStatus(nctx, o); err != nil {
			log.Error().Err(err).Str("order", id.String()).Msg("order: status notification failed")
		}
	}
	return to, nil
}

// SetCompleted is the staff fulfillment toggle, independent of the
// pending/confirmed/cancelled decision.
func (uc *OrderUC) SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error {
	return uc.Orders.SetCompleted(ctx, id, completed)
}

func (uc *OrderUC) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return uc.Orders.FindByID(ctx, id)
}

func (uc *OrderUC) List(ctx context.Context) ([]domain.Order, error) {
	return uc.Orders.List(ctx)
}

func (uc *OrderUC) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Order, error) {
	return uc.Orders.ListByCustomer(ctx, customerID)
}
