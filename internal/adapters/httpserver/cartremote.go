package httpserver

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/ppetrovv/bisera/internal/cart"
	"github.com/ppetrovv/bisera/internal/domain"
)

// remoteCart adapts the persistent cart rows of one customer to the cart
// mirror interface. Fetch joins each row with the live product so hydrated
// lines carry current names, prices and images.
type remoteCart struct {
	customerID uuid.UUID
	carts      domain.CartRepo
	products   domain.ProductRepo
}

func (rc *remoteCart) Fetch(ctx context.Context) ([]cart.Line, error) {
	rows, err := rc.carts.ListByCustomer(ctx, rc.customerID)
	if err != nil {
		return nil, err
	}
	lines := make([]cart.Line, 0, len(rows))
	for _, row := range rows {
		p, err := rc.products.FindByCode(ctx, row.ProductCode)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Product removed since it was carted; skip the stale row.
				continue
			}
			return nil, err
		}
		imgs := p.Images
		if imgs == nil {
			imgs = []string{}
		}
		lines = append(lines, cart.Line{
			ProductCode: p.Code,
			Name:        p.Name,
			Price:       p.Price,
			Images:      imgs,
			Quantity:    row.Quantity,
			AddedAt:     row.UpdatedAt,
		})
	}
	return lines, nil
}

func (rc *remoteCart) Add(ctx context.Context, productCode string, delta int) error {
	return rc.carts.AddQuantity(ctx, rc.customerID, productCode, delta)
}

func (rc *remoteCart) Upsert(ctx context.Context, productCode string, quantity int) error {
	return rc.carts.Upsert(ctx, rc.customerID, productCode, quantity)
}

func (rc *remoteCart) Remove(ctx context.Context, productCode string) error {
	return rc.carts.Remove(ctx, rc.customerID, productCode)
}

func (rc *remoteCart) Clear(ctx context.Context) error {
	return rc.carts.Clear(ctx, rc.customerID)
}
