package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a denormalized checkout snapshot. Customer fields are copied in even
// for guest orders; Items never change after creation. The displayed total is
// always recomputed from Items plus the shipping cost, never read from a column.
type Order struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"size:140" json:"name"`
	Email string    `gorm:"size:140" json:"email"`
	Phone string    `gorm:"size:60" json:"phone"`
	City  string    `gorm:"size:120" json:"city"`
	// Free text; also drives delivery-method classification.
	Address string `gorm:"size:255" json:"address"`

	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"-"`

	Items       OrderItems  `gorm:"type:jsonb;serializer:json" json:"items"`
	Status      OrderStatus `gorm:"type:varchar(20);index;default:pending" json:"status"`
	IsCompleted bool        `gorm:"not null;default:false" json:"isCompleted"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

type OrderItems []OrderItem

// OrderItem is one line of the immutable items snapshot.
type OrderItem struct {
	ProductCode string   `json:"productCode"`
	Name        string   `json:"name"`
	Images      []string `json:"images"`
	Price       float64  `json:"price"`
	Quantity    int      `json:"quantity"`
}

// UnmarshalJSON tolerates rows written by earlier schema versions: numeric
// fields may be missing or encoded as strings, images may be absent. Defaults
// are price 0, quantity 1, images empty.
func (it *OrderItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductCode string          `json:"productCode"`
		Code        string          `json:"code"`
		Name        string          `json:"name"`
		Images      []string        `json:"images"`
		Price       json.RawMessage `json:"price"`
		Quantity    json.RawMessage `json:"quantity"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	it.ProductCode = raw.ProductCode
	if it.ProductCode == "" {
		it.ProductCode = raw.Code
	}
	it.Name = raw.Name
	it.Images = raw.Images
	if it.Images == nil {
		it.Images = []string{}
	}
	it.Price = coerceFloat(raw.Price, 0)
	q := coerceFloat(raw.Quantity, 1)
	it.Quantity = int(q)
	if it.Quantity < 1 {
		it.Quantity = 1
	}
	return nil
}

func coerceFloat(raw json.RawMessage, def float64) float64 {
	if len(raw) == 0 {
		return def
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return def
}

// Subtotal is the item value of the snapshot without shipping.
func (items OrderItems) Subtotal() float64 {
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

// Total recomputes the authoritative order value: item subtotal plus the
// shipping cost derived from the stored address.
func (o *Order) Total() float64 {
	return o.Items.Subtotal() + ShippingCostFor(o.Address)
}

// DeliveryMethod classifies the stored address.
func (o *Order) DeliveryMethod() DeliveryMethod {
	m, _ := ClassifyDelivery(o.Address)
	return m
}
