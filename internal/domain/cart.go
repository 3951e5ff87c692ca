package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem is the server-side cart row for an authenticated customer. Guest
// carts live only in the signed client cookie. A product code appears at most
// once per customer; adds increment the quantity instead of inserting twice.
type CartItem struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	CustomerID  uuid.UUID `gorm:"type:uuid;index:idx_cart_customer_product,unique" json:"-"`
	ProductCode string    `gorm:"size:60;index:idx_cart_customer_product,unique" json:"productCode"`
	Quantity    int       `gorm:"not null;default:1" json:"quantity"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
