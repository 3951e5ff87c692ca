package domain

import (
	"time"

	"github.com/google/uuid"
)

// Favorite is a plain membership pair, unique per customer and product.
type Favorite struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	CustomerID uuid.UUID `gorm:"type:uuid;index:idx_fav_customer_product,unique" json:"-"`
	ProductID  uuid.UUID `gorm:"type:uuid;index:idx_fav_customer_product,unique" json:"productId"`
	Product    *Product  `json:"product,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
