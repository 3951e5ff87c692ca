package domain

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string    `gorm:"size:60;uniqueIndex" json:"code"`
	Name        string    `gorm:"size:180" json:"name"`
	Price       float64   `gorm:"type:decimal(12,2)" json:"price"`
	Description string    `gorm:"type:text" json:"description"`
	// Image URLs in display order.
	Images        []string      `gorm:"type:jsonb;serializer:json" json:"images"`
	Subcategories []Subcategory `gorm:"many2many:product_subcategories;" json:"subcategories,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"-"`
}

// ProductSubcategory is the join row between products and subcategories. It is
// managed explicitly so that subcategory deletion can repair product links.
type ProductSubcategory struct {
	ProductID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	SubcategoryID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

type ProductFilter struct {
	SubcategoryID uuid.UUID
	Query         string
	Sort          string
	Page          int
	PageSize      int
}
