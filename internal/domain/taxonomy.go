package domain

import (
	"time"

	"github.com/google/uuid"
)

// FallbackSubcategoryName is the distinguished "Other" bucket. Products whose
// last subcategory link is removed are reassigned here instead of being left
// without a link.
const FallbackSubcategoryName = "Други"

type Category struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string        `gorm:"size:120;uniqueIndex" json:"name"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

type Subcategory struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"size:120;index" json:"name"`
	CategoryID uuid.UUID `gorm:"type:uuid;index" json:"categoryId"`
	Products   []Product `gorm:"many2many:product_subcategories;" json:"products,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OrphanedBySubcategoryDelete returns the products that would be left with
// zero subcategory links once the given subcategory is removed. links must
// contain every link row of every product currently linked to that
// subcategory; products that keep at least one other link are not orphans.
func OrphanedBySubcategoryDelete(links []ProductSubcategory, subcategoryID uuid.UUID) []uuid.UUID {
	hasOther := map[uuid.UUID]bool{}
	var doomed []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, l := range links {
		if l.SubcategoryID == subcategoryID {
			if !seen[l.ProductID] {
				seen[l.ProductID] = true
				doomed = append(doomed, l.ProductID)
			}
		} else {
			hasOther[l.ProductID] = true
		}
	}
	var orphans []uuid.UUID
	for _, pid := range doomed {
		if !hasOther[pid] {
			orphans = append(orphans, pid)
		}
	}
	return orphans
}
