package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ppetrovv/bisera/internal/domain"
)

type CartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("updated_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert sets the quantity for the (customer, product) pair, creating the row
// when absent. The unique index keeps a product on a single row per cart.
func (r *CartRepo) Upsert(ctx context.Context, customerID uuid.UUID, productCode string, quantity int) error {
	if quantity <= 0 {
		return r.Remove(ctx, customerID, productCode)
	}
	item := domain.CartItem{CustomerID: customerID, ProductCode: productCode, Quantity: quantity}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "product_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&item).Error
}

// AddQuantity increments in place so concurrent adds do not lose updates.
func (r *CartRepo) AddQuantity(ctx context.Context, customerID uuid.UUID, productCode string, delta int) error {
	item := domain.CartItem{CustomerID: customerID, ProductCode: productCode, Quantity: delta}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "product_code"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"quantity": gorm.Expr("cart_items.quantity + ?", delta)}),
	}).Create(&item).Error
}

// Remove is a plain conditional delete; deleting an absent row is a no-op.
func (r *CartRepo) Remove(ctx context.Context, customerID uuid.UUID, productCode string) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND product_code = ?", customerID, productCode).
		Delete(&domain.CartItem{}).Error
}

func (r *CartRepo) Clear(ctx context.Context, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("customer_id = ?", customerID).Delete(&domain.CartItem{}).Error
}
