package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ppetrovv/bisera/internal/domain"
)

type FavoriteRepo struct{ db *gorm.DB }

func NewFavoriteRepo(db *gorm.DB) *FavoriteRepo { return &FavoriteRepo{db: db} }

func (r *FavoriteRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Favorite, error) {
	var list []domain.Favorite
	if err := r.db.WithContext(ctx).Preload("Product").Where("customer_id = ?", customerID).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Add tolerates repeats; the unique pair index plus DO NOTHING makes it
// idempotent.
func (r *FavoriteRepo) Add(ctx context.Context, customerID, productID uuid.UUID) error {
	f := domain.Favorite{CustomerID: customerID, ProductID: productID}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(&f).Error
}

func (r *FavoriteRepo) Remove(ctx context.Context, customerID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Delete(&domain.Favorite{}).Error
}
