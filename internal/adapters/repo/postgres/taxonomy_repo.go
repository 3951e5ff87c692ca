package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppetrovv/bisera/internal/domain"
)

type TaxonomyRepo struct{ db *gorm.DB }

func NewTaxonomyRepo(db *gorm.DB) *TaxonomyRepo { return &TaxonomyRepo{db: db} }

func (r *TaxonomyRepo) SaveCategory(ctx context.Context, c *domain.Category) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *TaxonomyRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var list []domain.Category
	if err := r.db.WithContext(ctx).Preload("Subcategories").Order("name asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *TaxonomyRepo) FindCategoryByName(ctx context.Context, name string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// DeleteCategory removes the category and its subcategories, running the same
// product-link repair as a single subcategory delete for each of them.
func (r *TaxonomyRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	var subs []domain.Subcategory
	if err := r.db.WithContext(ctx).Where("category_id = ?", id).Find(&subs).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range subs {
			if err := deleteSubcategoryTx(tx, s.ID); err != nil {
				return err
			}
		}
		res := tx.Delete(&domain.Category{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *TaxonomyRepo) SaveSubcategory(ctx context.Context, s *domain.Subcategory) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *TaxonomyRepo) FindSubcategoryByID(ctx context.Context, id uuid.UUID) (*domain.Subcategory, error) {
	var s domain.Subcategory
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *TaxonomyRepo) FindSubcategoryByName(ctx context.Context, name string) (*domain.Subcategory, error) {
	var s domain.Subcategory
	if err := r.db.WithContext(ctx).First(&s, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *TaxonomyRepo) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteSubcategoryTx(tx, id)
	})
}

// deleteSubcategoryTx repairs product links before removing the subcategory:
// any product whose only link points at the deleted subcategory gets relinked
// to the "Други" bucket, so no product ever ends up with zero links.
func deleteSubcategoryTx(tx *gorm.DB, id uuid.UUID) error {
	var fallback domain.Subcategory
	if err := tx.First(&fallback, "name = ?", domain.FallbackSubcategoryName).Error; err != nil {
		return err
	}
	if fallback.ID == id {
		return errors.New("fallback subcategory cannot be deleted")
	}

	// Every link row of every product touching the doomed subcategory; the
	// orphan decision itself lives in the domain.
	var links []domain.ProductSubcategory
	err := tx.
		Where("product_id IN (?)", tx.Model(&domain.ProductSubcategory{}).
			Select("product_id").Where("subcategory_id = ?", id)).
		Find(&links).Error
	if err != nil {
		return err
	}
	for _, pid := range domain.OrphanedBySubcategoryDelete(links, id) {
		link := domain.ProductSubcategory{ProductID: pid, SubcategoryID: fallback.ID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
	}

	if err := tx.Where("subcategory_id = ?", id).Delete(&domain.ProductSubcategory{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&domain.Subcategory{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
