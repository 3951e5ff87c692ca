package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ppetrovv/bisera/internal/domain"
)

type CatalogUC struct {
	Products domain.ProductRepo
	Taxonomy domain.TaxonomyRepo
	Uploader domain.ImageUploader
}

type ProductInput struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	// Base64 payloads or already-hosted URLs, in display order.
	Images         []string    `json:"images"`
	SubcategoryIDs []uuid.UUID `json:"subcategoryIds"`
}

// CreateProduct pre-checks the SKU for duplicates, pushes raw image payloads
// through the image host and saves the product with its subcategory links.
func (uc *CatalogUC) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.Validation("липсва код или име на продукта")
	}
	if in.Price <= 0 {
		return nil, domain.Validation("невалидна цена")
	}
	if len(in.SubcategoryIDs) == 0 {
		return nil, domain.Validation("продуктът трябва да има поне една подкатегория")
	}
	if _, err := uc.Products.FindByCode(ctx, code); err == nil {
		return nil, domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	urls, err := uc.hostImages(ctx, in.Images, "products/"+code)
	if err != nil {
		return nil, err
	}
	p := &domain.Product{
		ID:          uuid.New(),
		Code:        code,
		Name:        strings.TrimSpace(in.Name),
		Price:       in.Price,
		Description: in.Description,
		Images:      urls,
	}
	if err := uc.Products.Save(ctx, p); err != nil {
		return nil, err
	}
	if err := uc.Products.ReplaceSubcategories(ctx, p.ID, in.SubcategoryIDs); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *CatalogUC) UpdateProduct(ctx context.Context, code string, in ProductInput) (*domain.Product, error) {
	p, err := uc.Products.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) != "" {
		p.Name = strings.TrimSpace(in.Name)
	}
	if in.Price > 0 {
		p.Price = in.Price
	}
	if in.Description != "" {
		p.Description = in.Description
	}
	if in.Images != nil {
		urls, err := uc.hostImages(ctx, in.Images, "products/"+p.Code)
		if err != nil {
			return nil, err
		}
		p.Images = urls
	}
	if err := uc.Products.Save(ctx, p); err != nil {
		return nil, err
	}
	if len(in.SubcategoryIDs) > 0 {
		if err := uc.Products.ReplaceSubcategories(ctx, p.ID, in.SubcategoryIDs); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (uc *CatalogUC) DeleteProduct(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return domain.Validation("липсва код на продукта")
	}
	return uc.Products.DeleteByCode(ctx, code)
}

func (uc *CatalogUC) GetProduct(ctx context.Context, code string) (*domain.Product, error) {
	return uc.Products.FindByCode(ctx, code)
}

func (uc *CatalogUC) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Products.List(ctx, f)
}

// hostImages uploads everything that is not already a URL. Upload failures
// abort the operation; a product without its pictures is worse than a clean
// validation error for the admin.
func (uc *CatalogUC) hostImages(ctx context.Context, payloads []string, folder string) ([]string, error) {
	urls := make([]string, 0, len(payloads))
	for _, raw := range payloads {
		if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
			urls = append(urls, raw)
			continue
		}
		if uc.Uploader == nil {
			return nil, errors.New("image uploads are not configured")
		}
		u, err := uc.Uploader.Upload(ctx, raw, folder)
		if err != nil {
			log.Error().Err(err).Str("folder", folder).Msg("catalog: image upload failed")
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}

func (uc *CatalogUC) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validation("липсва име на категорията")
	}
	if _, err := uc.Taxonomy.FindCategoryByName(ctx, name); err == nil {
		return nil, domain.ErrConflict
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	c := &domain.Category{ID: uuid.New(), Name: name}
	if err := uc.Taxonomy.SaveCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (uc *CatalogUC) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return uc.Taxonomy.ListCategories(ctx)
}

func (uc *CatalogUC) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return uc.Taxonomy.DeleteCategory(ctx, id)
}

func (uc *CatalogUC) CreateSubcategory(ctx context.Context, categoryID uuid.UUID, name string) (*domain.Subcategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validation("липсва име на подкатегорията")
	}
	s := &domain.Subcategory{ID: uuid.New(), Name: name, CategoryID: categoryID}
	if err := uc.Taxonomy.SaveSubcategory(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// DeleteSubcategory delegates to the repo, which reassigns orphaned products
// to the fallback bucket in the same transaction as the delete.
func (uc *CatalogUC) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	s, err := uc.Taxonomy.FindSubcategoryByID(ctx, id)
	if err != nil {
		return err
	}
	if s.Name == domain.FallbackSubcategoryName {
		return domain.Validation("служебната подкатегория не може да бъде изтрита")
	}
	return uc.Taxonomy.DeleteSubcategory(ctx, id)
}
