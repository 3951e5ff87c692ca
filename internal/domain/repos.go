package domain

import (
	"context"

	"github.com/google/uuid"
)

type ProductRepo interface {
	Save(ctx context.Context, p *Product) error
	FindByCode(ctx context.Context, code string) (*Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	DeleteByCode(ctx context.Context, code string) error
	ReplaceSubcategories(ctx context.Context, productID uuid.UUID, subcategoryIDs []uuid.UUID) error
}

type TaxonomyRepo interface {
	SaveCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]Category, error)
	FindCategoryByName(ctx context.Context, name string) (*Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	SaveSubcategory(ctx context.Context, s *Subcategory) error
	FindSubcategoryByID(ctx context.Context, id uuid.UUID) (*Subcategory, error)
	FindSubcategoryByName(ctx context.Context, name string) (*Subcategory, error)
	// DeleteSubcategory removes the subcategory after reassigning every product
	// whose only link was this subcategory to the fallback bucket. The whole
	// repair runs in one transaction.
	DeleteSubcategory(ctx context.Context, id uuid.UUID) error
}

type CustomerRepo interface {
	Save(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindByGoogleID(ctx context.Context, googleID string) (*Customer, error)
	FindByVerificationToken(ctx context.Context, token string) (*Customer, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CartRepo interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]CartItem, error)
	Upsert(ctx context.Context, customerID uuid.UUID, productCode string, quantity int) error
	AddQuantity(ctx context.Context, customerID uuid.UUID, productCode string, delta int) error
	Remove(ctx context.Context, customerID uuid.UUID, productCode string) error
	Clear(ctx context.Context, customerID uuid.UUID) error
}

type OrderRepo interface {
	Create(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Order, error)
	// UpdateStatusIfPending performs the status-guarded conditional write. It
	// reports whether the update landed; false means another transition already
	// decided the order.
	UpdateStatusIfPending(ctx context.Context, id uuid.UUID, to OrderStatus) (bool, error)
	SetCompleted(ctx context.Context, id uuid.UUID, completed bool) error
}

type FavoriteRepo interface {
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Favorite, error)
	Add(ctx context.Context, customerID, productID uuid.UUID) error
	Remove(ctx context.Context, customerID, productID uuid.UUID) error
}

type MessageRepo interface {
	Save(ctx context.Context, m *Message) error
	List(ctx context.Context) ([]Message, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
