package repositories

import (
	"context"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
)

// CommerceTx writes sales, purchases and credit records alongside their movements.
type CommerceTx interface {
	// GetProductsForUpdate locks the products; apperrors.ErrNotFound if any id is unknown.
	GetProductsForUpdate(ctx context.Context, productIDs []int64) (map[int64]domain.Product, error)
	AdjustStock(ctx context.Context, productID int64, delta int) error
	// InsertSale stores the sale and its items.
	InsertSale(ctx context.Context, sale domain.Sale) (int64, error)
	// InsertPurchase stores the purchase and its items.
	InsertPurchase(ctx context.Context, purchase domain.Purchase) (int64, error)
	InsertCreditAccount(ctx context.Context, account domain.CreditAccount) (int64, error)
	LockCreditAccount(ctx context.Context, creditID int64) (*domain.CreditAccount, error)
	UpdateCreditAccount(ctx context.Context, account domain.CreditAccount) error
	InsertCreditPayment(ctx context.Context, payment domain.CreditPayment) (int64, error)
}

// CatalogRepository keeps the product rows referenced by sales and purchases.
type CatalogRepository interface {
	CreateProduct(ctx context.Context, product domain.Product) (int64, error)
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
	// UpdateProduct rewrites every field but the id. Returns apperrors.ErrNotFound
	// for unknown ids and apperrors.ErrDuplicate when the name is taken.
	UpdateProduct(ctx context.Context, product domain.Product) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// CommerceStore is the persistence port of the commerce workflows.
type CommerceStore interface {
	CatalogRepository
	CommerceReader
	TransactionManager
}
