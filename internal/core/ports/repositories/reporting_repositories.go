package repositories

import (
	"context"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
)

// CommerceReader exposes the raw records the reports aggregate. Ranges are
// half-open on the record's creation instant.
type CommerceReader interface {
	// ListSales includes the items of every sale.
	ListSales(ctx context.Context, r domain.DateRange) ([]domain.Sale, error)
	// GetSale returns the sale with its items, apperrors.ErrNotFound for unknown ids.
	GetSale(ctx context.Context, saleID int64) (*domain.Sale, error)
	ListPurchases(ctx context.Context, r domain.DateRange) ([]domain.Purchase, error)
	// FindPurchases returns purchase headers without items, newest first.
	FindPurchases(ctx context.Context, filter domain.PurchaseFilter) ([]domain.Purchase, error)
	// GetPurchase returns the purchase with its items.
	GetPurchase(ctx context.Context, purchaseID int64) (*domain.Purchase, error)
	ListCreditPayments(ctx context.Context, r domain.DateRange) ([]domain.CreditPayment, error)
	ListCreditsOpened(ctx context.Context, r domain.DateRange) ([]domain.CreditAccount, error)
	// ListOutstandingCredits returns accounts not yet fully paid.
	ListOutstandingCredits(ctx context.Context) ([]domain.CreditAccount, error)
	// ListCredits orders by opening time, newest first.
	ListCredits(ctx context.Context, filter domain.CreditFilter) ([]domain.CreditAccount, error)
	GetCreditAccount(ctx context.Context, creditID int64) (*domain.CreditAccount, error)
}

// ReportingRepository is what the reporting aggregator reads from.
type ReportingRepository interface {
	LedgerReader
	CommerceReader
	ListProducts(ctx context.Context) ([]domain.Product, error)
}
