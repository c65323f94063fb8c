package services

import (
	"context"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/SscSPs/licoreria_pos/internal/dto"
)

// CatalogSvc manages the products sold and restocked at the till.
type CatalogSvc interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*domain.Product, error)
	GetProduct(ctx context.Context, productID int64) (*domain.Product, error)
	UpdateProduct(ctx context.Context, productID int64, req dto.UpdateProductRequest) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

// CommerceWriterSvc registers the events that move money through the till.
// Each call writes its record and derived movements in one transaction.
type CommerceWriterSvc interface {
	RegisterSale(ctx context.Context, req dto.RegisterSaleRequest, operator string) (*domain.SaleReceipt, error)
	RegisterPurchase(ctx context.Context, req dto.RegisterPurchaseRequest, operator string) (*domain.PurchaseReceipt, error)
	RegisterCreditPayment(ctx context.Context, creditID int64, req dto.CreditPaymentRequest, operator string) (*domain.PaymentReceipt, error)
}

// CommerceReaderSvc looks up the recorded sales, purchases and credits. Date
// bounds are calendar dates in the store's time zone.
type CommerceReaderSvc interface {
	// ListSales returns the sales of [from, to], newest first. Both bounds
	// default to today.
	ListSales(ctx context.Context, from, to *time.Time) ([]domain.Sale, error)
	GetSale(ctx context.Context, saleID int64) (*domain.Sale, error)
	ListPurchases(ctx context.Context, params dto.PurchaseListParams) ([]domain.Purchase, error)
	GetPurchase(ctx context.Context, purchaseID int64) (*domain.Purchase, error)
	GetCreditAccount(ctx context.Context, creditID int64) (*domain.CreditAccount, error)
	ListCredits(ctx context.Context, params dto.CreditListParams) ([]domain.CreditAccount, error)
	CreditStats(ctx context.Context) (*domain.CreditStats, error)
	CustomerCredits(ctx context.Context, customer string) (*domain.CustomerCredits, error)
}

// CommerceSvcFacade combines the commerce interfaces.
type CommerceSvcFacade interface {
	CatalogSvc
	CommerceWriterSvc
	CommerceReaderSvc
}
