package services

import (
	"context"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
)

// ReportingService defines read-only projections over the ledger and the
// commerce records. Date arguments are calendar dates; only their year, month
// and day are used, interpreted in the store's time zone. nil bounds fall back
// to each report's default window.
type ReportingService interface {
	SessionDetail(ctx context.Context, sessionID int64) (*domain.SessionDetail, error)
	Dashboard(ctx context.Context) (*domain.Dashboard, error)
	SalesSeries(ctx context.Context, granularity domain.Granularity, from, to *time.Time) ([]domain.SalesBucket, error)
	PurchaseSeries(ctx context.Context, granularity domain.Granularity, from, to *time.Time) ([]domain.PurchaseBucket, error)
	TopProducts(ctx context.Context, limit int, from, to *time.Time) ([]domain.ProductRanking, error)
	SalesByCategory(ctx context.Context, from, to *time.Time) ([]domain.CategoryTotal, error)
	FinancialSummary(ctx context.Context, from, to *time.Time) (*domain.FinancialSummary, error)
	Comparison(ctx context.Context) (*domain.Comparison, error)
	HourlySales(ctx context.Context, date *time.Time) ([]domain.HourlyBucket, error)
}
