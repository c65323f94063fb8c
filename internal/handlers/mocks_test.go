package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock TillService ---
type MockTillService struct {
	mock.Mock
}

func (m *MockTillService) GetOpenSession(ctx context.Context) (*domain.TillSession, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TillSession), args.Error(1)
}
func (m *MockTillService) GetSession(ctx context.Context, sessionID int64) (*domain.TillSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TillSession), args.Error(1)
}
func (m *MockTillService) ListClosedSessions(ctx context.Context, params dto.ListSessionsParams) ([]domain.TillSession, *string, error) {
	args := m.Called(ctx, params)
	var token *string
	if t := args.Get(1); t != nil {
		token = t.(*string)
	}
	if args.Get(0) == nil {
		return nil, token, args.Error(2)
	}
	return args.Get(0).([]domain.TillSession), token, args.Error(2)
}
func (m *MockTillService) OpenSession(ctx context.Context, openingFloat decimal.Decimal, operator string) (int64, error) {
	args := m.Called(ctx, openingFloat, operator)
	return args.Get(0).(int64), args.Error(1)
}

var _ portssvc.TillSvcFacade = (*MockTillService)(nil)

// --- Mock ReconciliationService ---
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) Summarize(ctx context.Context, sessionID int64) (*domain.Summary, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}
func (m *MockReconciliationService) CloseSession(ctx context.Context, sessionID int64, countedCash decimal.Decimal, operator string) (*domain.CloseResult, error) {
	args := m.Called(ctx, sessionID, countedCash, operator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CloseResult), args.Error(1)
}

var _ portssvc.ReconciliationSvc = (*MockReconciliationService)(nil)

// --- Mock MovementService ---
type MockMovementService struct {
	mock.Mock
}

func (m *MockMovementService) RecordMovement(ctx context.Context, sessionID int64, draft domain.MovementDraft) (int64, error) {
	args := m.Called(ctx, sessionID, draft)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockMovementService) RecordWithdrawal(ctx context.Context, amount decimal.Decimal, concept string, operator string) (*domain.Movement, error) {
	args := m.Called(ctx, amount, concept, operator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}
func (m *MockMovementService) ListMovements(ctx context.Context, sessionID int64) ([]domain.Movement, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movement), args.Error(1)
}

var _ portssvc.MovementSvcFacade = (*MockMovementService)(nil)

// --- Mock CommerceService ---
type MockCommerceService struct {
	mock.Mock
}

func (m *MockCommerceService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*domain.Product, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *MockCommerceService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Product), args.Error(1)
}
func (m *MockCommerceService) RegisterSale(ctx context.Context, req dto.RegisterSaleRequest, operator string) (*domain.SaleReceipt, error) {
	args := m.Called(ctx, req, operator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SaleReceipt), args.Error(1)
}
func (m *MockCommerceService) RegisterPurchase(ctx context.Context, req dto.RegisterPurchaseRequest, operator string) (*domain.PurchaseReceipt, error) {
	args := m.Called(ctx, req, operator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PurchaseReceipt), args.Error(1)
}
func (m *MockCommerceService) RegisterCreditPayment(ctx context.Context, creditID int64, req dto.CreditPaymentRequest, operator string) (*domain.PaymentReceipt, error) {
	args := m.Called(ctx, creditID, req, operator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentReceipt), args.Error(1)
}
func (m *MockCommerceService) GetCreditAccount(ctx context.Context, creditID int64) (*domain.CreditAccount, error) {
	args := m.Called(ctx, creditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditAccount), args.Error(1)
}
func (m *MockCommerceService) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *MockCommerceService) UpdateProduct(ctx context.Context, productID int64, req dto.UpdateProductRequest) (*domain.Product, error) {
	args := m.Called(ctx, productID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}
func (m *MockCommerceService) ListSales(ctx context.Context, from, to *time.Time) ([]domain.Sale, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sale), args.Error(1)
}
func (m *MockCommerceService) GetSale(ctx context.Context, saleID int64) (*domain.Sale, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}
func (m *MockCommerceService) ListPurchases(ctx context.Context, params dto.PurchaseListParams) ([]domain.Purchase, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Purchase), args.Error(1)
}
func (m *MockCommerceService) GetPurchase(ctx context.Context, purchaseID int64) (*domain.Purchase, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}
func (m *MockCommerceService) ListCredits(ctx context.Context, params dto.CreditListParams) ([]domain.CreditAccount, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CreditAccount), args.Error(1)
}
func (m *MockCommerceService) CreditStats(ctx context.Context) (*domain.CreditStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreditStats), args.Error(1)
}
func (m *MockCommerceService) CustomerCredits(ctx context.Context, customer string) (*domain.CustomerCredits, error) {
	args := m.Called(ctx, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerCredits), args.Error(1)
}

var _ portssvc.CommerceSvcFacade = (*MockCommerceService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) SessionDetail(ctx context.Context, sessionID int64) (*domain.SessionDetail, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionDetail), args.Error(1)
}
func (m *MockReportingService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}
func (m *MockReportingService) SalesSeries(ctx context.Context, granularity domain.Granularity, from, to *time.Time) ([]domain.SalesBucket, error) {
	args := m.Called(ctx, granularity, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SalesBucket), args.Error(1)
}
func (m *MockReportingService) PurchaseSeries(ctx context.Context, granularity domain.Granularity, from, to *time.Time) ([]domain.PurchaseBucket, error) {
	args := m.Called(ctx, granularity, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PurchaseBucket), args.Error(1)
}
func (m *MockReportingService) TopProducts(ctx context.Context, limit int, from, to *time.Time) ([]domain.ProductRanking, error) {
	args := m.Called(ctx, limit, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ProductRanking), args.Error(1)
}
func (m *MockReportingService) SalesByCategory(ctx context.Context, from, to *time.Time) ([]domain.CategoryTotal, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryTotal), args.Error(1)
}
func (m *MockReportingService) FinancialSummary(ctx context.Context, from, to *time.Time) (*domain.FinancialSummary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialSummary), args.Error(1)
}
func (m *MockReportingService) Comparison(ctx context.Context) (*domain.Comparison, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comparison), args.Error(1)
}
func (m *MockReportingService) HourlySales(ctx context.Context, date *time.Time) ([]domain.HourlyBucket, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HourlyBucket), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)
