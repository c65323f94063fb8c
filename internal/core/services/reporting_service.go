package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

const (
	defaultSeriesDays  = 30
	defaultTopProducts = 10
	uncategorized      = "Uncategorized"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(repo portsrepo.ReportingRepository, options ...ServiceOption) portssvc.ReportingService {
	return &reportingService{
		BaseService:   newBaseService(options),
		reportingRepo: repo,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// SessionDetail returns a session with its summary and movements.
func (s *reportingService) SessionDetail(ctx context.Context, sessionID int64) (*domain.SessionDetail, error) {
	session, err := s.reportingRepo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to read session detail", slog.Int64("session_id", sessionID))
		return nil, fmt.Errorf("failed to read till session %d: %w", sessionID, err)
	}
	movements, err := s.reportingRepo.ListMovementsBySession(ctx, sessionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list session movements", slog.Int64("session_id", sessionID))
		return nil, fmt.Errorf("failed to list movements of session %d: %w", sessionID, err)
	}
	if movements == nil {
		movements = []domain.Movement{}
	}
	return &domain.SessionDetail{
		Session:   *session,
		Summary:   domain.Summarize(*session, movements),
		Movements: movements,
	}, nil
}

// Dashboard builds the back office landing snapshot.
func (s *reportingService) Dashboard(ctx context.Context) (*domain.Dashboard, error) {
	now := s.today()
	today := s.dayRange(nil, nil, now, now)
	month := domain.DateRange{
		From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.Location),
		To:   today.To,
	}

	var dash domain.Dashboard

	products, err := s.reportingRepo.ListProducts(ctx)
	if err != nil {
		return nil, s.readError(ctx, err, "products")
	}
	dash.ProductCount = len(products)
	for _, p := range products {
		if p.IsLowStock() {
			dash.LowStockCount++
		}
	}

	sales, err := s.reportingRepo.ListSales(ctx, month)
	if err != nil {
		return nil, s.readError(ctx, err, "sales")
	}
	for _, sale := range sales {
		dash.SalesMonth.Add(sale.Total)
		if today.Contains(sale.CreatedAt) {
			dash.SalesToday.Add(sale.Total)
		}
	}

	purchases, err := s.reportingRepo.ListPurchases(ctx, month)
	if err != nil {
		return nil, s.readError(ctx, err, "purchases")
	}
	for _, p := range purchases {
		dash.PurchasesMonth.Add(p.Total)
	}
	dash.GrossMarginMonth = dash.SalesMonth.Total.Sub(dash.PurchasesMonth.Total)

	credits, err := s.reportingRepo.ListOutstandingCredits(ctx)
	if err != nil {
		return nil, s.readError(ctx, err, "outstanding credits")
	}
	for _, c := range credits {
		dash.PendingCredits.Add(c.Outstanding)
	}

	open, err := s.reportingRepo.GetOpenSession(ctx)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
	case err != nil:
		return nil, s.readError(ctx, err, "open session")
	default:
		movements, err := s.reportingRepo.ListMovementsBySession(ctx, open.SessionID)
		if err != nil {
			return nil, s.readError(ctx, err, "open session movements")
		}
		summary := domain.Summarize(*open, movements)
		openedAt := open.OpenedAt
		sessionID := open.SessionID
		dash.Till = domain.TillStatus{
			Open:         true,
			SessionID:    &sessionID,
			Operator:     open.Operator,
			OpenedAt:     &openedAt,
			OpeningFloat: open.OpeningFloat,
			CashOnHand:   summary.ExpectedCash,
		}
	}

	return &dash, nil
}

// SalesSeries buckets sales by period, oldest first.
func (s *reportingService) SalesSeries(ctx context.Context, granularity domain.Granularity, from, to *time.Time) ([]domain.SalesBucket, error) {
	r := s.seriesRange(from, to)
	sales, err := s.reportingRepo.ListSales(ctx, r)
	if err != nil {
		return nil, s.readError(ctx, err, "sales")
	}

	buckets := make(map[string]*domain.SalesBucket)
	for _, sale := range sales {
		key := granularity.Key(sale.CreatedAt.In(s.Location))
		b, ok := buckets[key]
		if !ok {
			b = &domain.SalesBucket{Period: key}
			buckets[key] = b
		}
		b.AddSale(sale)
	}

	series := make([]domain.SalesBucket, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Period < series[j].Period })
	return series, nil
}

// PurchaseSeries buckets purchases by period, oldest first.
func (s *reportingService) PurchaseSeries(ctx context.Context, granularity domain.Granularity, from, to *time.Time) ([]domain.PurchaseBucket, error) {
	r := s.seriesRange(from, to)
	purchases, err := s.reportingRepo.ListPurchases(ctx, r)
	if err != nil {
		return nil, s.readError(ctx, err, "purchases")
	}

	buckets := make(map[string]*domain.PurchaseBucket)
	for _, p := range purchases {
		key := granularity.Key(p.CreatedAt.In(s.Location))
		b, ok := buckets[key]
		if !ok {
			b = &domain.PurchaseBucket{Period: key}
			buckets[key] = b
		}
		b.AddPurchase(p)
	}

	series := make([]domain.PurchaseBucket, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Period < series[j].Period })
	return series, nil
}

// TopProducts ranks products by units sold.
func (s *reportingService) TopProducts(ctx context.Context, limit int, from, to *time.Time) ([]domain.ProductRanking, error) {
	if limit <= 0 {
		limit = defaultTopProducts
	}
	sales, catalog, err := s.salesWithCatalog(ctx, s.seriesRange(from, to))
	if err != nil {
		return nil, err
	}

	rows := make(map[int64]*domain.ProductRanking)
	for _, sale := range sales {
		for _, item := range sale.Items {
			row, ok := rows[item.ProductID]
			if !ok {
				p := catalog[item.ProductID]
				row = &domain.ProductRanking{
					ProductID: item.ProductID,
					Name:      p.Name,
					Category:  p.Category,
					Stock:     p.Stock,
				}
				rows[item.ProductID] = row
			}
			row.Quantity += item.Quantity
			row.Total = row.Total.Add(item.Subtotal)
		}
	}

	ranking := make([]domain.ProductRanking, 0, len(rows))
	for _, row := range rows {
		ranking = append(ranking, *row)
	}
	sort.Slice(ranking, func(i, j int) bool {
		a, b := ranking[i], ranking[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if !a.Total.Equal(b.Total) {
			return a.Total.GreaterThan(b.Total)
		}
		return a.ProductID < b.ProductID
	})
	if len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking, nil
}

// SalesByCategory groups revenue by product category, largest first.
func (s *reportingService) SalesByCategory(ctx context.Context, from, to *time.Time) ([]domain.CategoryTotal, error) {
	sales, catalog, err := s.salesWithCatalog(ctx, s.seriesRange(from, to))
	if err != nil {
		return nil, err
	}

	rows := make(map[string]*domain.CategoryTotal)
	for _, sale := range sales {
		seen := make(map[string]bool)
		for _, item := range sale.Items {
			category := catalog[item.ProductID].Category
			if category == "" {
				category = uncategorized
			}
			row, ok := rows[category]
			if !ok {
				row = &domain.CategoryTotal{Category: category}
				rows[category] = row
			}
			row.Quantity += item.Quantity
			row.Total = row.Total.Add(item.Subtotal)
			if !seen[category] {
				seen[category] = true
				row.SaleCount++
			}
		}
	}

	totals := make([]domain.CategoryTotal, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, *row)
	}
	sort.Slice(totals, func(i, j int) bool {
		if !totals[i].Total.Equal(totals[j].Total) {
			return totals[i].Total.GreaterThan(totals[j].Total)
		}
		return totals[i].Category < totals[j].Category
	})
	return totals, nil
}

// FinancialSummary defaults to the current month to date.
func (s *reportingService) FinancialSummary(ctx context.Context, from, to *time.Time) (*domain.FinancialSummary, error) {
	now := s.today()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.Location)
	r := s.dayRange(from, to, monthStart, now)
	if !r.From.Before(r.To) {
		return nil, fmt.Errorf("%w: from date is after to date", apperrors.ErrValidation)
	}

	summary := domain.FinancialSummary{From: r.From, To: r.To}

	sales, err := s.reportingRepo.ListSales(ctx, r)
	if err != nil {
		return nil, s.readError(ctx, err, "sales")
	}
	for _, sale := range sales {
		summary.Sales.AddSale(sale)
	}

	purchases, err := s.reportingRepo.ListPurchases(ctx, r)
	if err != nil {
		return nil, s.readError(ctx, err, "purchases")
	}
	for _, p := range purchases {
		summary.Purchases.AddPurchase(p)
	}

	issued, err := s.reportingRepo.ListCreditsOpened(ctx, r)
	if err != nil {
		return nil, s.readError(ctx, err, "credits")
	}
	for _, c := range issued {
		summary.CreditIssued.Add(c.Total)
	}

	payments, err := s.reportingRepo.ListCreditPayments(ctx, r)
	if err != nil {
		return nil, s.readError(ctx, err, "credit payments")
	}
	for _, p := range payments {
		summary.CreditPaid.Add(p.Amount)
	}

	summary.Income = summary.Sales.Cash.Add(summary.Sales.QR).Add(summary.CreditPaid.Total)
	summary.Expenses = summary.Purchases.Total
	summary.Net = summary.Income.Sub(summary.Expenses)
	return &summary, nil
}

// Comparison pits today, this week and this month against the previous ones.
// Weeks start on Monday.
func (s *reportingService) Comparison(ctx context.Context) (*domain.Comparison, error) {
	now := s.today()
	today := s.dayStart(now)
	tomorrow := today.AddDate(0, 0, 1)
	yesterday := today.AddDate(0, 0, -1)

	weekStart := today.AddDate(0, 0, -((int(today.Weekday()) + 6) % 7))
	prevWeekStart := weekStart.AddDate(0, 0, -7)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, s.Location)
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	earliest := prevMonthStart
	if prevWeekStart.Before(earliest) {
		earliest = prevWeekStart
	}
	sales, err := s.reportingRepo.ListSales(ctx, domain.DateRange{From: earliest, To: tomorrow})
	if err != nil {
		return nil, s.readError(ctx, err, "sales")
	}

	windows := []domain.DateRange{
		{From: today, To: tomorrow},
		{From: yesterday, To: today},
		{From: weekStart, To: tomorrow},
		{From: prevWeekStart, To: weekStart},
		{From: monthStart, To: tomorrow},
		{From: prevMonthStart, To: monthStart},
	}
	totals := make([]domain.PeriodTotal, len(windows))
	for _, sale := range sales {
		for i, w := range windows {
			if w.Contains(sale.CreatedAt) {
				totals[i].Add(sale.Total)
			}
		}
	}

	return &domain.Comparison{
		Day:   domain.Compare(totals[0], totals[1]),
		Week:  domain.Compare(totals[2], totals[3]),
		Month: domain.Compare(totals[4], totals[5]),
	}, nil
}

// HourlySales returns one zero-filled bucket per business hour of date.
func (s *reportingService) HourlySales(ctx context.Context, date *time.Time) ([]domain.HourlyBucket, error) {
	now := s.today()
	r := s.dayRange(date, date, now, now)
	sales, err := s.reportingRepo.ListSales(ctx, r)
	if err != nil {
		return nil, s.readError(ctx, err, "sales")
	}

	buckets := make([]domain.HourlyBucket, 0, domain.LastBusinessHour-domain.FirstBusinessHour+1)
	for h := domain.FirstBusinessHour; h <= domain.LastBusinessHour; h++ {
		buckets = append(buckets, domain.HourlyBucket{Hour: h, Total: decimal.Zero})
	}
	for _, sale := range sales {
		h := sale.CreatedAt.In(s.Location).Hour()
		if h < domain.FirstBusinessHour || h > domain.LastBusinessHour {
			continue
		}
		b := &buckets[h-domain.FirstBusinessHour]
		b.Count++
		b.Total = b.Total.Add(sale.Total)
	}
	return buckets, nil
}

// seriesRange defaults to the last 30 days including today.
func (s *reportingService) seriesRange(from, to *time.Time) domain.DateRange {
	now := s.today()
	return s.dayRange(from, to, now.AddDate(0, 0, -(defaultSeriesDays-1)), now)
}

func (s *reportingService) salesWithCatalog(ctx context.Context, r domain.DateRange) ([]domain.Sale, map[int64]domain.Product, error) {
	sales, err := s.reportingRepo.ListSales(ctx, r)
	if err != nil {
		return nil, nil, s.readError(ctx, err, "sales")
	}
	products, err := s.reportingRepo.ListProducts(ctx)
	if err != nil {
		return nil, nil, s.readError(ctx, err, "products")
	}
	catalog := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		catalog[p.ProductID] = p
	}
	return sales, catalog, nil
}

func (s *reportingService) readError(ctx context.Context, err error, what string) error {
	s.LogError(ctx, err, "Failed to read report data", slog.String("source", what))
	return fmt.Errorf("failed to read %s: %w", what, err)
}
