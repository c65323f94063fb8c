package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/SscSPs/licoreria_pos/internal/dto"
	"github.com/shopspring/decimal"
)

const creditStatusAll = "ALL"
const creditStatusOutstanding = "OUTSTANDING"

func (s *commerceService) ListSales(ctx context.Context, from, to *time.Time) ([]domain.Sale, error) {
	today := s.today()
	r := s.dayRange(from, to, today, today)
	if !r.From.Before(r.To) {
		return nil, fmt.Errorf("%w: from must not be after to", apperrors.ErrValidation)
	}
	sales, err := s.commerceRepo.ListSales(ctx, r)
	if err != nil {
		s.LogError(ctx, err, "Failed to list sales", slog.Time("from", r.From), slog.Time("to", r.To))
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	for i, j := 0, len(sales)-1; i < j; i, j = i+1, j-1 {
		sales[i], sales[j] = sales[j], sales[i]
	}
	return sales, nil
}

func (s *commerceService) GetSale(ctx context.Context, saleID int64) (*domain.Sale, error) {
	sale, err := s.commerceRepo.GetSale(ctx, saleID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to read sale", slog.Int64("sale_id", saleID))
		return nil, fmt.Errorf("failed to read sale %d: %w", saleID, err)
	}
	return sale, nil
}

func (s *commerceService) ListPurchases(ctx context.Context, params dto.PurchaseListParams) ([]domain.Purchase, error) {
	filter := domain.PurchaseFilter{Search: strings.TrimSpace(params.Search), Limit: params.Limit}
	if strings.TrimSpace(params.Kind) != "" {
		kind, err := domain.ParsePurchaseKind(params.Kind)
		if err != nil {
			return nil, err
		}
		filter.Kind = &kind
	}
	if params.From != nil {
		from := s.dayStart(*params.From)
		filter.From = &from
	}
	if params.To != nil {
		to := s.dayStart(*params.To).AddDate(0, 0, 1)
		filter.To = &to
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, fmt.Errorf("%w: from must not be after to", apperrors.ErrValidation)
	}

	purchases, err := s.commerceRepo.FindPurchases(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list purchases")
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}

func (s *commerceService) GetPurchase(ctx context.Context, purchaseID int64) (*domain.Purchase, error) {
	purchase, err := s.commerceRepo.GetPurchase(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to read purchase", slog.Int64("purchase_id", purchaseID))
		return nil, fmt.Errorf("failed to read purchase %d: %w", purchaseID, err)
	}
	return purchase, nil
}

func (s *commerceService) GetCreditAccount(ctx context.Context, creditID int64) (*domain.CreditAccount, error) {
	account, err := s.commerceRepo.GetCreditAccount(ctx, creditID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to read credit account", slog.Int64("credit_id", creditID))
		return nil, fmt.Errorf("failed to read credit %d: %w", creditID, err)
	}
	return account, nil
}

func (s *commerceService) ListCredits(ctx context.Context, params dto.CreditListParams) ([]domain.CreditAccount, error) {
	filter := domain.CreditFilter{Search: strings.TrimSpace(params.Search)}
	switch status := strings.ToUpper(strings.TrimSpace(params.Status)); status {
	case "", creditStatusAll:
	case creditStatusOutstanding:
		filter.Outstanding = true
	default:
		parsed, err := domain.ParseCreditStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = &parsed
	}

	credits, err := s.commerceRepo.ListCredits(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list credits")
		return nil, fmt.Errorf("failed to list credits: %w", err)
	}
	return credits, nil
}

// CreditStats counts the unpaid book and what was collected since the first
// day of the current month.
func (s *commerceService) CreditStats(ctx context.Context) (*domain.CreditStats, error) {
	now := s.today()
	outstanding, err := s.commerceRepo.ListCredits(ctx, domain.CreditFilter{Outstanding: true})
	if err != nil {
		s.LogError(ctx, err, "Failed to list outstanding credits")
		return nil, fmt.Errorf("failed to list outstanding credits: %w", err)
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.Location)
	payments, err := s.commerceRepo.ListCreditPayments(ctx, s.dayRange(&monthStart, &now, now, now))
	if err != nil {
		s.LogError(ctx, err, "Failed to list credit payments")
		return nil, fmt.Errorf("failed to list credit payments: %w", err)
	}
	collected := decimal.Zero
	for _, p := range payments {
		collected = collected.Add(p.Amount)
	}

	stats := domain.SummarizeCredits(outstanding, collected, now)
	return &stats, nil
}

// CustomerCredits returns every account of one customer, matched without
// regard to case, and what they still owe.
func (s *commerceService) CustomerCredits(ctx context.Context, customer string) (*domain.CustomerCredits, error) {
	customer = strings.TrimSpace(customer)
	if customer == "" {
		return nil, fmt.Errorf("%w: customer is required", apperrors.ErrValidation)
	}
	credits, err := s.commerceRepo.ListCredits(ctx, domain.CreditFilter{Customer: customer})
	if err != nil {
		s.LogError(ctx, err, "Failed to list customer credits", slog.String("customer", customer))
		return nil, fmt.Errorf("failed to list credits of %s: %w", customer, err)
	}
	if len(credits) == 0 {
		return nil, fmt.Errorf("%w: no credits for customer %q", apperrors.ErrNotFound, customer)
	}
	summary := domain.SummarizeCustomer(credits[0].Customer, credits)
	return &summary, nil
}
