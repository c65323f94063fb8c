package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Granularity is the bucket width of a period series.
type Granularity string

const (
	Daily   Granularity = "day"
	Weekly  Granularity = "week"
	Monthly Granularity = "month"
)

// ParseGranularity defaults to Daily on an empty string.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly:
		return g, nil
	}
	return "", fmt.Errorf("%w: unknown period %q", apperrors.ErrValidation, s)
}

// Key returns the bucket label for t, which must already be in the store's zone.
func (g Granularity) Key(t time.Time) string {
	switch g {
	case Weekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Monthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// PeriodTotal is a count and an amount over some window.
type PeriodTotal struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Add accumulates one record.
func (p *PeriodTotal) Add(amount decimal.Decimal) {
	p.Count++
	p.Total = p.Total.Add(amount)
}

// TillStatus is the dashboard view of the register.
type TillStatus struct {
	Open         bool            `json:"open"`
	SessionID    *int64          `json:"sessionID,omitempty"`
	Operator     string          `json:"operator,omitempty"`
	OpenedAt     *time.Time      `json:"openedAt,omitempty"`
	OpeningFloat decimal.Decimal `json:"openingFloat"`
	CashOnHand   decimal.Decimal `json:"cashOnHand"`
}

// Dashboard is the landing snapshot of the back office.
type Dashboard struct {
	ProductCount     int             `json:"productCount"`
	LowStockCount    int             `json:"lowStockCount"`
	SalesToday       PeriodTotal     `json:"salesToday"`
	SalesMonth       PeriodTotal     `json:"salesMonth"`
	PurchasesMonth   PeriodTotal     `json:"purchasesMonth"`
	GrossMarginMonth decimal.Decimal `json:"grossMarginMonth"`
	PendingCredits   PeriodTotal     `json:"pendingCredits"`
	Till             TillStatus      `json:"till"`
}

// SalesBucket totals sales in one period. Mixed sales are split into their
// cash and QR parts.
type SalesBucket struct {
	Period string          `json:"period"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
	Cash   decimal.Decimal `json:"cash"`
	QR     decimal.Decimal `json:"qr"`
	Credit decimal.Decimal `json:"credit"`
	Other  decimal.Decimal `json:"other"`
}

// AddSale folds one sale into the bucket.
func (b *SalesBucket) AddSale(s Sale) {
	b.Count++
	b.Total = b.Total.Add(s.Total)
	switch s.Method {
	case MethodCash:
		b.Cash = b.Cash.Add(s.Total)
	case MethodQR:
		b.QR = b.QR.Add(s.Total)
	case MethodMixed:
		b.Cash = b.Cash.Add(s.CashAmount)
		b.QR = b.QR.Add(s.QRAmount)
	case MethodCredit:
		b.Credit = b.Credit.Add(s.Total)
	default:
		b.Other = b.Other.Add(s.Total)
	}
}

// PurchaseBucket totals purchases in one period by kind.
type PurchaseBucket struct {
	Period   string          `json:"period"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Goods    decimal.Decimal `json:"goods"`
	Supplies decimal.Decimal `json:"supplies"`
	Expenses decimal.Decimal `json:"expenses"`
}

// AddPurchase folds one purchase into the bucket.
func (b *PurchaseBucket) AddPurchase(p Purchase) {
	b.Count++
	b.Total = b.Total.Add(p.Total)
	switch p.Kind {
	case PurchaseGoods:
		b.Goods = b.Goods.Add(p.Total)
	case PurchaseSupplies:
		b.Supplies = b.Supplies.Add(p.Total)
	default:
		b.Expenses = b.Expenses.Add(p.Total)
	}
}

// ProductRanking is one row of the best sellers list.
type ProductRanking struct {
	ProductID int64           `json:"productID"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	Stock     int             `json:"stock"`
}

// CategoryTotal is revenue grouped by product category.
type CategoryTotal struct {
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
	SaleCount int             `json:"saleCount"`
}

// FinancialSummary is the income statement of a window.
type FinancialSummary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Sales        SalesBucket    `json:"sales"`
	Purchases    PurchaseBucket `json:"purchases"`
	CreditIssued PeriodTotal    `json:"creditIssued"`
	CreditPaid   PeriodTotal    `json:"creditPaid"`

	// Income is money actually collected: cash and QR sales plus credit collections.
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

// PeriodComparison pits one window against the one before it.
type PeriodComparison struct {
	Current   PeriodTotal     `json:"current"`
	Previous  PeriodTotal     `json:"previous"`
	Variation decimal.Decimal `json:"variation"`
}

// Comparison groups the day, week and month comparisons.
type Comparison struct {
	Day   PeriodComparison `json:"day"`
	Week  PeriodComparison `json:"week"`
	Month PeriodComparison `json:"month"`
}

var hundred = decimal.NewFromInt(100)

// PercentVariation is the change from previous to current in percent, rounded
// to one decimal. A zero previous period yields 100 when current is positive
// and 0 otherwise.
func PercentVariation(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous).Mul(hundred).Round(1)
}

// Compare builds a PeriodComparison from two totals.
func Compare(current, previous PeriodTotal) PeriodComparison {
	return PeriodComparison{
		Current:   current,
		Previous:  previous,
		Variation: PercentVariation(current.Total, previous.Total),
	}
}

// Display window of the hourly sales chart.
const (
	FirstBusinessHour = 6
	LastBusinessHour  = 23
)

// HourlyBucket is sales within one clock hour.
type HourlyBucket struct {
	Hour  int             `json:"hour"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}
