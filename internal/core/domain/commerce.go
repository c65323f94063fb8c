package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Product is the slice of the catalog that sales, purchases and reports need.
type Product struct {
	ProductID int64           `json:"productID"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	MinStock  int             `json:"minStock"`
}

// IsLowStock reports whether stock has reached the reorder threshold.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// SaleItem is one line of a sale.
type SaleItem struct {
	ProductID int64           `json:"productID"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Sale is a completed point-of-sale ticket.
type Sale struct {
	SaleID        int64           `json:"saleID"`
	SessionID     int64           `json:"sessionID"`
	Total         decimal.Decimal `json:"total"`
	Method        PaymentMethod   `json:"method"`
	CashAmount    decimal.Decimal `json:"cashAmount"`
	QRAmount      decimal.Decimal `json:"qrAmount"`
	Customer      string          `json:"customer,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Items         []SaleItem      `json:"items"`
	AuditFields
}

// PurchaseKind classifies money spent by the shop.
type PurchaseKind string

const (
	PurchaseGoods    PurchaseKind = "GOODS"
	PurchaseSupplies PurchaseKind = "SUPPLIES"
	PurchaseExpense  PurchaseKind = "EXPENSE"
)

// ParsePurchaseKind accepts the kind name in any case.
func ParsePurchaseKind(s string) (PurchaseKind, error) {
	k := PurchaseKind(strings.ToUpper(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: unknown purchase kind %q", apperrors.ErrValidation, s)
	}
	return k, nil
}

// Valid reports whether k is a known purchase kind.
func (k PurchaseKind) Valid() bool {
	return k == PurchaseGoods || k == PurchaseSupplies || k == PurchaseExpense
}

// PurchaseItem is a restocked product line.
type PurchaseItem struct {
	ProductID int64           `json:"productID"`
	Quantity  int             `json:"quantity"`
	UnitCost  decimal.Decimal `json:"unitCost"`
}

// Purchase is stock bought from a supplier, supplies, or a general expense.
// SessionID is nil when it was registered with the till closed.
type Purchase struct {
	PurchaseID  int64           `json:"purchaseID"`
	SessionID   *int64          `json:"sessionID,omitempty"`
	Kind        PurchaseKind    `json:"kind"`
	Total       decimal.Decimal `json:"total"`
	Method      PaymentMethod   `json:"method"`
	Supplier    string          `json:"supplier,omitempty"`
	Description string          `json:"description,omitempty"`
	Items       []PurchaseItem  `json:"items,omitempty"`
	AuditFields
}

// CreditStatus tracks how much of a receivable has been collected.
type CreditStatus string

const (
	CreditPending CreditStatus = "PENDING"
	CreditPartial CreditStatus = "PARTIAL"
	CreditPaid    CreditStatus = "PAID"
)

// ParseCreditStatus accepts the status name in any case.
func ParseCreditStatus(s string) (CreditStatus, error) {
	st := CreditStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case CreditPending, CreditPartial, CreditPaid:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown credit status %q", apperrors.ErrValidation, s)
}

// CreditOverdueAfter is how long an unpaid credit may stay open before it
// counts as overdue.
const CreditOverdueAfter = 30 * 24 * time.Hour

// CreditAccount is the receivable created by a credit sale.
type CreditAccount struct {
	CreditID    int64           `json:"creditID"`
	SaleID      int64           `json:"saleID"`
	Customer      string          `json:"customer"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Paid          decimal.Decimal `json:"paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	Status        CreditStatus    `json:"status"`
	OpenedAt      time.Time       `json:"openedAt"`
}

// IsOverdue reports whether an unpaid account was opened CreditOverdueAfter
// or longer before now.
func (c CreditAccount) IsOverdue(now time.Time) bool {
	return c.Status != CreditPaid && !c.OpenedAt.After(now.Add(-CreditOverdueAfter))
}

// ApplyPayment moves paid and outstanding by amount and derives the new status.
func (c *CreditAccount) ApplyPayment(amount decimal.Decimal) {
	c.Paid = c.Paid.Add(amount)
	c.Outstanding = c.Total.Sub(c.Paid)
	switch {
	case !c.Outstanding.IsPositive():
		c.Outstanding = decimal.Zero
		c.Status = CreditPaid
	case c.Paid.IsPositive():
		c.Status = CreditPartial
	default:
		c.Status = CreditPending
	}
}

// CreditPayment is one collection against a credit account. SessionID is nil
// when it was collected with the till closed.
type CreditPayment struct {
	PaymentID int64           `json:"paymentID"`
	CreditID  int64           `json:"creditID"`
	SessionID *int64          `json:"sessionID,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Notes     string          `json:"notes,omitempty"`
	AuditFields
}

// SaleReceipt is returned after a sale is registered.
type SaleReceipt struct {
	Sale      Sale           `json:"sale"`
	Movements []Movement     `json:"movements"`
	Credit    *CreditAccount `json:"credit,omitempty"`
}

// PurchaseReceipt is returned after a purchase is registered. Movement is nil
// when no session was open.
type PurchaseReceipt struct {
	Purchase Purchase  `json:"purchase"`
	Movement *Movement `json:"movement,omitempty"`
}

// PaymentReceipt is returned after a credit payment is registered. Movement is
// nil when no session was open.
type PaymentReceipt struct {
	Payment  CreditPayment `json:"payment"`
	Credit   CreditAccount `json:"credit"`
	Movement *Movement     `json:"movement,omitempty"`
}

// PurchaseFilter narrows the purchase listing. Search matches the supplier or
// the description; zero values leave a field unfiltered.
type PurchaseFilter struct {
	Kind   *PurchaseKind
	From   *time.Time
	To     *time.Time
	Search string
	Limit  int
}

// CreditFilter narrows the credit listing. Search matches part of the
// customer name or phone; Customer matches the whole name, ignoring case.
// Outstanding keeps pending and partial accounts only.
type CreditFilter struct {
	Status      *CreditStatus
	Outstanding bool
	Search      string
	Customer    string
}

// CreditStats summarizes the receivables book.
type CreditStats struct {
	PendingCount       int             `json:"pendingCount"`
	PendingTotal       decimal.Decimal `json:"pendingTotal"`
	OverdueCount       int             `json:"overdueCount"`
	OverdueTotal       decimal.Decimal `json:"overdueTotal"`
	CollectedThisMonth decimal.Decimal `json:"collectedThisMonth"`
	Customers          int             `json:"customers"`
}

// CustomerCredits lists one customer's accounts, newest first, and what they still owe.
type CustomerCredits struct {
	Customer string          `json:"customer"`
	Credits  []CreditAccount `json:"credits"`
	Owed     decimal.Decimal `json:"owed"`
}

// SummarizeCredits counts unpaid accounts and their balances. Customers are
// told apart ignoring case. collected is the sum of this month's payments,
// which the caller reads separately.
func SummarizeCredits(accounts []CreditAccount, collected decimal.Decimal, now time.Time) CreditStats {
	stats := CreditStats{
		PendingTotal:       decimal.Zero,
		OverdueTotal:       decimal.Zero,
		CollectedThisMonth: collected,
	}
	customers := make(map[string]struct{})
	for _, c := range accounts {
		if c.Status == CreditPaid {
			continue
		}
		stats.PendingCount++
		stats.PendingTotal = stats.PendingTotal.Add(c.Outstanding)
		if c.IsOverdue(now) {
			stats.OverdueCount++
			stats.OverdueTotal = stats.OverdueTotal.Add(c.Outstanding)
		}
		customers[strings.ToLower(strings.TrimSpace(c.Customer))] = struct{}{}
	}
	stats.Customers = len(customers)
	return stats
}

// SummarizeCustomer builds the view of one customer from their accounts.
func SummarizeCustomer(customer string, accounts []CreditAccount) CustomerCredits {
	summary := CustomerCredits{Customer: customer, Credits: accounts, Owed: decimal.Zero}
	for _, c := range accounts {
		if c.Status != CreditPaid {
			summary.Owed = summary.Owed.Add(c.Outstanding)
		}
	}
	return summary
}
