package dto

import (
	"time"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateProductRequest defines the data needed to add a product to the catalog.
// MinStock falls back to the configured low stock threshold.
type CreateProductRequest struct {
	Name     string          `json:"name" binding:"required,max=120"`
	Category string          `json:"category" binding:"max=60"`
	Price    decimal.Decimal `json:"price" binding:"gte=0"`
	Stock    int             `json:"stock" binding:"min=0"`
	MinStock *int            `json:"minStock" binding:"omitempty,min=0"`
}

// UpdateProductRequest replaces a product's fields. MinStock keeps the current
// threshold when absent.
type UpdateProductRequest struct {
	Name     string          `json:"name" binding:"required,max=120"`
	Category string          `json:"category" binding:"max=60"`
	Price    decimal.Decimal `json:"price" binding:"gte=0"`
	Stock    int             `json:"stock" binding:"min=0"`
	MinStock *int            `json:"minStock" binding:"omitempty,min=0"`
}

// SaleItemRequest is one ticket line. UnitPrice defaults to the catalog price.
type SaleItemRequest struct {
	ProductID int64            `json:"productID" binding:"required,gt=0"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unitPrice"`
}

// RegisterSaleRequest defines a point-of-sale ticket. CashAmount and QRAmount
// are only read for MIXED payments; Customer is required for CREDIT.
type RegisterSaleRequest struct {
	Items         []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	Method        string            `json:"method" binding:"required"`
	CashAmount    decimal.Decimal   `json:"cashAmount"`
	QRAmount      decimal.Decimal   `json:"qrAmount"`
	Customer      string            `json:"customer" binding:"max=120"`
	CustomerPhone string            `json:"customerPhone" binding:"max=30"`
}

// SaleListParams are the calendar bounds of the sales listing.
type SaleListParams struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// PurchaseItemRequest is a restocked product line.
type PurchaseItemRequest struct {
	ProductID int64           `json:"productID" binding:"required,gt=0"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitCost  decimal.Decimal `json:"unitCost" binding:"gte=0"`
}

// RegisterPurchaseRequest defines money spent by the shop.
type RegisterPurchaseRequest struct {
	Kind        string                `json:"kind" binding:"required"`
	Method      string                `json:"method" binding:"required"`
	Total       decimal.Decimal       `json:"total" binding:"gt=0"`
	Supplier    string                `json:"supplier" binding:"max=120"`
	Description string                `json:"description" binding:"max=200"`
	Items       []PurchaseItemRequest `json:"items" binding:"omitempty,dive"`
}

// PurchaseListParams filter the purchase listing. Search matches the supplier
// or the description.
type PurchaseListParams struct {
	Kind   string     `form:"kind"`
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
	Search string     `form:"search" binding:"max=120"`
	Limit  int        `form:"limit" binding:"omitempty,min=1,max=500"`
}

// CreditListParams filter the credit listing. Status is ALL (default),
// OUTSTANDING, PENDING, PARTIAL or PAID. Search matches the customer name or phone.
type CreditListParams struct {
	Status string `form:"status"`
	Search string `form:"search" binding:"max=120"`
}

// CreditPaymentRequest collects part of a receivable. Method defaults to CASH.
type CreditPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"gt=0"`
	Method string          `json:"method"`
	Notes  string          `json:"notes" binding:"max=200"`
}

// SaleResponse is the receipt of a registered sale.
type SaleResponse struct {
	Sale         domain.Sale           `json:"sale"`
	Movements    []MovementResponse    `json:"movements"`
	Credit       *domain.CreditAccount `json:"credit,omitempty"`
	TotalDisplay string                `json:"totalDisplay"`
}

func ToSaleResponse(r *domain.SaleReceipt, currency string) SaleResponse {
	return SaleResponse{
		Sale:         r.Sale,
		Movements:    ToMovementResponses(r.Movements, currency),
		Credit:       r.Credit,
		TotalDisplay: FormatAmount(r.Sale.Total, currency),
	}
}

// PurchaseResponse is the receipt of a registered purchase. Movement is absent
// when the till was closed.
type PurchaseResponse struct {
	Purchase     domain.Purchase   `json:"purchase"`
	Movement     *MovementResponse `json:"movement,omitempty"`
	TotalDisplay string            `json:"totalDisplay"`
}

func ToPurchaseResponse(r *domain.PurchaseReceipt, currency string) PurchaseResponse {
	return PurchaseResponse{
		Purchase:     r.Purchase,
		Movement:     optionalMovement(r.Movement, currency),
		TotalDisplay: FormatAmount(r.Purchase.Total, currency),
	}
}

// CreditPaymentResponse is the receipt of a credit collection.
type CreditPaymentResponse struct {
	Payment            domain.CreditPayment `json:"payment"`
	Credit             domain.CreditAccount `json:"credit"`
	Movement           *MovementResponse    `json:"movement,omitempty"`
	OutstandingDisplay string               `json:"outstandingDisplay"`
}

func ToCreditPaymentResponse(r *domain.PaymentReceipt, currency string) CreditPaymentResponse {
	return CreditPaymentResponse{
		Payment:            r.Payment,
		Credit:             r.Credit,
		Movement:           optionalMovement(r.Movement, currency),
		OutstandingDisplay: FormatAmount(r.Credit.Outstanding, currency),
	}
}

func optionalMovement(m *domain.Movement, currency string) *MovementResponse {
	if m == nil {
		return nil
	}
	resp := ToMovementResponse(m, currency)
	return &resp
}

// CreditStatsResponse adds display amounts to the receivables summary.
type CreditStatsResponse struct {
	domain.CreditStats
	PendingDisplay   string `json:"pendingDisplay"`
	OverdueDisplay   string `json:"overdueDisplay"`
	CollectedDisplay string `json:"collectedDisplay"`
}

func ToCreditStatsResponse(stats *domain.CreditStats, currency string) CreditStatsResponse {
	return CreditStatsResponse{
		CreditStats:      *stats,
		PendingDisplay:   FormatAmount(stats.PendingTotal, currency),
		OverdueDisplay:   FormatAmount(stats.OverdueTotal, currency),
		CollectedDisplay: FormatAmount(stats.CollectedThisMonth, currency),
	}
}
