package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ProductID int64           `json:"productID"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	MinStock  int             `json:"minStock"`
}

type Sale struct {
	SaleID     int64           `json:"saleID"`
	SessionID  int64           `json:"sessionID"`
	Total      decimal.Decimal `json:"total"`
	Method     string          `json:"method"`
	CashAmount decimal.Decimal `json:"cashAmount"`
	QRAmount   decimal.Decimal `json:"qrAmount"`
	Customer   string          `json:"customer"`
	Phone      string          `json:"customerPhone"`
	AuditFields
}

// SaleItem is a row of sale_items; LineNo keeps the ticket order.
type SaleItem struct {
	SaleID    int64           `json:"saleID"`
	LineNo    int             `json:"lineNo"`
	ProductID int64           `json:"productID"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Purchase struct {
	PurchaseID  int64           `json:"purchaseID"`
	SessionID   *int64          `json:"sessionID"`
	Kind        string          `json:"kind"`
	Total       decimal.Decimal `json:"total"`
	Method      string          `json:"method"`
	Supplier    string          `json:"supplier"`
	Description string          `json:"description"`
	AuditFields
}

type PurchaseItem struct {
	PurchaseID int64           `json:"purchaseID"`
	LineNo     int             `json:"lineNo"`
	ProductID  int64           `json:"productID"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unitCost"`
}

type CreditAccount struct {
	CreditID    int64           `json:"creditID"`
	SaleID      int64           `json:"saleID"`
	Customer    string          `json:"customer"`
	Phone       string          `json:"customerPhone"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
	Status      string          `json:"status"`
	OpenedAt    time.Time       `json:"openedAt"`
}

type CreditPayment struct {
	PaymentID int64           `json:"paymentID"`
	CreditID  int64           `json:"creditID"`
	SessionID *int64          `json:"sessionID"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Notes     string          `json:"notes"`
	AuditFields
}
