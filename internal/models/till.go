package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TillSession is a row of till_sessions. The totals columns stay zero until close.
type TillSession struct {
	SessionID    int64           `json:"sessionID"`
	OpenedAt     time.Time       `json:"openedAt"`
	ClosedAt     *time.Time      `json:"closedAt"` // Nullable
	OpeningFloat decimal.Decimal `json:"openingFloat"`
	Status       string          `json:"status"`
	Operator     string          `json:"operator"`
	CashIn       decimal.Decimal `json:"cashIn"`
	CashOut      decimal.Decimal `json:"cashOut"`
	QRIn         decimal.Decimal `json:"qrIn"`
	CreditIn     decimal.Decimal `json:"creditIn"`
	TotalIn      decimal.Decimal `json:"totalIn"`
	TotalOut     decimal.Decimal `json:"totalOut"`
	ExpectedCash decimal.Decimal `json:"expectedCash"`
	CountedCash  decimal.Decimal `json:"countedCash"`
	Variance     decimal.Decimal `json:"variance"`
}

// Movement is a row of movements.
type Movement struct {
	MovementID    int64           `json:"movementID"`
	SessionID     int64           `json:"sessionID"`
	Direction     string          `json:"direction"`
	Concept       string          `json:"concept"`
	Amount        decimal.Decimal `json:"amount"`
	Method        *string         `json:"method"`        // Nullable
	ReferenceKind *string         `json:"referenceKind"` // Nullable
	ReferenceID   *int64          `json:"referenceID"`   // Nullable, absent for manual withdrawals
	CreatedAt     time.Time       `json:"createdAt"`
}
