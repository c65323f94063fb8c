package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Direction tells whether money entered or left the till.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// PaymentMethod is how a movement was settled.
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "CASH"
	MethodQR     PaymentMethod = "QR"
	MethodMixed  PaymentMethod = "MIXED"
	MethodCredit PaymentMethod = "CREDIT"
	MethodOther  PaymentMethod = "OTHER"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodQR, MethodMixed, MethodCredit, MethodOther:
		return true
	}
	return false
}

// ParsePaymentMethod accepts the method name in any case.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, s)
	}
	return m, nil
}

// ReferenceKind names the entity a movement originated from.
type ReferenceKind string

const (
	RefSale             ReferenceKind = "SALE"
	RefPurchase         ReferenceKind = "PURCHASE"
	RefCreditPayment    ReferenceKind = "CREDIT_PAYMENT"
	RefManualWithdrawal ReferenceKind = "MANUAL_WITHDRAWAL"
)

// Reference points at the sale, purchase or payment that caused a movement.
// Manual withdrawals carry the kind only.
type Reference struct {
	Kind ReferenceKind `json:"kind"`
	ID   *int64        `json:"id,omitempty"`
}

// RefTo builds a reference with an id.
func RefTo(kind ReferenceKind, id int64) *Reference {
	return &Reference{Kind: kind, ID: &id}
}

// MoneyScale is the number of decimals every stored amount keeps.
const MoneyScale = 2

// ValidateCents rejects amounts finer than a cent, which storage would
// otherwise round silently. Trailing zeros such as 10.500 are accepted.
func ValidateCents(amount decimal.Decimal, field string) error {
	if !amount.Round(MoneyScale).Equal(amount) {
		return fmt.Errorf("%w: %s %s has more than %d decimals",
			apperrors.ErrInvalidAmount, field, amount.String(), MoneyScale)
	}
	return nil
}

// MovementDraft is a movement before it is bound to a session and stored.
type MovementDraft struct {
	Direction Direction
	Concept   string
	Amount    decimal.Decimal
	Method    *PaymentMethod
	Reference *Reference
}

// Validate checks the draft before anything is written.
func (d MovementDraft) Validate() error {
	if !d.Amount.IsPositive() {
		return fmt.Errorf("%w: movement amount must be greater than zero, got %s", apperrors.ErrInvalidAmount, d.Amount.String())
	}
	if err := ValidateCents(d.Amount, "movement amount"); err != nil {
		return err
	}
	if d.Direction != DirectionIn && d.Direction != DirectionOut {
		return fmt.Errorf("%w: unknown direction %q", apperrors.ErrValidation, d.Direction)
	}
	if strings.TrimSpace(d.Concept) == "" {
		return fmt.Errorf("%w: concept is required", apperrors.ErrValidation)
	}
	if d.Method != nil && !d.Method.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, *d.Method)
	}
	return nil
}

// Movement is one immutable money event recorded against a till session.
type Movement struct {
	MovementID int64           `json:"movementID"`
	SessionID  int64           `json:"sessionID"`
	Direction  Direction       `json:"direction"`
	Concept    string          `json:"concept"`
	Amount     decimal.Decimal `json:"amount"`
	Method     *PaymentMethod  `json:"method,omitempty"`
	Reference  *Reference      `json:"reference,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// NewMovement binds a draft to a session.
func NewMovement(sessionID int64, d MovementDraft, at time.Time) Movement {
	return Movement{
		SessionID: sessionID,
		Direction: d.Direction,
		Concept:   strings.TrimSpace(d.Concept),
		Amount:    d.Amount,
		Method:    d.Method,
		Reference: d.Reference,
		CreatedAt: at,
	}
}

// HasMethod reports whether the movement was settled with m.
func (m Movement) HasMethod(method PaymentMethod) bool {
	return m.Method != nil && *m.Method == method
}

// MethodPtr returns a pointer to m.
func MethodPtr(m PaymentMethod) *PaymentMethod {
	return &m
}
