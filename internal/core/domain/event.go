package domain

import "time"

// EventType names a ledger notification.
type EventType string

const (
	EventSessionOpened           EventType = "session-opened"
	EventSessionClosed           EventType = "session-closed"
	EventMovementRecorded        EventType = "movement-recorded"
	EventSaleRegistered          EventType = "sale-registered"
	EventPurchaseRegistered      EventType = "purchase-registered"
	EventCreditPaymentRegistered EventType = "credit-payment-registered"
	EventCashWithdrawn           EventType = "cash-withdrawn"
)

// Event is published after a ledger write commits. Payload is one of the
// *Payload types below.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

type SessionOpenedPayload struct {
	SessionID int64  `json:"sessionID"`
	Operator  string `json:"operator"`
}

type SessionClosedPayload struct {
	SessionID int64         `json:"sessionID"`
	Totals    SessionTotals `json:"totals"`
}

type MovementRecordedPayload struct {
	MovementID int64     `json:"movementID"`
	SessionID  int64     `json:"sessionID"`
	Direction  Direction `json:"direction"`
	Method     string    `json:"method,omitempty"`
}

type SaleRegisteredPayload struct {
	SaleID int64         `json:"saleID"`
	Method PaymentMethod `json:"method"`
	Total  string        `json:"total"`
}

type PurchaseRegisteredPayload struct {
	PurchaseID int64        `json:"purchaseID"`
	Kind       PurchaseKind `json:"kind"`
	Total      string       `json:"total"`
}

type CreditPaymentRegisteredPayload struct {
	PaymentID   int64        `json:"paymentID"`
	CreditID    int64        `json:"creditID"`
	Outstanding string       `json:"outstanding"`
	Status      CreditStatus `json:"status"`
}

type CashWithdrawnPayload struct {
	SessionID  int64  `json:"sessionID"`
	MovementID int64  `json:"movementID"`
	Amount     string `json:"amount"`
}
