package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SessionStatus is the lifecycle state of a till session.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionClosed SessionStatus = "CLOSED"
)

// SessionTotals are the figures frozen onto a session when it is closed.
// They stay zero while the session is open.
type SessionTotals struct {
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

// TillSession is one open-to-close working period of the cash register.
type TillSession struct {
	SessionID    int64           `json:"sessionID"`
	OpenedAt     time.Time       `json:"openedAt"`
	ClosedAt     *time.Time      `json:"closedAt,omitempty"`
	OpeningFloat decimal.Decimal `json:"openingFloat"`
	Totals       SessionTotals   `json:"totals"`
	Status       SessionStatus   `json:"status"`
	Operator     string          `json:"operator"`
}

// IsOpen reports whether the session still accepts movements.
func (s TillSession) IsOpen() bool {
	return s.Status == SessionOpen
}

// SessionFilter narrows a session listing. OpenedFrom and OpenedTo bound the
// opening instant as [OpenedFrom, OpenedTo); nil means unbounded.
type SessionFilter struct {
	Status     *SessionStatus
	OpenedFrom *time.Time
	OpenedTo   *time.Time
	Limit      int
	NextToken  *string
}
