package domain

import (
	"github.com/shopspring/decimal"
)

// Summary aggregates the movements of one session by direction and method.
type Summary struct {
	SessionID    int64           `json:"sessionID"`
	OpeningFloat decimal.Decimal `json:"openingFloat"`

	CashIn   decimal.Decimal `json:"cashIn"`
	QRIn     decimal.Decimal `json:"qrIn"`
	MixedIn  decimal.Decimal `json:"mixedIn"`
	CreditIn decimal.Decimal `json:"creditIn"`
	OtherIn  decimal.Decimal `json:"otherIn"`
	CashOut  decimal.Decimal `json:"cashOut"`
	OtherOut decimal.Decimal `json:"otherOut"`

	TotalIn  decimal.Decimal `json:"totalIn"`
	TotalOut decimal.Decimal `json:"totalOut"`
	// Balance is TotalIn - TotalOut over every method.
	Balance decimal.Decimal `json:"balance"`

	ExpectedCash decimal.Decimal `json:"expectedCash"`

	MovementCount      int `json:"movementCount"`
	SaleCount          int `json:"saleCount"`
	PurchaseCount      int `json:"purchaseCount"`
	CreditPaymentCount int `json:"creditPaymentCount"`
	WithdrawalCount    int `json:"withdrawalCount"`
}

// Summarize folds the movements of a session. Addition is exact, so the result
// does not depend on movement order.
func Summarize(session TillSession, movements []Movement) Summary {
	s := Summary{
		SessionID:    session.SessionID,
		OpeningFloat: session.OpeningFloat,
	}

	for _, m := range movements {
		s.MovementCount++
		switch m.Direction {
		case DirectionIn:
			s.TotalIn = s.TotalIn.Add(m.Amount)
			switch {
			case m.HasMethod(MethodCash):
				s.CashIn = s.CashIn.Add(m.Amount)
			case m.HasMethod(MethodQR):
				s.QRIn = s.QRIn.Add(m.Amount)
			case m.HasMethod(MethodMixed):
				s.MixedIn = s.MixedIn.Add(m.Amount)
			case m.HasMethod(MethodCredit):
				s.CreditIn = s.CreditIn.Add(m.Amount)
			default:
				s.OtherIn = s.OtherIn.Add(m.Amount)
			}
		case DirectionOut:
			s.TotalOut = s.TotalOut.Add(m.Amount)
			if m.HasMethod(MethodCash) {
				s.CashOut = s.CashOut.Add(m.Amount)
			} else {
				s.OtherOut = s.OtherOut.Add(m.Amount)
			}
		}

		if m.Reference == nil {
			continue
		}
		switch m.Reference.Kind {
		case RefSale:
			s.SaleCount++
		case RefPurchase:
			s.PurchaseCount++
		case RefCreditPayment:
			s.CreditPaymentCount++
		case RefManualWithdrawal:
			s.WithdrawalCount++
		}
	}

	s.Balance = s.TotalIn.Sub(s.TotalOut)
	s.ExpectedCash = ExpectedCash(session.OpeningFloat, s.CashIn, s.CashOut)
	return s
}

// ExpectedCash is the opening float plus cash taken in minus cash paid out.
func ExpectedCash(openingFloat, cashIn, cashOut decimal.Decimal) decimal.Decimal {
	return openingFloat.Add(cashIn).Sub(cashOut)
}

// Freeze turns a summary into the totals stored on a closed session.
func (s Summary) Freeze(countedCash decimal.Decimal) SessionTotals {
	return SessionTotals{
		CashIn:       s.CashIn,
		CashOut:      s.CashOut,
		QRIn:         s.QRIn,
		CreditIn:     s.CreditIn,
		TotalIn:      s.TotalIn,
		TotalOut:     s.TotalOut,
		ExpectedCash: s.ExpectedCash,
		CountedCash:  countedCash,
		Variance:     countedCash.Sub(s.ExpectedCash),
	}
}

// CloseResult is returned to the operator after closing the till.
type CloseResult struct {
	Session TillSession   `json:"session"`
	Summary Summary       `json:"summary"`
	Totals  SessionTotals `json:"totals"`
}

// SessionDetail is everything the session detail view shows.
type SessionDetail struct {
	Session   TillSession `json:"session"`
	Summary   Summary     `json:"summary"`
	Movements []Movement  `json:"movements"`
}
