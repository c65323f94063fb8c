package domain_test

import (
	"math/rand"
	"testing"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mv(dir domain.Direction, amount string, method *domain.PaymentMethod, ref *domain.Reference) domain.Movement {
	return domain.Movement{SessionID: 1, Direction: dir, Concept: "x", Amount: dec(amount), Method: method, Reference: ref}
}

func TestSummarize_ReconciliationScenario(t *testing.T) {
	session := domain.TillSession{SessionID: 1, OpeningFloat: dec("100.00"), Status: domain.SessionOpen}
	movements := []domain.Movement{
		mv(domain.DirectionIn, "250.00", domain.MethodPtr(domain.MethodCash), domain.RefTo(domain.RefSale, 1)),
		mv(domain.DirectionIn, "80.00", domain.MethodPtr(domain.MethodQR), domain.RefTo(domain.RefSale, 2)),
		mv(domain.DirectionOut, "30.00", domain.MethodPtr(domain.MethodCash), &domain.Reference{Kind: domain.RefManualWithdrawal}),
	}

	s := domain.Summarize(session, movements)
	assert.True(t, s.ExpectedCash.Equal(dec("320.00")), "expected cash %s", s.ExpectedCash)
	assert.True(t, s.QRIn.Equal(dec("80.00")))
	assert.True(t, s.TotalIn.Equal(dec("330.00")))
	assert.True(t, s.TotalOut.Equal(dec("30.00")))
	assert.True(t, s.Balance.Equal(dec("300.00")))
	assert.Equal(t, 2, s.SaleCount)
	assert.Equal(t, 1, s.WithdrawalCount)
	assert.Equal(t, 3, s.MovementCount)

	totals := s.Freeze(dec("320.00"))
	assert.True(t, totals.Variance.IsZero())
	assert.True(t, totals.CountedCash.Equal(dec("320.00")))
	assert.True(t, totals.CashIn.Equal(dec("250.00")))
	assert.True(t, totals.CashOut.Equal(dec("30.00")))
}

func TestSummarize_NoMovements(t *testing.T) {
	session := domain.TillSession{SessionID: 7, OpeningFloat: dec("50")}
	s := domain.Summarize(session, nil)
	assert.Equal(t, int64(7), s.SessionID)
	assert.True(t, s.ExpectedCash.Equal(dec("50")))
	assert.True(t, s.TotalIn.IsZero())
	assert.True(t, s.TotalOut.IsZero())
	assert.Zero(t, s.MovementCount)
}

func TestSummarize_PartitionsByMethod(t *testing.T) {
	session := domain.TillSession{SessionID: 1, OpeningFloat: dec("0")}
	movements := []domain.Movement{
		mv(domain.DirectionIn, "10", domain.MethodPtr(domain.MethodMixed), nil),
		mv(domain.DirectionIn, "20", domain.MethodPtr(domain.MethodCredit), nil),
		mv(domain.DirectionIn, "5", domain.MethodPtr(domain.MethodOther), nil),
		mv(domain.DirectionOut, "7", domain.MethodPtr(domain.MethodQR), domain.RefTo(domain.RefPurchase, 3)),
		mv(domain.DirectionOut, "3", nil, nil),
		mv(domain.DirectionOut, "40", domain.MethodPtr(domain.MethodCredit), domain.RefTo(domain.RefPurchase, 4)),
	}

	s := domain.Summarize(session, movements)
	assert.True(t, s.MixedIn.Equal(dec("10")))
	assert.True(t, s.CreditIn.Equal(dec("20")))
	assert.True(t, s.OtherIn.Equal(dec("5")))
	assert.True(t, s.OtherOut.Equal(dec("50")))
	assert.True(t, s.CashOut.IsZero())
	// Nothing here touched cash, so the drawer still holds the float.
	assert.True(t, s.ExpectedCash.IsZero())
	assert.Equal(t, 2, s.PurchaseCount)
}

func TestSummarize_OrderIndependent(t *testing.T) {
	session := domain.TillSession{SessionID: 1, OpeningFloat: dec("12.34")}
	var movements []domain.Movement
	for i := 0; i < 50; i++ {
		dir := domain.DirectionIn
		if i%3 == 0 {
			dir = domain.DirectionOut
		}
		movements = append(movements, mv(dir, decimal.NewFromInt(int64(i+1)).Div(decimal.NewFromInt(10)).String(), domain.MethodPtr(domain.MethodCash), nil))
	}
	want := domain.Summarize(session, movements)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := append([]domain.Movement(nil), movements...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := domain.Summarize(session, shuffled)
		assert.True(t, want.ExpectedCash.Equal(got.ExpectedCash))
		assert.True(t, want.CashIn.Equal(got.CashIn))
		assert.True(t, want.CashOut.Equal(got.CashOut))
	}
}

func TestSummarize_DecimalIsExact(t *testing.T) {
	session := domain.TillSession{SessionID: 1, OpeningFloat: dec("0")}
	var movements []domain.Movement
	for i := 0; i < 10; i++ {
		movements = append(movements, mv(domain.DirectionIn, "0.10", domain.MethodPtr(domain.MethodCash), nil))
	}
	s := domain.Summarize(session, movements)
	assert.Equal(t, "1", s.ExpectedCash.String())
}
