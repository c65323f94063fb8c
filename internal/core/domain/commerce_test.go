package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreditStatus(t *testing.T) {
	st, err := domain.ParseCreditStatus(" partial ")
	require.NoError(t, err)
	assert.Equal(t, domain.CreditPartial, st)

	_, err = domain.ParseCreditStatus("OUTSTANDING")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestParsePurchaseKind(t *testing.T) {
	k, err := domain.ParsePurchaseKind("supplies")
	require.NoError(t, err)
	assert.Equal(t, domain.PurchaseSupplies, k)

	_, err = domain.ParsePurchaseKind("")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreditAccountIsOverdue(t *testing.T) {
	now := time.Date(2024, 4, 4, 12, 0, 0, 0, time.UTC)
	acct := domain.CreditAccount{Status: domain.CreditPending, OpenedAt: now.Add(-domain.CreditOverdueAfter)}
	assert.True(t, acct.IsOverdue(now))

	acct.OpenedAt = now.Add(-domain.CreditOverdueAfter + time.Second)
	assert.False(t, acct.IsOverdue(now))

	acct.OpenedAt = now.AddDate(0, -3, 0)
	acct.Status = domain.CreditPaid
	assert.False(t, acct.IsOverdue(now))
}

func TestSummarizeCredits(t *testing.T) {
	now := time.Date(2024, 4, 4, 12, 0, 0, 0, time.UTC)
	accounts := []domain.CreditAccount{
		{Customer: "Don Julio", Outstanding: dec("40"), Status: domain.CreditPartial, OpenedAt: now.AddDate(0, 0, -45)},
		{Customer: "don julio ", Outstanding: dec("15"), Status: domain.CreditPending, OpenedAt: now.AddDate(0, 0, -2)},
		{Customer: "Doña Rosa", Outstanding: dec("0"), Status: domain.CreditPaid, OpenedAt: now.AddDate(0, 0, -60)},
	}

	stats := domain.SummarizeCredits(accounts, dec("25"), now)

	assert.Equal(t, 2, stats.PendingCount)
	assert.True(t, stats.PendingTotal.Equal(dec("55")))
	assert.Equal(t, 1, stats.OverdueCount)
	assert.True(t, stats.OverdueTotal.Equal(dec("40")))
	assert.True(t, stats.CollectedThisMonth.Equal(dec("25")))
	assert.Equal(t, 1, stats.Customers)

	empty := domain.SummarizeCredits(nil, dec("0"), now)
	assert.Zero(t, empty.PendingCount)
	assert.True(t, empty.PendingTotal.IsZero())
	assert.Zero(t, empty.Customers)
}

func TestSummarizeCustomer(t *testing.T) {
	summary := domain.SummarizeCustomer("Don Julio", []domain.CreditAccount{
		{Outstanding: dec("40"), Status: domain.CreditPartial},
		{Outstanding: dec("0"), Status: domain.CreditPaid},
		{Outstanding: dec("15"), Status: domain.CreditPending},
	})
	assert.Equal(t, "Don Julio", summary.Customer)
	assert.Len(t, summary.Credits, 3)
	assert.True(t, summary.Owed.Equal(dec("55")))
}
