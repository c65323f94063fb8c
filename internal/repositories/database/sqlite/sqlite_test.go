package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/core/services"
	"github.com/SscSPs/licoreria_pos/internal/dto"
	"github.com/SscSPs/licoreria_pos/internal/repositories/database/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type SQLiteStoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *sqlite.Store
	now   time.Time

	till           portssvc.TillSvcFacade
	movement       portssvc.MovementSvcFacade
	reconciliation portssvc.ReconciliationSvc
	commerce       portssvc.CommerceSvcFacade
}

func (s *SQLiteStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	store, err := sqlite.New(s.ctx, filepath.Join(s.T().TempDir(), "till.db"))
	s.Require().NoError(err)
	s.store = store

	s.now = time.Date(2024, 3, 8, 9, 0, 0, 0, time.UTC)
	clock := services.WithClock(func() time.Time { return s.now })
	s.till = services.NewTillService(store, clock)
	s.movement = services.NewMovementService(store, clock)
	s.reconciliation = services.NewReconciliationService(store, clock)
	s.commerce = services.NewCommerceService(store, 5, clock)
}

func (s *SQLiteStoreTestSuite) TearDownTest() {
	s.Require().NoError(s.store.Close())
}

func TestSQLiteStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SQLiteStoreTestSuite))
}

func (s *SQLiteStoreTestSuite) TestLedgerRoundTrip() {
	sessionID, err := s.till.OpenSession(s.ctx, dec("100"), "ana")
	s.Require().NoError(err)

	_, err = s.movement.RecordMovement(s.ctx, sessionID, domain.MovementDraft{
		Direction: domain.DirectionIn,
		Concept:   "Sale",
		Amount:    dec("250.50"),
		Method:    domain.MethodPtr(domain.MethodCash),
		Reference: domain.RefTo(domain.RefSale, 1),
	})
	s.Require().NoError(err)
	_, err = s.movement.RecordWithdrawal(s.ctx, dec("30"), "Petty cash", "ana")
	s.Require().NoError(err)

	movements, err := s.store.ListMovementsBySession(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Require().Len(movements, 2)
	s.Equal("Petty cash", movements[0].Concept, "newest first")
	s.Nil(movements[0].Reference.ID)
	s.True(movements[1].Amount.Equal(dec("250.50")))
	s.Equal(int64(1), *movements[1].Reference.ID)

	result, err := s.reconciliation.CloseSession(s.ctx, sessionID, dec("320.50"), "ana")
	s.Require().NoError(err)
	s.True(result.Summary.ExpectedCash.Equal(dec("320.50")))

	stored, err := s.store.GetSession(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Equal(domain.SessionClosed, stored.Status)
	s.Require().NotNil(stored.ClosedAt)
	s.True(stored.ClosedAt.Equal(s.now))
	s.True(stored.Totals.Variance.IsZero())
	s.True(stored.Totals.CountedCash.Equal(dec("320.50")))

	_, err = s.movement.RecordMovement(s.ctx, sessionID, domain.MovementDraft{
		Direction: domain.DirectionIn, Concept: "Late", Amount: dec("1"),
	})
	s.ErrorIs(err, apperrors.ErrNoOpenSession)
}

func (s *SQLiteStoreTestSuite) TestSingleOpenSessionIsEnforcedByTheIndex() {
	open := domain.TillSession{OpenedAt: s.now, OpeningFloat: dec("0"), Status: domain.SessionOpen, Operator: "ana"}

	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		_, err := tx.InsertSession(ctx, open)
		return err
	})
	s.Require().NoError(err)

	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		_, err := tx.InsertSession(ctx, open)
		return err
	})
	s.ErrorIs(err, apperrors.ErrSessionAlreadyOpen)
}

func (s *SQLiteStoreTestSuite) TestFailedUnitOfWorkRollsBack() {
	err := s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		if _, err := tx.InsertSession(ctx, domain.TillSession{
			OpenedAt: s.now, OpeningFloat: dec("10"), Status: domain.SessionOpen, Operator: "ana",
		}); err != nil {
			return err
		}
		return apperrors.ErrValidation
	})
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.store.GetOpenSession(s.ctx)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *SQLiteStoreTestSuite) TestListSessionsPages() {
	for i := 0; i < 3; i++ {
		id, err := s.till.OpenSession(s.ctx, dec("0"), "ana")
		s.Require().NoError(err)
		_, err = s.reconciliation.CloseSession(s.ctx, id, dec("0"), "ana")
		s.Require().NoError(err)
		s.now = s.now.Add(time.Hour)
	}

	closed := domain.SessionClosed
	page, next, err := s.store.ListSessions(s.ctx, domain.SessionFilter{Status: &closed, Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Require().NotNil(next)
	s.Equal(int64(3), page[0].SessionID)

	rest, next, err := s.store.ListSessions(s.ctx, domain.SessionFilter{Status: &closed, Limit: 2, NextToken: next})
	s.Require().NoError(err)
	s.Nil(next)
	s.Require().Len(rest, 1)
	s.Equal(int64(1), rest[0].SessionID)
}

func (s *SQLiteStoreTestSuite) TestCommerceRoundTrip() {
	product, err := s.commerce.CreateProduct(s.ctx, dto.CreateProductRequest{
		Name: "Singani", Category: "Spirits", Price: dec("85.00"), Stock: 10,
	})
	s.Require().NoError(err)
	s.Equal(5, product.MinStock)

	_, err = s.commerce.CreateProduct(s.ctx, dto.CreateProductRequest{Name: "singani", Price: dec("1")})
	s.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = s.till.OpenSession(s.ctx, dec("50"), "ana")
	s.Require().NoError(err)

	receipt, err := s.commerce.RegisterSale(s.ctx, dto.RegisterSaleRequest{
		Items:    []dto.SaleItemRequest{{ProductID: product.ProductID, Quantity: 2}},
		Method:   "credit",
		Customer: "Don Pedro",
	}, "ana")
	s.Require().NoError(err)
	s.Require().NotNil(receipt.Credit)

	day := domain.DateRange{From: s.now.Add(-time.Hour), To: s.now.Add(time.Hour)}
	sales, err := s.store.ListSales(s.ctx, day)
	s.Require().NoError(err)
	s.Require().Len(sales, 1)
	s.Require().Len(sales[0].Items, 1)
	s.True(sales[0].Total.Equal(dec("170")))
	s.Equal(domain.MethodCredit, sales[0].Method)

	stocked, err := s.store.GetProduct(s.ctx, product.ProductID)
	s.Require().NoError(err)
	s.Equal(8, stocked.Stock)

	_, err = s.commerce.RegisterCreditPayment(s.ctx, receipt.Credit.CreditID, dto.CreditPaymentRequest{Amount: dec("70")}, "ana")
	s.Require().NoError(err)

	outstanding, err := s.store.ListOutstandingCredits(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(outstanding, 1)
	s.Equal(domain.CreditPartial, outstanding[0].Status)
	s.True(outstanding[0].Outstanding.Equal(dec("100")))

	payments, err := s.store.ListCreditPayments(s.ctx, day)
	s.Require().NoError(err)
	s.Len(payments, 1)
}

func (s *SQLiteStoreTestSuite) TestListSalesLoadsItemsBeyondOneBatch() {
	product, err := s.commerce.CreateProduct(s.ctx, dto.CreateProductRequest{Name: "Paceña", Price: dec("15.00"), Stock: 0})
	s.Require().NoError(err)

	const count = 1203
	err = s.store.WithinTx(s.ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		sessionID, err := tx.InsertSession(ctx, domain.TillSession{
			OpenedAt: s.now, OpeningFloat: dec("0"), Status: domain.SessionOpen, Operator: "ana",
		})
		if err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			qty := i%4 + 1
			total := dec("15.00").Mul(decimal.NewFromInt(int64(qty)))
			if _, err := tx.InsertSale(ctx, domain.Sale{
				SessionID:   sessionID,
				Total:       total,
				Method:      domain.MethodCash,
				CashAmount:  total,
				Items:       []domain.SaleItem{{ProductID: product.ProductID, Quantity: qty, UnitPrice: dec("15.00"), Subtotal: total}},
				AuditFields: domain.AuditFields{CreatedAt: s.now.Add(time.Duration(i) * time.Second), CreatedBy: "ana"},
			}); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)

	sales, err := s.store.ListSales(s.ctx, domain.DateRange{From: s.now, To: s.now.Add(24 * time.Hour)})
	s.Require().NoError(err)
	s.Require().Len(sales, count)
	for i, sale := range sales {
		s.Require().Len(sale.Items, 1, "sale %d", sale.SaleID)
		s.Equal(i%4+1, sale.Items[0].Quantity)
		s.True(sale.Items[0].Subtotal.Equal(sale.Total))
	}
}

func (s *SQLiteStoreTestSuite) TestPurchaseAndPaymentWithTillClosed() {
	product, err := s.commerce.CreateProduct(s.ctx, dto.CreateProductRequest{Name: "Singani", Price: dec("85.00"), Stock: 4})
	s.Require().NoError(err)
	sessionID, err := s.till.OpenSession(s.ctx, dec("50"), "ana")
	s.Require().NoError(err)
	sale, err := s.commerce.RegisterSale(s.ctx, dto.RegisterSaleRequest{
		Items:  []dto.SaleItemRequest{{ProductID: product.ProductID, Quantity: 1}},
		Method: "credit", Customer: "Don Pedro", CustomerPhone: "71234567",
	}, "ana")
	s.Require().NoError(err)
	_, err = s.reconciliation.CloseSession(s.ctx, sessionID, dec("50"), "ana")
	s.Require().NoError(err)

	purchase, err := s.commerce.RegisterPurchase(s.ctx, dto.RegisterPurchaseRequest{
		Kind: "goods", Method: "cash", Total: dec("300.00"), Supplier: "Kohlberg",
		Items: []dto.PurchaseItemRequest{{ProductID: product.ProductID, Quantity: 6, UnitCost: dec("50.00")}},
	}, "ana")
	s.Require().NoError(err)
	s.Nil(purchase.Movement)
	payment, err := s.commerce.RegisterCreditPayment(s.ctx, sale.Credit.CreditID, dto.CreditPaymentRequest{Amount: dec("85")}, "ana")
	s.Require().NoError(err)
	s.Nil(payment.Movement)
	s.Equal(domain.CreditPaid, payment.Credit.Status)

	stored, err := s.commerce.GetPurchase(s.ctx, purchase.Purchase.PurchaseID)
	s.Require().NoError(err)
	s.Nil(stored.SessionID)
	s.Require().Len(stored.Items, 1)
	s.Equal(6, stored.Items[0].Quantity)

	found, err := s.commerce.ListPurchases(s.ctx, dto.PurchaseListParams{Kind: "GOODS", Search: "kohl"})
	s.Require().NoError(err)
	s.Require().Len(found, 1)
	s.Empty(found[0].Items)

	payments, err := s.store.ListCreditPayments(s.ctx, domain.DateRange{From: s.now.Add(-time.Hour), To: s.now.Add(time.Hour)})
	s.Require().NoError(err)
	s.Require().Len(payments, 1)
	s.Nil(payments[0].SessionID)

	credits, err := s.commerce.ListCredits(s.ctx, dto.CreditListParams{Status: "paid", Search: "7123"})
	s.Require().NoError(err)
	s.Require().Len(credits, 1)
	s.Equal("71234567", credits[0].CustomerPhone)

	stocked, err := s.store.GetProduct(s.ctx, product.ProductID)
	s.Require().NoError(err)
	s.Equal(9, stocked.Stock)

	movements, err := s.store.ListMovementsBySession(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Empty(movements)
}

func (s *SQLiteStoreTestSuite) requireFrozenTotals(sessionID int64) domain.SessionTotals {
	stored, err := s.store.GetSession(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Require().Equal(domain.SessionClosed, stored.Status)
	movements, err := s.store.ListMovementsBySession(s.ctx, sessionID)
	s.Require().NoError(err)

	want := domain.Summarize(*stored, movements).Freeze(stored.Totals.CountedCash)
	s.True(want.CashIn.Equal(stored.Totals.CashIn), "cash in %s != %s", want.CashIn, stored.Totals.CashIn)
	s.True(want.CashOut.Equal(stored.Totals.CashOut), "cash out %s != %s", want.CashOut, stored.Totals.CashOut)
	s.True(want.TotalIn.Equal(stored.Totals.TotalIn), "total in %s != %s", want.TotalIn, stored.Totals.TotalIn)
	s.True(want.TotalOut.Equal(stored.Totals.TotalOut), "total out %s != %s", want.TotalOut, stored.Totals.TotalOut)
	s.True(want.ExpectedCash.Equal(stored.Totals.ExpectedCash), "expected %s != %s", want.ExpectedCash, stored.Totals.ExpectedCash)
	s.True(want.Variance.Equal(stored.Totals.Variance), "variance %s != %s", want.Variance, stored.Totals.Variance)
	return stored.Totals
}

func (s *SQLiteStoreTestSuite) TestCloseRacingWritesFreezesPersistedMovements() {
	product, err := s.commerce.CreateProduct(s.ctx, dto.CreateProductRequest{Name: "Paceña", Price: dec("15.00"), Stock: 100})
	s.Require().NoError(err)
	sessionID, err := s.till.OpenSession(s.ctx, dec("100.00"), "ana")
	s.Require().NoError(err)

	const writers = 18
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		other    []error
	)
	start := make(chan struct{})
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, apperrors.ErrNoOpenSession):
		default:
			other = append(other, err)
		}
	}
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if i%2 == 0 {
				_, err := s.movement.RecordWithdrawal(s.ctx, dec("1.25"), "", "ana")
				record(err)
				return
			}
			_, err := s.commerce.RegisterSale(s.ctx, dto.RegisterSaleRequest{
				Method: "cash",
				Items:  []dto.SaleItemRequest{{ProductID: product.ProductID, Quantity: 1}},
			}, "ana")
			record(err)
		}(i)
	}
	var closeErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-start
		_, closeErr = s.reconciliation.CloseSession(s.ctx, sessionID, dec("150.00"), "ana")
	}()
	close(start)
	wg.Wait()

	s.Require().NoError(closeErr)
	s.Empty(other)
	movements, err := s.store.ListMovementsBySession(s.ctx, sessionID)
	s.Require().NoError(err)
	s.Len(movements, accepted)
	s.requireFrozenTotals(sessionID)
}

func (s *SQLiteStoreTestSuite) TestClosedTotalsSurviveLaterActivity() {
	first, err := s.till.OpenSession(s.ctx, dec("100.00"), "ana")
	s.Require().NoError(err)
	_, err = s.movement.RecordWithdrawal(s.ctx, dec("20.00"), "Bank deposit", "ana")
	s.Require().NoError(err)
	_, err = s.reconciliation.CloseSession(s.ctx, first, dec("75.00"), "ana")
	s.Require().NoError(err)
	frozen := s.requireFrozenTotals(first)

	s.now = s.now.Add(24 * time.Hour)
	second, err := s.till.OpenSession(s.ctx, dec("75.00"), "ana")
	s.Require().NoError(err)
	_, err = s.movement.RecordMovement(s.ctx, second, domain.MovementDraft{
		Direction: domain.DirectionIn, Concept: "Sale #9", Amount: dec("40.00"), Method: domain.MethodPtr(domain.MethodCash),
	})
	s.Require().NoError(err)
	_, err = s.movement.RecordWithdrawal(s.ctx, dec("10.00"), "", "ana")
	s.Require().NoError(err)
	_, err = s.movement.RecordMovement(s.ctx, first, domain.MovementDraft{
		Direction: domain.DirectionIn, Concept: "Late", Amount: dec("1.00"),
	})
	s.ErrorIs(err, apperrors.ErrNoOpenSession)
	_, err = s.reconciliation.CloseSession(s.ctx, first, dec("0"), "ana")
	s.ErrorIs(err, apperrors.ErrNoOpenSession)

	stored, err := s.store.GetSession(s.ctx, first)
	s.Require().NoError(err)
	s.True(frozen.ExpectedCash.Equal(stored.Totals.ExpectedCash))
	s.True(frozen.CountedCash.Equal(stored.Totals.CountedCash))
	s.True(frozen.Variance.Equal(stored.Totals.Variance))
	s.True(stored.Totals.ExpectedCash.Equal(dec("80")))
	s.True(stored.Totals.Variance.Equal(dec("-5")))
	s.requireFrozenTotals(first)
}
