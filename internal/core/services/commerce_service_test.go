package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/SscSPs/licoreria_pos/internal/dto"
	"github.com/stretchr/testify/suite"
)

type CommerceServiceTestSuite struct {
	suite.Suite
	f       *fixture
	ctx     context.Context
	rum     *domain.Product
	beer    *domain.Product
	session int64
}

func (suite *CommerceServiceTestSuite) SetupTest() {
	suite.f = newFixture(time.Date(2024, 3, 4, 13, 0, 0, 0, time.UTC))
	suite.ctx = context.Background()

	var err error
	suite.rum, err = suite.f.commerce.CreateProduct(suite.ctx, dto.CreateProductRequest{
		Name: "Ron Abuelo", Category: "Rum", Price: dec("125.00"), Stock: 10,
	})
	suite.Require().NoError(err)
	suite.beer, err = suite.f.commerce.CreateProduct(suite.ctx, dto.CreateProductRequest{
		Name: "Paceña 620ml", Category: "Beer", Price: dec("15.00"), Stock: 48,
	})
	suite.Require().NoError(err)

	suite.session, err = suite.f.till.OpenSession(suite.ctx, dec("100"), "ana")
	suite.Require().NoError(err)
	suite.f.events.reset()
}

func (suite *CommerceServiceTestSuite) stockOf(id int64) int {
	p, err := suite.f.store.GetProduct(suite.ctx, id)
	suite.Require().NoError(err)
	return p.Stock
}

func (suite *CommerceServiceTestSuite) TestCreateProduct_DefaultMinStock() {
	suite.Equal(3, suite.rum.MinStock)

	zero := 0
	p, err := suite.f.commerce.CreateProduct(suite.ctx, dto.CreateProductRequest{Name: "Hielo", Price: dec("5"), MinStock: &zero})
	suite.Require().NoError(err)
	suite.Equal(0, p.MinStock)

	_, err = suite.f.commerce.CreateProduct(suite.ctx, dto.CreateProductRequest{Name: " ", Price: dec("5")})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CommerceServiceTestSuite) TestRegisterSale_Cash() {
	receipt, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "cash",
		Items: []dto.SaleItemRequest{
			{ProductID: suite.rum.ProductID, Quantity: 2},
			{ProductID: suite.beer.ProductID, Quantity: 1},
		},
	}, "ana")

	suite.Require().NoError(err)
	suite.True(receipt.Sale.Total.Equal(dec("265")))
	suite.Equal(suite.session, receipt.Sale.SessionID)
	suite.Nil(receipt.Credit)
	suite.Require().Len(receipt.Movements, 1)
	m := receipt.Movements[0]
	suite.Equal(domain.DirectionIn, m.Direction)
	suite.True(m.HasMethod(domain.MethodCash))
	suite.True(m.Amount.Equal(dec("265")))
	suite.Equal(domain.RefSale, m.Reference.Kind)
	suite.Equal(receipt.Sale.SaleID, *m.Reference.ID)
	suite.Equal("Sale #1", m.Concept)

	suite.Equal(8, suite.stockOf(suite.rum.ProductID))
	suite.Equal(47, suite.stockOf(suite.beer.ProductID))
	suite.Equal([]domain.EventType{domain.EventSaleRegistered, domain.EventMovementRecorded}, suite.f.events.types())
}

func (suite *CommerceServiceTestSuite) TestRegisterSale_UnitPriceOverride() {
	price := dec("110.00")
	receipt, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "QR",
		Items:  []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 1, UnitPrice: &price}},
	}, "ana")

	suite.Require().NoError(err)
	suite.True(receipt.Sale.Total.Equal(price))
	suite.True(receipt.Sale.QRAmount.Equal(price))
	suite.True(receipt.Movements[0].HasMethod(domain.MethodQR))
}

func (suite *CommerceServiceTestSuite) TestRegisterSale_MixedSplitsIntoTwoMovements() {
	receipt, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method:     "MIXED",
		CashAmount: dec("100"),
		QRAmount:   dec("25"),
		Items:      []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 1}},
	}, "ana")

	suite.Require().NoError(err)
	suite.Require().Len(receipt.Movements, 2)
	suite.Equal("Sale #1 - Cash", receipt.Movements[0].Concept)
	suite.True(receipt.Movements[0].Amount.Equal(dec("100")))
	suite.Equal("Sale #1 - QR", receipt.Movements[1].Concept)
	suite.True(receipt.Movements[1].Amount.Equal(dec("25")))

	summary, err := suite.f.reconciliation.Summarize(suite.ctx, suite.session)
	suite.Require().NoError(err)
	suite.True(summary.ExpectedCash.Equal(dec("200")))
	suite.True(summary.QRIn.Equal(dec("25")))
	suite.Equal(2, summary.SaleCount)
}

func (suite *CommerceServiceTestSuite) TestRegisterSale_MixedSplitMismatchWritesNothing() {
	_, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method:     "MIXED",
		CashAmount: dec("100"),
		QRAmount:   dec("20"),
		Items:      []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 1}},
	}, "ana")

	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
	suite.Equal(10, suite.stockOf(suite.rum.ProductID))
	movements, err := suite.f.movement.ListMovements(suite.ctx, suite.session)
	suite.Require().NoError(err)
	suite.Empty(movements)
	suite.Empty(suite.f.events.types())
}

func (suite *CommerceServiceTestSuite) TestCreditSaleThenPayment() {
	sale, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method:   "CREDIT",
		Customer: "Don Julio",
		Items:    []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 4}},
	}, "ana")
	suite.Require().NoError(err)
	suite.True(sale.Sale.Total.Equal(dec("500")))
	suite.Empty(sale.Movements)
	suite.Require().NotNil(sale.Credit)
	suite.Equal(domain.CreditPending, sale.Credit.Status)
	suite.True(sale.Credit.Outstanding.Equal(dec("500")))

	movements, err := suite.f.movement.ListMovements(suite.ctx, suite.session)
	suite.Require().NoError(err)
	suite.Empty(movements)

	payment, err := suite.f.commerce.RegisterCreditPayment(suite.ctx, sale.Credit.CreditID, dto.CreditPaymentRequest{
		Amount: dec("200.00"),
	}, "ana")
	suite.Require().NoError(err)
	suite.Equal(domain.CreditPartial, payment.Credit.Status)
	suite.True(payment.Credit.Outstanding.Equal(dec("300")))
	suite.Equal(domain.MethodCash, payment.Payment.Method)

	suite.Require().NotNil(payment.Movement)
	suite.Equal(&suite.session, payment.Payment.SessionID)
	m := payment.Movement
	suite.Equal(domain.DirectionIn, m.Direction)
	suite.True(m.HasMethod(domain.MethodCash))
	suite.True(m.Amount.Equal(dec("200")))
	suite.Equal(domain.RefCreditPayment, m.Reference.Kind)
	suite.Equal(payment.Payment.PaymentID, *m.Reference.ID)
	suite.Equal("Credit payment #1", m.Concept)

	movements, err = suite.f.movement.ListMovements(suite.ctx, suite.session)
	suite.Require().NoError(err)
	suite.Len(movements, 1)

	summary, err := suite.f.reconciliation.Summarize(suite.ctx, suite.session)
	suite.Require().NoError(err)
	suite.True(summary.ExpectedCash.Equal(dec("300")))

	final, err := suite.f.commerce.RegisterCreditPayment(suite.ctx, sale.Credit.CreditID, dto.CreditPaymentRequest{
		Amount: dec("300"), Method: "qr",
	}, "ana")
	suite.Require().NoError(err)
	suite.Equal(domain.CreditPaid, final.Credit.Status)
	suite.True(final.Credit.Outstanding.IsZero())

	outstanding, err := suite.f.commerce.ListCredits(suite.ctx, dto.CreditListParams{Status: "outstanding"})
	suite.Require().NoError(err)
	suite.Empty(outstanding)
}

func (suite *CommerceServiceTestSuite) TestCreditSaleNeedsCustomer() {
	_, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "CREDIT",
		Items:  []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 1}},
	}, "ana")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CommerceServiceTestSuite) TestCreditPayment_Overpayment() {
	sale, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "CREDIT", Customer: "Don Julio",
		Items: []dto.SaleItemRequest{{ProductID: suite.beer.ProductID, Quantity: 2}},
	}, "ana")
	suite.Require().NoError(err)

	_, err = suite.f.commerce.RegisterCreditPayment(suite.ctx, sale.Credit.CreditID, dto.CreditPaymentRequest{Amount: dec("30.01")}, "ana")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = suite.f.commerce.RegisterCreditPayment(suite.ctx, sale.Credit.CreditID, dto.CreditPaymentRequest{Amount: dec("5"), Method: "CREDIT"}, "ana")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.commerce.RegisterCreditPayment(suite.ctx, 99, dto.CreditPaymentRequest{Amount: dec("5")}, "ana")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	account, err := suite.f.commerce.GetCreditAccount(suite.ctx, sale.Credit.CreditID)
	suite.Require().NoError(err)
	suite.True(account.Paid.IsZero())
}

func (suite *CommerceServiceTestSuite) TestCreditPayment_TillClosedRecordsNoMovement() {
	sale, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "CREDIT", Customer: "Don Julio",
		Items: []dto.SaleItemRequest{{ProductID: suite.beer.ProductID, Quantity: 2}},
	}, "ana")
	suite.Require().NoError(err)
	closed, err := suite.f.reconciliation.CloseSession(suite.ctx, suite.session, dec("100"), "ana")
	suite.Require().NoError(err)
	suite.f.events.reset()

	payment, err := suite.f.commerce.RegisterCreditPayment(suite.ctx, sale.Credit.CreditID, dto.CreditPaymentRequest{Amount: dec("10")}, "ana")

	suite.Require().NoError(err)
	suite.Nil(payment.Payment.SessionID)
	suite.Nil(payment.Movement)
	suite.Equal(domain.CreditPartial, payment.Credit.Status)
	suite.True(payment.Credit.Outstanding.Equal(dec("20")))
	suite.Equal([]domain.EventType{domain.EventCreditPaymentRegistered}, suite.f.events.types())

	movements, err := suite.f.movement.ListMovements(suite.ctx, suite.session)
	suite.Require().NoError(err)
	suite.Empty(movements)
	session, err := suite.f.store.GetSession(suite.ctx, suite.session)
	suite.Require().NoError(err)
	suite.Equal(closed.Totals, session.Totals)
}

func (suite *CommerceServiceTestSuite) TestRegisterPurchase_TillClosedRecordsNoMovement() {
	_, err := suite.f.reconciliation.CloseSession(suite.ctx, suite.session, dec("100"), "ana")
	suite.Require().NoError(err)
	suite.f.events.reset()

	receipt, err := suite.f.commerce.RegisterPurchase(suite.ctx, dto.RegisterPurchaseRequest{
		Kind: "GOODS", Method: "CASH", Total: dec("65.00"), Supplier: "CBN",
		Items: []dto.PurchaseItemRequest{{ProductID: suite.beer.ProductID, Quantity: 10, UnitCost: dec("6.50")}},
	}, "ana")

	suite.Require().NoError(err)
	suite.Nil(receipt.Purchase.SessionID)
	suite.Nil(receipt.Movement)
	suite.Equal(58, suite.stockOf(suite.beer.ProductID))
	suite.Equal([]domain.EventType{domain.EventPurchaseRegistered}, suite.f.events.types())

	stored, err := suite.f.commerce.GetPurchase(suite.ctx, receipt.Purchase.PurchaseID)
	suite.Require().NoError(err)
	suite.Nil(stored.SessionID)
	suite.Len(stored.Items, 1)
}

func (suite *CommerceServiceTestSuite) TestRegisterSale_NoOpenSessionWritesNothing() {
	_, err := suite.f.reconciliation.CloseSession(suite.ctx, suite.session, dec("100"), "ana")
	suite.Require().NoError(err)
	suite.f.events.reset()

	receipt, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "CASH",
		Items:  []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 1}},
	}, "ana")

	suite.ErrorIs(err, apperrors.ErrNoOpenSession)
	suite.Nil(receipt)
	suite.Equal(10, suite.stockOf(suite.rum.ProductID))
	sales, err := suite.f.store.ListSales(suite.ctx, domain.DateRange{From: time.Time{}, To: time.Now().AddDate(10, 0, 0)})
	suite.Require().NoError(err)
	suite.Empty(sales)
	suite.Empty(suite.f.events.types())
}

func (suite *CommerceServiceTestSuite) TestRegisterSale_StorageFailureRollsBack() {
	suite.f.store.FailMovementInserts(errors.New("connection reset"))

	_, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "CASH",
		Items:  []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 1}},
	}, "ana")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStorageFailure)
	suite.Equal(10, suite.stockOf(suite.rum.ProductID))
	sales, err := suite.f.store.ListSales(suite.ctx, domain.DateRange{To: time.Now().AddDate(10, 0, 0)})
	suite.Require().NoError(err)
	suite.Empty(sales)
}

func (suite *CommerceServiceTestSuite) TestRegisterSale_Rejections() {
	cases := []struct {
		name string
		req  dto.RegisterSaleRequest
		want error
	}{
		{"unknown method", dto.RegisterSaleRequest{Method: "BARTER", Items: []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 1}}}, apperrors.ErrValidation},
		{"no items", dto.RegisterSaleRequest{Method: "CASH"}, apperrors.ErrValidation},
		{"unknown product", dto.RegisterSaleRequest{Method: "CASH", Items: []dto.SaleItemRequest{{ProductID: 404, Quantity: 1}}}, apperrors.ErrValidation},
		{"insufficient stock", dto.RegisterSaleRequest{Method: "CASH", Items: []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 11}}}, apperrors.ErrValidation},
		{"zero quantity", dto.RegisterSaleRequest{Method: "CASH", Items: []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 0}}}, apperrors.ErrValidation},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.f.commerce.RegisterSale(suite.ctx, tc.req, "ana")
			suite.ErrorIs(err, tc.want)
		})
	}
	suite.Equal(10, suite.stockOf(suite.rum.ProductID))
}

func (suite *CommerceServiceTestSuite) TestRegisterPurchase_GoodsRestock() {
	receipt, err := suite.f.commerce.RegisterPurchase(suite.ctx, dto.RegisterPurchaseRequest{
		Kind:     "goods",
		Method:   "CASH",
		Total:    dec("80.00"),
		Supplier: "CBN",
		Items:    []dto.PurchaseItemRequest{{ProductID: suite.beer.ProductID, Quantity: 12, UnitCost: dec("6.50")}},
	}, "ana")

	suite.Require().NoError(err)
	suite.Equal(60, suite.stockOf(suite.beer.ProductID))
	suite.Require().NotNil(receipt.Movement)
	suite.Equal(&suite.session, receipt.Purchase.SessionID)
	m := receipt.Movement
	suite.Equal(domain.DirectionOut, m.Direction)
	suite.Equal("Goods purchase #1", m.Concept)
	suite.Equal(domain.RefPurchase, m.Reference.Kind)
	suite.True(m.HasMethod(domain.MethodCash))
	suite.Equal([]domain.EventType{domain.EventPurchaseRegistered, domain.EventMovementRecorded}, suite.f.events.types())
}

func (suite *CommerceServiceTestSuite) TestRegisterPurchase_ExpenseAndCreditMethod() {
	receipt, err := suite.f.commerce.RegisterPurchase(suite.ctx, dto.RegisterPurchaseRequest{
		Kind: "EXPENSE", Method: "CREDIT", Total: dec("40"), Description: "Electricity",
	}, "ana")
	suite.Require().NoError(err)
	suite.Require().NotNil(receipt.Movement)
	suite.Equal("Expense: Electricity", receipt.Movement.Concept)
	suite.True(receipt.Movement.HasMethod(domain.MethodCredit))

	supplies, err := suite.f.commerce.RegisterPurchase(suite.ctx, dto.RegisterPurchaseRequest{
		Kind: "SUPPLIES", Method: "CASH", Total: dec("15"),
	}, "ana")
	suite.Require().NoError(err)
	suite.Require().NotNil(supplies.Movement)
	suite.Equal("Supplies purchase #2", supplies.Movement.Concept)

	summary, err := suite.f.reconciliation.Summarize(suite.ctx, suite.session)
	suite.Require().NoError(err)
	suite.True(summary.ExpectedCash.Equal(dec("85")), summary.ExpectedCash.String())
	suite.True(summary.OtherOut.Equal(dec("40")))
}

func (suite *CommerceServiceTestSuite) TestRegisterPurchase_Rejections() {
	_, err := suite.f.commerce.RegisterPurchase(suite.ctx, dto.RegisterPurchaseRequest{Kind: "GIFT", Method: "CASH", Total: dec("1")}, "ana")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.commerce.RegisterPurchase(suite.ctx, dto.RegisterPurchaseRequest{Kind: "GOODS", Method: "CASH", Total: dec("0")}, "ana")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = suite.f.commerce.RegisterPurchase(suite.ctx, dto.RegisterPurchaseRequest{
		Kind: "EXPENSE", Method: "CASH", Total: dec("5"),
		Items: []dto.PurchaseItemRequest{{ProductID: suite.beer.ProductID, Quantity: 1}},
	}, "ana")
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.commerce.RegisterPurchase(suite.ctx, dto.RegisterPurchaseRequest{
		Kind: "GOODS", Method: "CASH", Total: dec("5"),
		Items: []dto.PurchaseItemRequest{{ProductID: 404, Quantity: 1}},
	}, "ana")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CommerceServiceTestSuite) TestSubCentAmountsRejected() {
	_, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method:     "MIXED",
		CashAmount: dec("100.005"),
		QRAmount:   dec("24.995"),
		Items:      []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 1}},
	}, "ana")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	price := dec("9.999")
	_, err = suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "CASH",
		Items:  []dto.SaleItemRequest{{ProductID: suite.beer.ProductID, Quantity: 1, UnitPrice: &price}},
	}, "ana")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = suite.f.commerce.RegisterPurchase(suite.ctx, dto.RegisterPurchaseRequest{Kind: "EXPENSE", Method: "CASH", Total: dec("10.001")}, "ana")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = suite.f.commerce.RegisterPurchase(suite.ctx, dto.RegisterPurchaseRequest{
		Kind: "GOODS", Method: "CASH", Total: dec("10"),
		Items: []dto.PurchaseItemRequest{{ProductID: suite.beer.ProductID, Quantity: 1, UnitCost: dec("0.125")}},
	}, "ana")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = suite.f.commerce.CreateProduct(suite.ctx, dto.CreateProductRequest{Name: "Hielo", Price: dec("4.995")})
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	credit, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "CREDIT", Customer: "Don Julio",
		Items: []dto.SaleItemRequest{{ProductID: suite.beer.ProductID, Quantity: 1}},
	}, "ana")
	suite.Require().NoError(err)
	suite.f.events.reset()
	_, err = suite.f.commerce.RegisterCreditPayment(suite.ctx, credit.Credit.CreditID, dto.CreditPaymentRequest{Amount: dec("0.005")}, "ana")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	suite.Equal(10, suite.stockOf(suite.rum.ProductID))
	suite.Equal(47, suite.stockOf(suite.beer.ProductID))
	movements, err := suite.f.movement.ListMovements(suite.ctx, suite.session)
	suite.Require().NoError(err)
	suite.Empty(movements)
	suite.Empty(suite.f.events.types())
}

func (suite *CommerceServiceTestSuite) TestGetAndUpdateProduct() {
	got, err := suite.f.commerce.GetProduct(suite.ctx, suite.rum.ProductID)
	suite.Require().NoError(err)
	suite.Equal("Ron Abuelo", got.Name)

	updated, err := suite.f.commerce.UpdateProduct(suite.ctx, suite.rum.ProductID, dto.UpdateProductRequest{
		Name: " Ron Abuelo 7 ", Category: "Rum", Price: dec("140.00"), Stock: 12,
	})
	suite.Require().NoError(err)
	suite.Equal("Ron Abuelo 7", updated.Name)
	suite.Equal(3, updated.MinStock)
	suite.Equal(12, suite.stockOf(suite.rum.ProductID))

	receipt, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "CASH",
		Items:  []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 1}},
	}, "ana")
	suite.Require().NoError(err)
	suite.True(receipt.Sale.Total.Equal(dec("140")))

	_, err = suite.f.commerce.UpdateProduct(suite.ctx, suite.rum.ProductID, dto.UpdateProductRequest{Name: "paceña 620ML", Price: dec("1")})
	suite.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = suite.f.commerce.UpdateProduct(suite.ctx, 404, dto.UpdateProductRequest{Name: "Nada", Price: dec("1")})
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.f.commerce.UpdateProduct(suite.ctx, suite.rum.ProductID, dto.UpdateProductRequest{Name: "Ron", Price: dec("1"), Stock: -1})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.commerce.GetProduct(suite.ctx, 404)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CommerceServiceTestSuite) TestListAndGetSales() {
	first, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "CASH", Items: []dto.SaleItemRequest{{ProductID: suite.beer.ProductID, Quantity: 2}},
	}, "ana")
	suite.Require().NoError(err)
	suite.f.clock.Set(time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC))
	second, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "CREDIT", Customer: "Doña Rosa", CustomerPhone: " 70012345 ",
		Items: []dto.SaleItemRequest{{ProductID: suite.rum.ProductID, Quantity: 1}},
	}, "ana")
	suite.Require().NoError(err)

	sales, err := suite.f.commerce.ListSales(suite.ctx, nil, nil)
	suite.Require().NoError(err)
	suite.Require().Len(sales, 2)
	suite.Equal(second.Sale.SaleID, sales[0].SaleID)
	suite.Equal(first.Sale.SaleID, sales[1].SaleID)

	tomorrow := time.Date(2024, 3, 5, 0, 0, 0, 0, laPaz)
	sales, err = suite.f.commerce.ListSales(suite.ctx, &tomorrow, &tomorrow)
	suite.Require().NoError(err)
	suite.Empty(sales)

	yesterday := time.Date(2024, 3, 3, 0, 0, 0, 0, laPaz)
	_, err = suite.f.commerce.ListSales(suite.ctx, &tomorrow, &yesterday)
	suite.ErrorIs(err, apperrors.ErrValidation)

	got, err := suite.f.commerce.GetSale(suite.ctx, second.Sale.SaleID)
	suite.Require().NoError(err)
	suite.Equal("70012345", got.CustomerPhone)
	suite.Require().Len(got.Items, 1)
	suite.Equal(suite.rum.ProductID, got.Items[0].ProductID)

	_, err = suite.f.commerce.GetSale(suite.ctx, 404)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CommerceServiceTestSuite) TestListPurchases_Filters() {
	register := func(kind, supplier, description string) {
		_, err := suite.f.commerce.RegisterPurchase(suite.ctx, dto.RegisterPurchaseRequest{
			Kind: kind, Method: "CASH", Total: dec("10"), Supplier: supplier, Description: description,
		}, "ana")
		suite.Require().NoError(err)
	}
	register("GOODS", "CBN", "")
	register("EXPENSE", "", "Electricity")
	suite.f.clock.Set(time.Date(2024, 3, 6, 13, 0, 0, 0, time.UTC))
	register("EXPENSE", "", "Water")

	all, err := suite.f.commerce.ListPurchases(suite.ctx, dto.PurchaseListParams{})
	suite.Require().NoError(err)
	suite.Require().Len(all, 3)
	suite.Equal("Water", all[0].Description)

	expenses, err := suite.f.commerce.ListPurchases(suite.ctx, dto.PurchaseListParams{Kind: "expense"})
	suite.Require().NoError(err)
	suite.Len(expenses, 2)

	day := time.Date(2024, 3, 4, 0, 0, 0, 0, laPaz)
	onDay, err := suite.f.commerce.ListPurchases(suite.ctx, dto.PurchaseListParams{From: &day, To: &day})
	suite.Require().NoError(err)
	suite.Len(onDay, 2)

	found, err := suite.f.commerce.ListPurchases(suite.ctx, dto.PurchaseListParams{Search: "electric"})
	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal(domain.PurchaseExpense, found[0].Kind)

	limited, err := suite.f.commerce.ListPurchases(suite.ctx, dto.PurchaseListParams{Limit: 1})
	suite.Require().NoError(err)
	suite.Len(limited, 1)

	_, err = suite.f.commerce.ListPurchases(suite.ctx, dto.PurchaseListParams{Kind: "GIFT"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.f.commerce.GetPurchase(suite.ctx, 404)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CommerceServiceTestSuite) creditSale(customer, phone string, qty int) *domain.SaleReceipt {
	receipt, err := suite.f.commerce.RegisterSale(suite.ctx, dto.RegisterSaleRequest{
		Method: "CREDIT", Customer: customer, CustomerPhone: phone,
		Items: []dto.SaleItemRequest{{ProductID: suite.beer.ProductID, Quantity: qty}},
	}, "ana")
	suite.Require().NoError(err)
	return receipt
}

func (suite *CommerceServiceTestSuite) TestListCredits_StatusAndSearch() {
	rosa := suite.creditSale("Doña Rosa", "70012345", 2)
	julio := suite.creditSale("Don Julio", "", 1)
	paid := suite.creditSale("Don Julio", "", 1)
	_, err := suite.f.commerce.RegisterCreditPayment(suite.ctx, rosa.Credit.CreditID, dto.CreditPaymentRequest{Amount: dec("5")}, "ana")
	suite.Require().NoError(err)
	_, err = suite.f.commerce.RegisterCreditPayment(suite.ctx, paid.Credit.CreditID, dto.CreditPaymentRequest{Amount: dec("15")}, "ana")
	suite.Require().NoError(err)

	all, err := suite.f.commerce.ListCredits(suite.ctx, dto.CreditListParams{})
	suite.Require().NoError(err)
	suite.Require().Len(all, 3)
	suite.Equal(paid.Credit.CreditID, all[0].CreditID)

	cases := []struct {
		status string
		want   []int64
	}{
		{"ALL", []int64{paid.Credit.CreditID, julio.Credit.CreditID, rosa.Credit.CreditID}},
		{"outstanding", []int64{julio.Credit.CreditID, rosa.Credit.CreditID}},
		{"PENDING", []int64{julio.Credit.CreditID}},
		{"partial", []int64{rosa.Credit.CreditID}},
		{"PAID", []int64{paid.Credit.CreditID}},
	}
	for _, tc := range cases {
		suite.Run(tc.status, func() {
			credits, err := suite.f.commerce.ListCredits(suite.ctx, dto.CreditListParams{Status: tc.status})
			suite.Require().NoError(err)
			ids := make([]int64, 0, len(credits))
			for _, c := range credits {
				ids = append(ids, c.CreditID)
			}
			suite.Equal(tc.want, ids)
		})
	}

	byPhone, err := suite.f.commerce.ListCredits(suite.ctx, dto.CreditListParams{Search: "0012"})
	suite.Require().NoError(err)
	suite.Require().Len(byPhone, 1)
	suite.Equal("Doña Rosa", byPhone[0].Customer)

	byName, err := suite.f.commerce.ListCredits(suite.ctx, dto.CreditListParams{Status: "outstanding", Search: "julio"})
	suite.Require().NoError(err)
	suite.Len(byName, 1)

	_, err = suite.f.commerce.ListCredits(suite.ctx, dto.CreditListParams{Status: "LATE"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *CommerceServiceTestSuite) TestCreditStats() {
	old := suite.creditSale("Doña Rosa", "70012345", 4)
	_, err := suite.f.commerce.RegisterCreditPayment(suite.ctx, old.Credit.CreditID, dto.CreditPaymentRequest{Amount: dec("20")}, "ana")
	suite.Require().NoError(err)

	stats, err := suite.f.commerce.CreditStats(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(1, stats.PendingCount)
	suite.True(stats.PendingTotal.Equal(dec("40")))
	suite.Equal(0, stats.OverdueCount)
	suite.True(stats.CollectedThisMonth.Equal(dec("20")))
	suite.Equal(1, stats.Customers)

	suite.f.clock.Set(time.Date(2024, 4, 4, 13, 0, 0, 0, time.UTC))
	suite.creditSale("Don Julio", "", 1)
	suite.creditSale("don julio", "", 1)

	stats, err = suite.f.commerce.CreditStats(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(3, stats.PendingCount)
	suite.True(stats.PendingTotal.Equal(dec("70")))
	suite.Equal(1, stats.OverdueCount)
	suite.True(stats.OverdueTotal.Equal(dec("40")))
	suite.True(stats.CollectedThisMonth.IsZero())
	suite.Equal(2, stats.Customers)
}

func (suite *CommerceServiceTestSuite) TestCustomerCredits() {
	first := suite.creditSale("Don Julio", "", 2)
	suite.creditSale("don julio", "", 1)
	suite.creditSale("Doña Rosa", "", 1)
	_, err := suite.f.commerce.RegisterCreditPayment(suite.ctx, first.Credit.CreditID, dto.CreditPaymentRequest{Amount: dec("30")}, "ana")
	suite.Require().NoError(err)

	summary, err := suite.f.commerce.CustomerCredits(suite.ctx, " DON JULIO ")
	suite.Require().NoError(err)
	suite.Len(summary.Credits, 2)
	suite.True(summary.Owed.Equal(dec("15")))

	_, err = suite.f.commerce.CustomerCredits(suite.ctx, "Nadie")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.f.commerce.CustomerCredits(suite.ctx, " ")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func TestCommerceService(t *testing.T) {
	suite.Run(t, new(CommerceServiceTestSuite))
}
