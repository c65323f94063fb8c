package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/dto"
	"github.com/shopspring/decimal"
)

// commerceService runs the sale, purchase and credit workflows. Every
// workflow writes its own record and the derived till movements together.
type commerceService struct {
	BaseService
	commerceRepo    portsrepo.CommerceStore
	lowStockDefault int
}

// NewCommerceService creates the commerce workflows. lowStockDefault is the
// reorder threshold of products created without one.
func NewCommerceService(commerceRepo portsrepo.CommerceStore, lowStockDefault int, options ...ServiceOption) portssvc.CommerceSvcFacade {
	return &commerceService{
		BaseService:     newBaseService(options),
		commerceRepo:    commerceRepo,
		lowStockDefault: lowStockDefault,
	}
}

var _ portssvc.CommerceSvcFacade = (*commerceService)(nil)

func (s *commerceService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*domain.Product, error) {
	minStock := s.lowStockDefault
	if req.MinStock != nil {
		minStock = *req.MinStock
	}
	product := domain.Product{
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		Price:    req.Price,
		Stock:    req.Stock,
		MinStock: minStock,
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	id, err := s.commerceRepo.CreateProduct(ctx, product)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			s.LogWarn(ctx, err, "Rejected duplicate product", slog.String("name", product.Name))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to create product", slog.String("name", product.Name))
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	product.ProductID = id
	s.LogInfo(ctx, "Product created", slog.Int64("product_id", id), slog.String("name", product.Name))
	return &product, nil
}

func (s *commerceService) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	product, err := s.commerceRepo.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to read product", slog.Int64("product_id", productID))
		return nil, fmt.Errorf("failed to read product %d: %w", productID, err)
	}
	return product, nil
}

func (s *commerceService) UpdateProduct(ctx context.Context, productID int64, req dto.UpdateProductRequest) (*domain.Product, error) {
	current, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	product := domain.Product{
		ProductID: productID,
		Name:      strings.TrimSpace(req.Name),
		Category:  strings.TrimSpace(req.Category),
		Price:     req.Price,
		Stock:     req.Stock,
		MinStock:  current.MinStock,
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if err := s.commerceRepo.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) || errors.Is(err, apperrors.ErrNotFound) {
			s.LogWarn(ctx, err, "Rejected product update", slog.Int64("product_id", productID))
			return nil, err
		}
		s.LogError(ctx, err, "Failed to update product", slog.Int64("product_id", productID))
		return nil, fmt.Errorf("failed to update product %d: %w", productID, err)
	}
	s.LogInfo(ctx, "Product updated", slog.Int64("product_id", productID), slog.String("name", product.Name))
	return &product, nil
}

func (s *commerceService) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.commerceRepo.ListProducts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list products")
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *commerceService) RegisterSale(ctx context.Context, req dto.RegisterSaleRequest, operator string) (*domain.SaleReceipt, error) {
	method, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: a sale needs at least one item", apperrors.ErrValidation)
	}
	quantities := make(map[int64]int, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity of product %d must be positive", apperrors.ErrValidation, item.ProductID)
		}
		if item.UnitPrice != nil {
			if item.UnitPrice.IsNegative() {
				return nil, fmt.Errorf("%w: unit price of product %d cannot be negative", apperrors.ErrInvalidAmount, item.ProductID)
			}
			if err := domain.ValidateCents(*item.UnitPrice, fmt.Sprintf("unit price of product %d", item.ProductID)); err != nil {
				return nil, err
			}
		}
		quantities[item.ProductID] += item.Quantity
	}
	customer := strings.TrimSpace(req.Customer)
	if method == domain.MethodCredit && customer == "" {
		return nil, fmt.Errorf("%w: credit sales need a customer", apperrors.ErrValidation)
	}

	now := s.Now()
	var receipt domain.SaleReceipt
	err = s.commerceRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		session, err := requireOpenSession(ctx, tx, nil)
		if err != nil {
			return err
		}

		products, err := tx.GetProductsForUpdate(ctx, sortedIDs(quantities))
		if err != nil {
			return unknownProduct(err)
		}
		for id, qty := range quantities {
			if p := products[id]; p.Stock < qty {
				return fmt.Errorf("%w: insufficient stock for %s (have %d, need %d)", apperrors.ErrValidation, p.Name, p.Stock, qty)
			}
		}

		sale := domain.Sale{
			SessionID:     session.SessionID,
			Method:        method,
			Customer:      customer,
			CustomerPhone: strings.TrimSpace(req.CustomerPhone),
			Items:         make([]domain.SaleItem, 0, len(req.Items)),
			AuditFields:   domain.AuditFields{CreatedAt: now, CreatedBy: operator},
		}
		for _, item := range req.Items {
			price := products[item.ProductID].Price
			if item.UnitPrice != nil {
				price = *item.UnitPrice
			}
			subtotal := price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			sale.Items = append(sale.Items, domain.SaleItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: price,
				Subtotal:  subtotal,
			})
			sale.Total = sale.Total.Add(subtotal)
		}
		if !sale.Total.IsPositive() {
			return fmt.Errorf("%w: sale total must be positive", apperrors.ErrInvalidAmount)
		}

		switch method {
		case domain.MethodMixed:
			sale.CashAmount, sale.QRAmount = req.CashAmount, req.QRAmount
		case domain.MethodCash:
			sale.CashAmount = sale.Total
		case domain.MethodQR:
			sale.QRAmount = sale.Total
		}

		// Split errors surface before anything is written.
		if method == domain.MethodMixed {
			if err := domain.ValidateMixedSplit(sale.Total, sale.CashAmount, sale.QRAmount); err != nil {
				return err
			}
		}

		sale.SaleID, err = tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		for _, item := range sale.Items {
			if err := tx.AdjustStock(ctx, item.ProductID, -item.Quantity); err != nil {
				return err
			}
		}

		if method == domain.MethodCredit {
			account := domain.CreditAccount{
				SaleID:        sale.SaleID,
				Customer:      customer,
				CustomerPhone: sale.CustomerPhone,
				Total:         sale.Total,
				Paid:          decimal.Zero,
				Outstanding:   sale.Total,
				Status:        domain.CreditPending,
				OpenedAt:      now,
			}
			account.CreditID, err = tx.InsertCreditAccount(ctx, account)
			if err != nil {
				return err
			}
			receipt.Credit = &account
		}

		drafts, err := domain.SaleMovements(sale)
		if err != nil {
			return err
		}
		receipt.Movements, err = insertMovements(ctx, tx, session.SessionID, drafts, now)
		if err != nil {
			return err
		}
		receipt.Sale = sale
		return nil
	})
	if err != nil {
		return nil, s.ledgerWriteError(ctx, err, "Failed to register sale",
			slog.String("method", string(method)), slog.String("operator", operator))
	}

	s.LogInfo(ctx, "Sale registered",
		slog.Int64("sale_id", receipt.Sale.SaleID),
		slog.Int64("session_id", receipt.Sale.SessionID),
		slog.String("method", string(method)),
		slog.String("total", receipt.Sale.Total.String()),
		slog.Int("movements", len(receipt.Movements)))
	s.Publish(ctx, domain.EventSaleRegistered, domain.SaleRegisteredPayload{
		SaleID: receipt.Sale.SaleID,
		Method: method,
		Total:  receipt.Sale.Total.String(),
	})
	s.announceMovements(ctx, receipt.Movements)
	return &receipt, nil
}

func (s *commerceService) RegisterPurchase(ctx context.Context, req dto.RegisterPurchaseRequest, operator string) (*domain.PurchaseReceipt, error) {
	kind, err := domain.ParsePurchaseKind(req.Kind)
	if err != nil {
		return nil, err
	}
	method, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		return nil, err
	}
	if method == domain.MethodMixed {
		return nil, fmt.Errorf("%w: purchases cannot be paid with a mixed method", apperrors.ErrValidation)
	}
	if !req.Total.IsPositive() {
		return nil, fmt.Errorf("%w: purchase total must be positive", apperrors.ErrInvalidAmount)
	}
	if err := domain.ValidateCents(req.Total, "purchase total"); err != nil {
		return nil, err
	}
	if len(req.Items) > 0 && kind != domain.PurchaseGoods {
		return nil, fmt.Errorf("%w: only goods purchases carry items", apperrors.ErrValidation)
	}
	quantities := make(map[int64]int, len(req.Items))
	items := make([]domain.PurchaseItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity of product %d must be positive", apperrors.ErrValidation, item.ProductID)
		}
		if item.UnitCost.IsNegative() {
			return nil, fmt.Errorf("%w: unit cost of product %d cannot be negative", apperrors.ErrInvalidAmount, item.ProductID)
		}
		if err := domain.ValidateCents(item.UnitCost, fmt.Sprintf("unit cost of product %d", item.ProductID)); err != nil {
			return nil, err
		}
		quantities[item.ProductID] += item.Quantity
		items = append(items, domain.PurchaseItem{ProductID: item.ProductID, Quantity: item.Quantity, UnitCost: item.UnitCost})
	}

	now := s.Now()
	var receipt domain.PurchaseReceipt
	err = s.commerceRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		session, err := currentSession(ctx, tx)
		if err != nil {
			return err
		}

		if len(quantities) > 0 {
			if _, err := tx.GetProductsForUpdate(ctx, sortedIDs(quantities)); err != nil {
				return unknownProduct(err)
			}
		}

		purchase := domain.Purchase{
			SessionID:   sessionIDOf(session),
			Kind:        kind,
			Total:       req.Total,
			Method:      method,
			Supplier:    strings.TrimSpace(req.Supplier),
			Description: strings.TrimSpace(req.Description),
			Items:       items,
			AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: operator},
		}
		purchase.PurchaseID, err = tx.InsertPurchase(ctx, purchase)
		if err != nil {
			return err
		}
		for _, item := range purchase.Items {
			if err := tx.AdjustStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		receipt = domain.PurchaseReceipt{Purchase: purchase}
		if session == nil {
			return nil
		}
		recorded, err := insertMovements(ctx, tx, session.SessionID, []domain.MovementDraft{domain.PurchaseMovement(purchase)}, now)
		if err != nil {
			return err
		}
		receipt.Movement = &recorded[0]
		return nil
	})
	if err != nil {
		return nil, s.ledgerWriteError(ctx, err, "Failed to register purchase",
			slog.String("kind", string(kind)), slog.String("operator", operator))
	}

	s.LogInfo(ctx, "Purchase registered",
		slog.Int64("purchase_id", receipt.Purchase.PurchaseID),
		slog.String("kind", string(kind)),
		slog.String("total", receipt.Purchase.Total.String()),
		slog.Bool("till_movement", receipt.Movement != nil))
	s.Publish(ctx, domain.EventPurchaseRegistered, domain.PurchaseRegisteredPayload{
		PurchaseID: receipt.Purchase.PurchaseID,
		Kind:       kind,
		Total:      receipt.Purchase.Total.String(),
	})
	if receipt.Movement != nil {
		s.announceMovements(ctx, []domain.Movement{*receipt.Movement})
	}
	return &receipt, nil
}

func (s *commerceService) RegisterCreditPayment(ctx context.Context, creditID int64, req dto.CreditPaymentRequest, operator string) (*domain.PaymentReceipt, error) {
	method := domain.MethodCash
	if strings.TrimSpace(req.Method) != "" {
		parsed, err := domain.ParsePaymentMethod(req.Method)
		if err != nil {
			return nil, err
		}
		method = parsed
	}
	if method == domain.MethodCredit || method == domain.MethodMixed {
		return nil, fmt.Errorf("%w: credit payments cannot use method %s", apperrors.ErrValidation, method)
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrInvalidAmount)
	}
	if err := domain.ValidateCents(req.Amount, "payment amount"); err != nil {
		return nil, err
	}

	now := s.Now()
	var receipt domain.PaymentReceipt
	err := s.commerceRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		session, err := currentSession(ctx, tx)
		if err != nil {
			return err
		}

		account, err := tx.LockCreditAccount(ctx, creditID)
		if err != nil {
			return err
		}
		if account.Status == domain.CreditPaid {
			return fmt.Errorf("%w: credit %d is already paid", apperrors.ErrValidation, creditID)
		}
		if req.Amount.GreaterThan(account.Outstanding) {
			return fmt.Errorf("%w: payment %s exceeds outstanding balance %s",
				apperrors.ErrInvalidAmount, req.Amount.String(), account.Outstanding.String())
		}
		account.ApplyPayment(req.Amount)
		if err := tx.UpdateCreditAccount(ctx, *account); err != nil {
			return err
		}

		payment := domain.CreditPayment{
			CreditID:    creditID,
			SessionID:   sessionIDOf(session),
			Amount:      req.Amount,
			Method:      method,
			Notes:       strings.TrimSpace(req.Notes),
			AuditFields: domain.AuditFields{CreatedAt: now, CreatedBy: operator},
		}
		payment.PaymentID, err = tx.InsertCreditPayment(ctx, payment)
		if err != nil {
			return err
		}

		receipt = domain.PaymentReceipt{Payment: payment, Credit: *account}
		if session == nil {
			return nil
		}
		recorded, err := insertMovements(ctx, tx, session.SessionID, []domain.MovementDraft{domain.CreditPaymentMovement(payment)}, now)
		if err != nil {
			return err
		}
		receipt.Movement = &recorded[0]
		return nil
	})
	if err != nil {
		return nil, s.ledgerWriteError(ctx, err, "Failed to register credit payment",
			slog.Int64("credit_id", creditID), slog.String("operator", operator))
	}

	s.LogInfo(ctx, "Credit payment registered",
		slog.Int64("payment_id", receipt.Payment.PaymentID),
		slog.Int64("credit_id", creditID),
		slog.String("amount", receipt.Payment.Amount.String()),
		slog.String("status", string(receipt.Credit.Status)),
		slog.Bool("till_movement", receipt.Movement != nil))
	s.Publish(ctx, domain.EventCreditPaymentRegistered, domain.CreditPaymentRegisteredPayload{
		PaymentID:   receipt.Payment.PaymentID,
		CreditID:    creditID,
		Outstanding: receipt.Credit.Outstanding.String(),
		Status:      receipt.Credit.Status,
	})
	if receipt.Movement != nil {
		s.announceMovements(ctx, []domain.Movement{*receipt.Movement})
	}
	return &receipt, nil
}

// currentSession share-locks the open session, or returns nil when the till
// is closed.
func currentSession(ctx context.Context, tx portsrepo.LedgerTx) (*domain.TillSession, error) {
	open, err := tx.ShareLockOpenSession(ctx)
	if errors.Is(err, apperrors.ErrNoOpenSession) {
		return nil, nil
	}
	return open, err
}

func sessionIDOf(session *domain.TillSession) *int64 {
	if session == nil {
		return nil
	}
	id := session.SessionID
	return &id
}

func validateProduct(p domain.Product) error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", apperrors.ErrValidation)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: price cannot be negative", apperrors.ErrInvalidAmount)
	}
	if err := domain.ValidateCents(p.Price, "price"); err != nil {
		return err
	}
	if p.Stock < 0 || p.MinStock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", apperrors.ErrValidation)
	}
	return nil
}

// sortedIDs returns the keys in ascending order so row locks are always
// taken in the same order.
func sortedIDs(quantities map[int64]int) []int64 {
	ids := make([]int64, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// unknownProduct turns a missing catalog row into a validation failure.
func unknownProduct(err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return err
}
