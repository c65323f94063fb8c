package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	"github.com/SscSPs/licoreria_pos/internal/utils/mapping"
)

// sqlTx runs the ledger and commerce writes on one database/sql transaction.
// SQLite has no row locks; the single connection already serializes writers.
type sqlTx struct {
	tx *sql.Tx
}

var _ portsrepo.Tx = (*sqlTx)(nil)

func (t *sqlTx) ShareLockOpenSession(ctx context.Context) (*domain.TillSession, error) {
	session, err := getSession(ctx, t.tx, `SELECT `+sessionColumns+` FROM till_sessions WHERE status = 'OPEN'`)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrNoOpenSession
	}
	return session, err
}

func (t *sqlTx) LockSession(ctx context.Context, sessionID int64) (*domain.TillSession, error) {
	return getSession(ctx, t.tx, `SELECT `+sessionColumns+` FROM till_sessions WHERE session_id = ?`, sessionID)
}

func (t *sqlTx) InsertSession(ctx context.Context, session domain.TillSession) (int64, error) {
	m := mapping.ToModelTillSession(session)
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO till_sessions (opened_at, opening_float, status, operator) VALUES (?, ?, ?, ?)`,
		toNanos(m.OpenedAt), m.OpeningFloat, m.Status, m.Operator,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, apperrors.ErrSessionAlreadyOpen
		}
		return 0, storageError("failed to insert till session", err)
	}
	return lastID(res, "till session")
}

func (t *sqlTx) InsertMovement(ctx context.Context, movement domain.Movement) (int64, error) {
	m := mapping.ToModelMovement(movement)
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO movements (session_id, direction, concept, amount, method, reference_kind, reference_id, created_at)
		SELECT ?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8
		WHERE EXISTS (SELECT 1 FROM till_sessions WHERE session_id = ?1 AND status = 'OPEN')`,
		m.SessionID, m.Direction, m.Concept, m.Amount, m.Method, m.ReferenceKind, m.ReferenceID, toNanos(m.CreatedAt),
	)
	if err != nil {
		return 0, storageError("failed to insert movement", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return 0, fmt.Errorf("%w: session %d", apperrors.ErrNoOpenSession, m.SessionID)
	}
	return lastID(res, "movement")
}

func (t *sqlTx) ListMovementsBySession(ctx context.Context, sessionID int64) ([]domain.Movement, error) {
	return listMovements(ctx, t.tx, sessionID)
}

func (t *sqlTx) CloseSession(ctx context.Context, sessionID int64, closedAt time.Time, totals domain.SessionTotals) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE till_sessions
		SET status = 'CLOSED', closed_at = ?,
			cash_in = ?, cash_out = ?, qr_in = ?, credit_in = ?,
			total_in = ?, total_out = ?, expected_cash = ?, counted_cash = ?, variance = ?
		WHERE session_id = ? AND status = 'OPEN'`,
		toNanos(closedAt),
		totals.CashIn, totals.CashOut, totals.QRIn, totals.CreditIn,
		totals.TotalIn, totals.TotalOut, totals.ExpectedCash, totals.CountedCash, totals.Variance,
		sessionID,
	)
	if err != nil {
		return storageError(fmt.Sprintf("failed to close till session %d", sessionID), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: session %d", apperrors.ErrNoOpenSession, sessionID)
	}
	return nil
}

func (t *sqlTx) GetProductsForUpdate(ctx context.Context, productIDs []int64) (map[int64]domain.Product, error) {
	products := make(map[int64]domain.Product, len(productIDs))
	if len(productIDs) == 0 {
		return products, nil
	}
	args := make([]any, len(productIDs))
	for i, id := range productIDs {
		args[i] = id
	}
	rows, err := queryProducts(ctx, t.tx,
		`SELECT `+productColumns+` FROM products WHERE product_id IN (`+placeholders(len(args))+`)`, args...)
	if err != nil {
		return nil, err
	}
	for _, m := range rows {
		products[m.ProductID] = mapping.ToDomainProduct(m)
	}
	for _, id := range productIDs {
		if _, ok := products[id]; !ok {
			return nil, fmt.Errorf("%w: product %d", apperrors.ErrNotFound, id)
		}
	}
	return products, nil
}

func (t *sqlTx) AdjustStock(ctx context.Context, productID int64, delta int) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE products SET stock = stock + ? WHERE product_id = ?`, delta, productID)
	if err != nil {
		return storageError(fmt.Sprintf("failed to adjust stock of product %d", productID), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: product %d", apperrors.ErrNotFound, productID)
	}
	return nil
}

func (t *sqlTx) InsertSale(ctx context.Context, sale domain.Sale) (int64, error) {
	m, items := mapping.ToModelSale(sale)
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO sales (session_id, total, method, cash_amount, qr_amount, customer, customer_phone, created_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.SessionID, m.Total, m.Method, m.CashAmount, m.QRAmount, m.Customer, m.Phone, toNanos(m.CreatedAt), m.CreatedBy,
	)
	if err != nil {
		return 0, storageError("failed to insert sale", err)
	}
	saleID, err := lastID(res, "sale")
	if err != nil {
		return 0, err
	}

	for _, it := range items {
		_, err = t.tx.ExecContext(ctx, `
			INSERT INTO sale_items (sale_id, line_no, product_id, quantity, unit_price, subtotal)
			VALUES (?, ?, ?, ?, ?, ?)`,
			saleID, it.LineNo, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal,
		)
		if err != nil {
			return 0, storageError(fmt.Sprintf("failed to insert items of sale %d", saleID), err)
		}
	}
	return saleID, nil
}

func (t *sqlTx) InsertPurchase(ctx context.Context, purchase domain.Purchase) (int64, error) {
	m, items := mapping.ToModelPurchase(purchase)
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO purchases (session_id, kind, total, method, supplier, description, created_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.SessionID, m.Kind, m.Total, m.Method, m.Supplier, m.Description, toNanos(m.CreatedAt), m.CreatedBy,
	)
	if err != nil {
		return 0, storageError("failed to insert purchase", err)
	}
	purchaseID, err := lastID(res, "purchase")
	if err != nil {
		return 0, err
	}

	for _, it := range items {
		_, err = t.tx.ExecContext(ctx, `
			INSERT INTO purchase_items (purchase_id, line_no, product_id, quantity, unit_cost)
			VALUES (?, ?, ?, ?, ?)`,
			purchaseID, it.LineNo, it.ProductID, it.Quantity, it.UnitCost,
		)
		if err != nil {
			return 0, storageError(fmt.Sprintf("failed to insert items of purchase %d", purchaseID), err)
		}
	}
	return purchaseID, nil
}

func (t *sqlTx) InsertCreditAccount(ctx context.Context, account domain.CreditAccount) (int64, error) {
	m := mapping.ToModelCreditAccount(account)
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO credit_accounts (sale_id, customer, customer_phone, total, paid, outstanding, status, opened_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.SaleID, m.Customer, m.Phone, m.Total, m.Paid, m.Outstanding, m.Status, toNanos(m.OpenedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: sale %d already has a credit account", apperrors.ErrDuplicate, m.SaleID)
		}
		return 0, storageError("failed to insert credit account", err)
	}
	return lastID(res, "credit account")
}

func (t *sqlTx) LockCreditAccount(ctx context.Context, creditID int64) (*domain.CreditAccount, error) {
	return getCredit(ctx, t.tx, creditID)
}

func (t *sqlTx) UpdateCreditAccount(ctx context.Context, account domain.CreditAccount) error {
	m := mapping.ToModelCreditAccount(account)
	res, err := t.tx.ExecContext(ctx,
		`UPDATE credit_accounts SET paid = ?, outstanding = ?, status = ? WHERE credit_id = ?`,
		m.Paid, m.Outstanding, m.Status, m.CreditID,
	)
	if err != nil {
		return storageError(fmt.Sprintf("failed to update credit account %d", m.CreditID), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: credit account %d", apperrors.ErrNotFound, m.CreditID)
	}
	return nil
}

func (t *sqlTx) InsertCreditPayment(ctx context.Context, payment domain.CreditPayment) (int64, error) {
	m := mapping.ToModelCreditPayment(payment)
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO credit_payments (credit_id, session_id, amount, method, notes, created_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.CreditID, m.SessionID, m.Amount, m.Method, m.Notes, toNanos(m.CreatedAt), m.CreatedBy,
	)
	if err != nil {
		return 0, storageError("failed to insert credit payment", err)
	}
	return lastID(res, "credit payment")
}
