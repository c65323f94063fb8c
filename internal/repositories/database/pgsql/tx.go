package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	"github.com/SscSPs/licoreria_pos/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
)

// pgxTx runs the ledger and commerce writes on one pgx transaction.
type pgxTx struct {
	tx pgx.Tx
}

var _ portsrepo.Tx = (*pgxTx)(nil)

// --- ledger writes ---

func (t *pgxTx) ShareLockOpenSession(ctx context.Context) (*domain.TillSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM till_sessions WHERE status = 'OPEN' FOR SHARE;`
	session, err := getSession(ctx, t.tx, query)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.ErrNoOpenSession
	}
	return session, err
}

func (t *pgxTx) LockSession(ctx context.Context, sessionID int64) (*domain.TillSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM till_sessions WHERE session_id = $1 FOR UPDATE;`
	return getSession(ctx, t.tx, query, sessionID)
}

func (t *pgxTx) InsertSession(ctx context.Context, session domain.TillSession) (int64, error) {
	m := mapping.ToModelTillSession(session)
	query := `
		INSERT INTO till_sessions (opened_at, opening_float, status, operator)
		VALUES ($1, $2, $3, $4)
		RETURNING session_id;
	`
	var id int64
	err := t.tx.QueryRow(ctx, query, m.OpenedAt, m.OpeningFloat, m.Status, m.Operator).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, singleOpenSessionRule) {
			return 0, apperrors.ErrSessionAlreadyOpen
		}
		return 0, storageError("failed to insert till session", err)
	}
	return id, nil
}

func (t *pgxTx) InsertMovement(ctx context.Context, movement domain.Movement) (int64, error) {
	m := mapping.ToModelMovement(movement)
	// The row is only written while its session is open.
	query := `
		INSERT INTO movements (session_id, direction, concept, amount, method, reference_kind, reference_id, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE EXISTS (SELECT 1 FROM till_sessions WHERE session_id = $1 AND status = 'OPEN')
		RETURNING movement_id;
	`
	var id int64
	err := t.tx.QueryRow(ctx, query,
		m.SessionID, m.Direction, m.Concept, m.Amount, m.Method, m.ReferenceKind, m.ReferenceID, m.CreatedAt,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: session %d", apperrors.ErrNoOpenSession, m.SessionID)
		}
		return 0, storageError("failed to insert movement", err)
	}
	return id, nil
}

func (t *pgxTx) ListMovementsBySession(ctx context.Context, sessionID int64) ([]domain.Movement, error) {
	return listMovements(ctx, t.tx, sessionID)
}

func (t *pgxTx) CloseSession(ctx context.Context, sessionID int64, closedAt time.Time, totals domain.SessionTotals) error {
	query := `
		UPDATE till_sessions
		SET status = 'CLOSED', closed_at = $2,
			cash_in = $3, cash_out = $4, qr_in = $5, credit_in = $6,
			total_in = $7, total_out = $8, expected_cash = $9, counted_cash = $10, variance = $11
		WHERE session_id = $1 AND status = 'OPEN';
	`
	tag, err := t.tx.Exec(ctx, query, sessionID, closedAt,
		totals.CashIn, totals.CashOut, totals.QRIn, totals.CreditIn,
		totals.TotalIn, totals.TotalOut, totals.ExpectedCash, totals.CountedCash, totals.Variance,
	)
	if err != nil {
		return storageError(fmt.Sprintf("failed to close till session %d", sessionID), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: session %d", apperrors.ErrNoOpenSession, sessionID)
	}
	return nil
}

// --- commerce writes ---

func (t *pgxTx) GetProductsForUpdate(ctx context.Context, productIDs []int64) (map[int64]domain.Product, error) {
	products := make(map[int64]domain.Product, len(productIDs))
	if len(productIDs) == 0 {
		return products, nil
	}
	ids := append([]int64(nil), productIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = ANY($1) ORDER BY product_id FOR UPDATE;`
	rows, err := t.tx.Query(ctx, query, ids)
	if err != nil {
		return nil, storageError("failed to lock products", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanProduct(rows)
		if err != nil {
			return nil, storageError("failed to scan product", err)
		}
		products[m.ProductID] = mapping.ToDomainProduct(m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate products", err)
	}

	for _, id := range ids {
		if _, ok := products[id]; !ok {
			return nil, fmt.Errorf("%w: product %d", apperrors.ErrNotFound, id)
		}
	}
	return products, nil
}

func (t *pgxTx) AdjustStock(ctx context.Context, productID int64, delta int) error {
	tag, err := t.tx.Exec(ctx, `UPDATE products SET stock = stock + $2 WHERE product_id = $1;`, productID, delta)
	if err != nil {
		return storageError(fmt.Sprintf("failed to adjust stock of product %d", productID), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", apperrors.ErrNotFound, productID)
	}
	return nil
}

func (t *pgxTx) InsertSale(ctx context.Context, sale domain.Sale) (int64, error) {
	m, items := mapping.ToModelSale(sale)
	query := `
		INSERT INTO sales (session_id, total, method, cash_amount, qr_amount, customer, customer_phone, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING sale_id;
	`
	var saleID int64
	err := t.tx.QueryRow(ctx, query,
		m.SessionID, m.Total, m.Method, m.CashAmount, m.QRAmount, m.Customer, m.Phone, m.CreatedAt, m.CreatedBy,
	).Scan(&saleID)
	if err != nil {
		return 0, storageError("failed to insert sale", err)
	}

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
			INSERT INTO sale_items (sale_id, line_no, product_id, quantity, unit_price, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6);
		`, saleID, it.LineNo, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal)
	}
	if err := t.sendBatch(ctx, batch); err != nil {
		return 0, storageError(fmt.Sprintf("failed to insert items of sale %d", saleID), err)
	}
	return saleID, nil
}

func (t *pgxTx) InsertPurchase(ctx context.Context, purchase domain.Purchase) (int64, error) {
	m, items := mapping.ToModelPurchase(purchase)
	query := `
		INSERT INTO purchases (session_id, kind, total, method, supplier, description, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING purchase_id;
	`
	var purchaseID int64
	err := t.tx.QueryRow(ctx, query,
		m.SessionID, m.Kind, m.Total, m.Method, m.Supplier, m.Description, m.CreatedAt, m.CreatedBy,
	).Scan(&purchaseID)
	if err != nil {
		return 0, storageError("failed to insert purchase", err)
	}

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
			INSERT INTO purchase_items (purchase_id, line_no, product_id, quantity, unit_cost)
			VALUES ($1, $2, $3, $4, $5);
		`, purchaseID, it.LineNo, it.ProductID, it.Quantity, it.UnitCost)
	}
	if err := t.sendBatch(ctx, batch); err != nil {
		return 0, storageError(fmt.Sprintf("failed to insert items of purchase %d", purchaseID), err)
	}
	return purchaseID, nil
}

func (t *pgxTx) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := t.tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}

func (t *pgxTx) InsertCreditAccount(ctx context.Context, account domain.CreditAccount) (int64, error) {
	m := mapping.ToModelCreditAccount(account)
	query := `
		INSERT INTO credit_accounts (sale_id, customer, customer_phone, total, paid, outstanding, status, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING credit_id;
	`
	var id int64
	err := t.tx.QueryRow(ctx, query, m.SaleID, m.Customer, m.Phone, m.Total, m.Paid, m.Outstanding, m.Status, m.OpenedAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "") {
			return 0, fmt.Errorf("%w: sale %d already has a credit account", apperrors.ErrDuplicate, m.SaleID)
		}
		return 0, storageError("failed to insert credit account", err)
	}
	return id, nil
}

func (t *pgxTx) LockCreditAccount(ctx context.Context, creditID int64) (*domain.CreditAccount, error) {
	return getCredit(ctx, t.tx, `SELECT `+creditColumns+` FROM credit_accounts WHERE credit_id = $1 FOR UPDATE;`, creditID)
}

func (t *pgxTx) UpdateCreditAccount(ctx context.Context, account domain.CreditAccount) error {
	m := mapping.ToModelCreditAccount(account)
	tag, err := t.tx.Exec(ctx, `
		UPDATE credit_accounts SET paid = $2, outstanding = $3, status = $4
		WHERE credit_id = $1;
	`, m.CreditID, m.Paid, m.Outstanding, m.Status)
	if err != nil {
		return storageError(fmt.Sprintf("failed to update credit account %d", m.CreditID), err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: credit account %d", apperrors.ErrNotFound, m.CreditID)
	}
	return nil
}

func (t *pgxTx) InsertCreditPayment(ctx context.Context, payment domain.CreditPayment) (int64, error) {
	m := mapping.ToModelCreditPayment(payment)
	query := `
		INSERT INTO credit_payments (credit_id, session_id, amount, method, notes, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING payment_id;
	`
	var id int64
	err := t.tx.QueryRow(ctx, query, m.CreditID, m.SessionID, m.Amount, m.Method, m.Notes, m.CreatedAt, m.CreatedBy).Scan(&id)
	if err != nil {
		return 0, storageError("failed to insert credit payment", err)
	}
	return id, nil
}
