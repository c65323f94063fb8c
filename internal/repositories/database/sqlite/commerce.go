package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/SscSPs/licoreria_pos/internal/models"
	"github.com/SscSPs/licoreria_pos/internal/utils/mapping"
	"github.com/SscSPs/licoreria_pos/internal/utils/pagination"
)

const productColumns = `product_id, name, category, price, stock, min_stock`

const saleColumns = `sale_id, session_id, total, method, cash_amount, qr_amount, customer, customer_phone, created_at, created_by`

const purchaseColumns = `purchase_id, session_id, kind, total, method, supplier, description, created_at, created_by`

const creditColumns = `credit_id, sale_id, customer, customer_phone, total, paid, outstanding, status, opened_at`

// itemBatchSize keeps IN lists well under SQLite's bound-parameter limit.
const itemBatchSize = 500

const maxPurchasePage = 500

// --- catalog ---

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (int64, error) {
	m := mapping.ToModelProduct(product)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, category, price, stock, min_stock) VALUES (?, ?, ?, ?, ?)`,
		m.Name, m.Category, m.Price, m.Stock, m.MinStock,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: product %q already exists", apperrors.ErrDuplicate, m.Name)
		}
		return 0, storageError("failed to create product", err)
	}
	return lastID(res, "product")
}

func (s *Store) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	m, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE product_id = ?`, productID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError(fmt.Sprintf("failed to get product %d", productID), err)
	}
	p := mapping.ToDomainProduct(m)
	return &p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) error {
	m := mapping.ToModelProduct(product)
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, category = ?, price = ?, stock = ?, min_stock = ? WHERE product_id = ?`,
		m.Name, m.Category, m.Price, m.Stock, m.MinStock, m.ProductID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: product %q already exists", apperrors.ErrDuplicate, m.Name)
		}
		return storageError(fmt.Sprintf("failed to update product %d", m.ProductID), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := queryProducts(ctx, s.db, `SELECT `+productColumns+` FROM products ORDER BY product_id`)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Product, 0, len(products))
	for _, m := range products {
		result = append(result, mapping.ToDomainProduct(m))
	}
	return result, nil
}

// --- sales ---

func (s *Store) ListSales(ctx context.Context, r domain.DateRange) ([]domain.Sale, error) {
	sales, err := querySales(ctx, s.db, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at, sale_id`,
		toNanos(r.From), toNanos(r.To),
	)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(sales))
	for i, m := range sales {
		ids[i] = m.SaleID
	}
	items, err := loadSaleItems(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Sale, 0, len(sales))
	for _, m := range sales {
		result = append(result, mapping.ToDomainSale(m, items[m.SaleID]))
	}
	return result, nil
}

func (s *Store) GetSale(ctx context.Context, saleID int64) (*domain.Sale, error) {
	sales, err := querySales(ctx, s.db, `SELECT `+saleColumns+` FROM sales WHERE sale_id = ?`, saleID)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, apperrors.ErrNotFound
	}
	items, err := loadSaleItems(ctx, s.db, []int64{saleID})
	if err != nil {
		return nil, err
	}
	sale := mapping.ToDomainSale(sales[0], items[saleID])
	return &sale, nil
}

// querySales reads sale headers and releases the connection before returning,
// since the pool holds a single connection.
func querySales(ctx context.Context, q queryer, query string, args ...any) ([]models.Sale, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to list sales", err)
	}
	defer rows.Close()

	var sales []models.Sale
	for rows.Next() {
		var (
			m         models.Sale
			createdAt int64
		)
		if err := rows.Scan(&m.SaleID, &m.SessionID, &m.Total, &m.Method, &m.CashAmount, &m.QRAmount,
			&m.Customer, &m.Phone, &createdAt, &m.CreatedBy); err != nil {
			return nil, storageError("failed to scan sale", err)
		}
		m.CreatedAt = fromNanos(createdAt)
		sales = append(sales, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate sales", err)
	}
	return sales, nil
}

func loadSaleItems(ctx context.Context, q queryer, saleIDs []int64) (map[int64][]models.SaleItem, error) {
	items := make(map[int64][]models.SaleItem, len(saleIDs))
	for _, batch := range batchIDs(saleIDs, itemBatchSize) {
		rows, err := q.QueryContext(ctx, `
			SELECT sale_id, line_no, product_id, quantity, unit_price, subtotal
			FROM sale_items
			WHERE sale_id IN (`+placeholders(len(batch))+`)
			ORDER BY sale_id, line_no`, batch...)
		if err != nil {
			return nil, storageError("failed to list sale items", err)
		}
		for rows.Next() {
			var it models.SaleItem
			if err := rows.Scan(&it.SaleID, &it.LineNo, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
				rows.Close()
				return nil, storageError("failed to scan sale item", err)
			}
			items[it.SaleID] = append(items[it.SaleID], it)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, storageError("failed to iterate sale items", err)
		}
	}
	return items, nil
}

// --- purchases ---

func (s *Store) ListPurchases(ctx context.Context, r domain.DateRange) ([]domain.Purchase, error) {
	purchases, err := queryPurchases(ctx, s.db, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at, purchase_id`,
		toNanos(r.From), toNanos(r.To),
	)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(purchases))
	for i, m := range purchases {
		ids[i] = m.PurchaseID
	}
	items, err := loadPurchaseItems(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}

	result := make([]domain.Purchase, 0, len(purchases))
	for _, m := range purchases {
		result = append(result, mapping.ToDomainPurchase(m, items[m.PurchaseID]))
	}
	return result, nil
}

func (s *Store) FindPurchases(ctx context.Context, filter domain.PurchaseFilter) ([]domain.Purchase, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Kind != nil {
		conds = append(conds, "kind = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.From != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, toNanos(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "created_at < ?")
		args = append(args, toNanos(*filter.To))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conds = append(conds, "(supplier LIKE ? OR description LIKE ?)")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}

	query := `SELECT ` + purchaseColumns + ` FROM purchases`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, purchase_id DESC LIMIT ?"
	args = append(args, pagination.NormalizeLimit(filter.Limit, maxPurchasePage))

	purchases, err := queryPurchases(ctx, s.db, query, args...)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Purchase, 0, len(purchases))
	for _, m := range purchases {
		result = append(result, mapping.ToDomainPurchase(m, nil))
	}
	return result, nil
}

func (s *Store) GetPurchase(ctx context.Context, purchaseID int64) (*domain.Purchase, error) {
	purchases, err := queryPurchases(ctx, s.db, `SELECT `+purchaseColumns+` FROM purchases WHERE purchase_id = ?`, purchaseID)
	if err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return nil, apperrors.ErrNotFound
	}
	items, err := loadPurchaseItems(ctx, s.db, []int64{purchaseID})
	if err != nil {
		return nil, err
	}
	purchase := mapping.ToDomainPurchase(purchases[0], items[purchaseID])
	return &purchase, nil
}

func queryPurchases(ctx context.Context, q queryer, query string, args ...any) ([]models.Purchase, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to list purchases", err)
	}
	defer rows.Close()

	var purchases []models.Purchase
	for rows.Next() {
		var (
			m         models.Purchase
			createdAt int64
		)
		if err := rows.Scan(&m.PurchaseID, &m.SessionID, &m.Kind, &m.Total, &m.Method, &m.Supplier, &m.Description, &createdAt, &m.CreatedBy); err != nil {
			return nil, storageError("failed to scan purchase", err)
		}
		m.CreatedAt = fromNanos(createdAt)
		purchases = append(purchases, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate purchases", err)
	}
	return purchases, nil
}

func loadPurchaseItems(ctx context.Context, q queryer, purchaseIDs []int64) (map[int64][]models.PurchaseItem, error) {
	items := make(map[int64][]models.PurchaseItem, len(purchaseIDs))
	for _, batch := range batchIDs(purchaseIDs, itemBatchSize) {
		rows, err := q.QueryContext(ctx, `
			SELECT purchase_id, line_no, product_id, quantity, unit_cost
			FROM purchase_items
			WHERE purchase_id IN (`+placeholders(len(batch))+`)
			ORDER BY purchase_id, line_no`, batch...)
		if err != nil {
			return nil, storageError("failed to list purchase items", err)
		}
		for rows.Next() {
			var it models.PurchaseItem
			if err := rows.Scan(&it.PurchaseID, &it.LineNo, &it.ProductID, &it.Quantity, &it.UnitCost); err != nil {
				rows.Close()
				return nil, storageError("failed to scan purchase item", err)
			}
			items[it.PurchaseID] = append(items[it.PurchaseID], it)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, storageError("failed to iterate purchase items", err)
		}
	}
	return items, nil
}

// --- credits ---

func (s *Store) ListCreditPayments(ctx context.Context, r domain.DateRange) ([]domain.CreditPayment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payment_id, credit_id, session_id, amount, method, notes, created_at, created_by
		FROM credit_payments
		WHERE created_at >= ? AND created_at < ?
		ORDER BY created_at, payment_id`,
		toNanos(r.From), toNanos(r.To),
	)
	if err != nil {
		return nil, storageError("failed to list credit payments", err)
	}
	defer rows.Close()

	payments := make([]domain.CreditPayment, 0)
	for rows.Next() {
		var (
			m         models.CreditPayment
			createdAt int64
		)
		if err := rows.Scan(&m.PaymentID, &m.CreditID, &m.SessionID, &m.Amount, &m.Method, &m.Notes, &createdAt, &m.CreatedBy); err != nil {
			return nil, storageError("failed to scan credit payment", err)
		}
		m.CreatedAt = fromNanos(createdAt)
		payments = append(payments, mapping.ToDomainCreditPayment(m))
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate credit payments", err)
	}
	return payments, nil
}

func (s *Store) ListCreditsOpened(ctx context.Context, r domain.DateRange) ([]domain.CreditAccount, error) {
	return s.listCredits(ctx, "opened_at >= ? AND opened_at < ?", "opened_at, credit_id", toNanos(r.From), toNanos(r.To))
}

func (s *Store) ListOutstandingCredits(ctx context.Context) ([]domain.CreditAccount, error) {
	return s.listCredits(ctx, "status <> 'PAID'", "opened_at, credit_id")
}

func (s *Store) ListCredits(ctx context.Context, filter domain.CreditFilter) ([]domain.CreditAccount, error) {
	conds := []string{"1 = 1"}
	var args []any
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Outstanding {
		conds = append(conds, "status <> 'PAID'")
	}
	if customer := strings.TrimSpace(filter.Customer); customer != "" {
		conds = append(conds, "customer = ? COLLATE NOCASE")
		args = append(args, customer)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conds = append(conds, "(customer LIKE ? OR customer_phone LIKE ?)")
		args = append(args, "%"+search+"%", "%"+search+"%")
	}
	return s.listCredits(ctx, strings.Join(conds, " AND "), "opened_at DESC, credit_id DESC", args...)
}

func (s *Store) listCredits(ctx context.Context, where, orderBy string, args ...any) ([]domain.CreditAccount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+creditColumns+` FROM credit_accounts WHERE `+where+` ORDER BY `+orderBy, args...)
	if err != nil {
		return nil, storageError("failed to list credit accounts", err)
	}
	defer rows.Close()

	credits := make([]domain.CreditAccount, 0)
	for rows.Next() {
		m, err := scanCredit(rows)
		if err != nil {
			return nil, storageError("failed to scan credit account", err)
		}
		credits = append(credits, mapping.ToDomainCreditAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate credit accounts", err)
	}
	return credits, nil
}

func (s *Store) GetCreditAccount(ctx context.Context, creditID int64) (*domain.CreditAccount, error) {
	return getCredit(ctx, s.db, creditID)
}

// --- helpers shared with transactions ---

func scanProduct(row rowScanner) (models.Product, error) {
	var m models.Product
	err := row.Scan(&m.ProductID, &m.Name, &m.Category, &m.Price, &m.Stock, &m.MinStock)
	return m, err
}

func queryProducts(ctx context.Context, q queryer, query string, args ...any) ([]models.Product, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to list products", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		m, err := scanProduct(rows)
		if err != nil {
			return nil, storageError("failed to scan product", err)
		}
		products = append(products, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate products", err)
	}
	return products, nil
}

func scanCredit(row rowScanner) (models.CreditAccount, error) {
	var (
		m        models.CreditAccount
		openedAt int64
	)
	if err := row.Scan(&m.CreditID, &m.SaleID, &m.Customer, &m.Phone, &m.Total, &m.Paid, &m.Outstanding, &m.Status, &openedAt); err != nil {
		return m, err
	}
	m.OpenedAt = fromNanos(openedAt)
	return m, nil
}

func getCredit(ctx context.Context, q queryer, creditID int64) (*domain.CreditAccount, error) {
	m, err := scanCredit(q.QueryRowContext(ctx, `SELECT `+creditColumns+` FROM credit_accounts WHERE credit_id = ?`, creditID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError(fmt.Sprintf("failed to get credit account %d", creditID), err)
	}
	credit := mapping.ToDomainCreditAccount(m)
	return &credit, nil
}

// batchIDs splits ids into query argument lists of at most size entries.
func batchIDs(ids []int64, size int) [][]any {
	var batches [][]any
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batch := make([]any, 0, end-start)
		for _, id := range ids[start:end] {
			batch = append(batch, id)
		}
		batches = append(batches, batch)
	}
	return batches
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func lastID(res sql.Result, what string) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageError("failed to read id of new "+what, err)
	}
	return id, nil
}
