package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	"github.com/SscSPs/licoreria_pos/internal/models"
	"github.com/SscSPs/licoreria_pos/internal/utils/mapping"
	"github.com/SscSPs/licoreria_pos/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `product_id, name, category, price, stock, min_stock`

const creditColumns = `credit_id, sale_id, customer, customer_phone, total, paid, outstanding, status, opened_at`

// PgxCommerceRepository owns the catalog and the sale, purchase and credit records.
type PgxCommerceRepository struct {
	BaseRepository
}

func newPgxCommerceRepository(pool *pgxpool.Pool) *PgxCommerceRepository {
	return &PgxCommerceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CommerceStore = (*PgxCommerceRepository)(nil)

// --- catalog ---

func (r *PgxCommerceRepository) CreateProduct(ctx context.Context, product domain.Product) (int64, error) {
	m := mapping.ToModelProduct(product)
	query := `
		INSERT INTO products (name, category, price, stock, min_stock)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING product_id;
	`
	var id int64
	err := r.Pool.QueryRow(ctx, query, m.Name, m.Category, m.Price, m.Stock, m.MinStock).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "") {
			return 0, fmt.Errorf("%w: product %q already exists", apperrors.ErrDuplicate, m.Name)
		}
		return 0, storageError("failed to create product", err)
	}
	return id, nil
}

func (r *PgxCommerceRepository) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1;`
	m, err := scanProduct(r.Pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError(fmt.Sprintf("failed to get product %d", productID), err)
	}
	p := mapping.ToDomainProduct(m)
	return &p, nil
}

func (r *PgxCommerceRepository) UpdateProduct(ctx context.Context, product domain.Product) error {
	m := mapping.ToModelProduct(product)
	tag, err := r.Pool.Exec(ctx, `
		UPDATE products SET name = $2, category = $3, price = $4, stock = $5, min_stock = $6
		WHERE product_id = $1;
	`, m.ProductID, m.Name, m.Category, m.Price, m.Stock, m.MinStock)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: product %q already exists", apperrors.ErrDuplicate, m.Name)
		}
		return storageError(fmt.Sprintf("failed to update product %d", m.ProductID), err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxCommerceRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return listProducts(ctx, r.Pool)
}

// --- sales ---

const saleColumns = `sale_id, session_id, total, method, cash_amount, qr_amount, customer, customer_phone, created_at, created_by`

func (r *PgxCommerceRepository) ListSales(ctx context.Context, dr domain.DateRange) ([]domain.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, sale_id;
	`
	sales, err := r.querySales(ctx, query, dr.From, dr.To)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(sales))
	for i, m := range sales {
		ids[i] = m.SaleID
	}
	items, err := r.saleItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Sale, 0, len(sales))
	for _, m := range sales {
		result = append(result, mapping.ToDomainSale(m, items[m.SaleID]))
	}
	return result, nil
}

func (r *PgxCommerceRepository) GetSale(ctx context.Context, saleID int64) (*domain.Sale, error) {
	sales, err := r.querySales(ctx, `SELECT `+saleColumns+` FROM sales WHERE sale_id = $1;`, saleID)
	if err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return nil, apperrors.ErrNotFound
	}
	items, err := r.saleItems(ctx, []int64{saleID})
	if err != nil {
		return nil, err
	}
	sale := mapping.ToDomainSale(sales[0], items[saleID])
	return &sale, nil
}

func (r *PgxCommerceRepository) querySales(ctx context.Context, query string, args ...any) ([]models.Sale, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to list sales", err)
	}
	defer rows.Close()

	var sales []models.Sale
	for rows.Next() {
		var m models.Sale
		if err := rows.Scan(&m.SaleID, &m.SessionID, &m.Total, &m.Method, &m.CashAmount, &m.QRAmount,
			&m.Customer, &m.Phone, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, storageError("failed to scan sale", err)
		}
		sales = append(sales, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate sales", err)
	}
	return sales, nil
}

func (r *PgxCommerceRepository) saleItems(ctx context.Context, saleIDs []int64) (map[int64][]models.SaleItem, error) {
	items := make(map[int64][]models.SaleItem, len(saleIDs))
	if len(saleIDs) == 0 {
		return items, nil
	}
	query := `
		SELECT sale_id, line_no, product_id, quantity, unit_price, subtotal
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, line_no;
	`
	rows, err := r.Pool.Query(ctx, query, saleIDs)
	if err != nil {
		return nil, storageError("failed to list sale items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it models.SaleItem
		if err := rows.Scan(&it.SaleID, &it.LineNo, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal); err != nil {
			return nil, storageError("failed to scan sale item", err)
		}
		items[it.SaleID] = append(items[it.SaleID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate sale items", err)
	}
	return items, nil
}

// --- purchases ---

const purchaseColumns = `purchase_id, session_id, kind, total, method, supplier, description, created_at, created_by`

const maxPurchasePage = 500

func (r *PgxCommerceRepository) ListPurchases(ctx context.Context, dr domain.DateRange) ([]domain.Purchase, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM purchases
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, purchase_id;
	`
	purchases, err := r.queryPurchases(ctx, query, dr.From, dr.To)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(purchases))
	for i, m := range purchases {
		ids[i] = m.PurchaseID
	}
	items, err := r.purchaseItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Purchase, 0, len(purchases))
	for _, m := range purchases {
		result = append(result, mapping.ToDomainPurchase(m, items[m.PurchaseID]))
	}
	return result, nil
}

func (r *PgxCommerceRepository) FindPurchases(ctx context.Context, filter domain.PurchaseFilter) ([]domain.Purchase, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Kind != nil {
		conds = append(conds, "kind = "+arg(string(*filter.Kind)))
	}
	if filter.From != nil {
		conds = append(conds, "created_at >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "created_at < "+arg(*filter.To))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p := arg("%" + search + "%")
		conds = append(conds, "(supplier ILIKE "+p+" OR description ILIKE "+p+")")
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + purchaseColumns + ` FROM purchases`)
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY created_at DESC, purchase_id DESC LIMIT " + arg(pagination.NormalizeLimit(filter.Limit, maxPurchasePage)) + ";")

	purchases, err := r.queryPurchases(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Purchase, 0, len(purchases))
	for _, m := range purchases {
		result = append(result, mapping.ToDomainPurchase(m, nil))
	}
	return result, nil
}

func (r *PgxCommerceRepository) GetPurchase(ctx context.Context, purchaseID int64) (*domain.Purchase, error) {
	purchases, err := r.queryPurchases(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE purchase_id = $1;`, purchaseID)
	if err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return nil, apperrors.ErrNotFound
	}
	items, err := r.purchaseItems(ctx, []int64{purchaseID})
	if err != nil {
		return nil, err
	}
	purchase := mapping.ToDomainPurchase(purchases[0], items[purchaseID])
	return &purchase, nil
}

func (r *PgxCommerceRepository) queryPurchases(ctx context.Context, query string, args ...any) ([]models.Purchase, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, storageError("failed to list purchases", err)
	}
	defer rows.Close()

	var purchases []models.Purchase
	for rows.Next() {
		var m models.Purchase
		if err := rows.Scan(&m.PurchaseID, &m.SessionID, &m.Kind, &m.Total, &m.Method, &m.Supplier, &m.Description, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, storageError("failed to scan purchase", err)
		}
		purchases = append(purchases, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate purchases", err)
	}
	return purchases, nil
}

func (r *PgxCommerceRepository) purchaseItems(ctx context.Context, purchaseIDs []int64) (map[int64][]models.PurchaseItem, error) {
	items := make(map[int64][]models.PurchaseItem, len(purchaseIDs))
	if len(purchaseIDs) == 0 {
		return items, nil
	}
	rows, err := r.Pool.Query(ctx, `
		SELECT purchase_id, line_no, product_id, quantity, unit_cost
		FROM purchase_items
		WHERE purchase_id = ANY($1)
		ORDER BY purchase_id, line_no;
	`, purchaseIDs)
	if err != nil {
		return nil, storageError("failed to list purchase items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it models.PurchaseItem
		if err := rows.Scan(&it.PurchaseID, &it.LineNo, &it.ProductID, &it.Quantity, &it.UnitCost); err != nil {
			return nil, storageError("failed to scan purchase item", err)
		}
		items[it.PurchaseID] = append(items[it.PurchaseID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate purchase items", err)
	}
	return items, nil
}

// --- credits ---

func (r *PgxCommerceRepository) ListCreditPayments(ctx context.Context, dr domain.DateRange) ([]domain.CreditPayment, error) {
	query := `
		SELECT payment_id, credit_id, session_id, amount, method, notes, created_at, created_by
		FROM credit_payments
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, payment_id;
	`
	rows, err := r.Pool.Query(ctx, query, dr.From, dr.To)
	if err != nil {
		return nil, storageError("failed to list credit payments", err)
	}
	defer rows.Close()

	payments := make([]domain.CreditPayment, 0)
	for rows.Next() {
		var m models.CreditPayment
		if err := rows.Scan(&m.PaymentID, &m.CreditID, &m.SessionID, &m.Amount, &m.Method, &m.Notes, &m.CreatedAt, &m.CreatedBy); err != nil {
			return nil, storageError("failed to scan credit payment", err)
		}
		payments = append(payments, mapping.ToDomainCreditPayment(m))
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate credit payments", err)
	}
	return payments, nil
}

func (r *PgxCommerceRepository) ListCreditsOpened(ctx context.Context, dr domain.DateRange) ([]domain.CreditAccount, error) {
	return r.listCredits(ctx, "opened_at >= $1 AND opened_at < $2", "opened_at, credit_id", dr.From, dr.To)
}

func (r *PgxCommerceRepository) ListOutstandingCredits(ctx context.Context) ([]domain.CreditAccount, error) {
	return r.listCredits(ctx, "status <> 'PAID'", "opened_at, credit_id")
}

func (r *PgxCommerceRepository) ListCredits(ctx context.Context, filter domain.CreditFilter) ([]domain.CreditAccount, error) {
	conds := []string{"TRUE"}
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Status != nil {
		conds = append(conds, "status = "+arg(string(*filter.Status)))
	}
	if filter.Outstanding {
		conds = append(conds, "status <> 'PAID'")
	}
	if customer := strings.TrimSpace(filter.Customer); customer != "" {
		conds = append(conds, "lower(customer) = lower("+arg(customer)+")")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		p := arg("%" + search + "%")
		conds = append(conds, "(customer ILIKE "+p+" OR customer_phone ILIKE "+p+")")
	}
	return r.listCredits(ctx, strings.Join(conds, " AND "), "opened_at DESC, credit_id DESC", args...)
}

func (r *PgxCommerceRepository) listCredits(ctx context.Context, where, orderBy string, args ...any) ([]domain.CreditAccount, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + creditColumns + ` FROM credit_accounts WHERE `)
	sb.WriteString(where)
	sb.WriteString(` ORDER BY ` + orderBy + `;`)

	rows, err := r.Pool.Query(ctx, sb.String(), args...)
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

func (r *PgxCommerceRepository) GetCreditAccount(ctx context.Context, creditID int64) (*domain.CreditAccount, error) {
	return getCredit(ctx, r.Pool, `SELECT `+creditColumns+` FROM credit_accounts WHERE credit_id = $1;`, creditID)
}

// --- shared by the pool and transactions ---

func scanProduct(row pgx.Row) (models.Product, error) {
	var m models.Product
	err := row.Scan(&m.ProductID, &m.Name, &m.Category, &m.Price, &m.Stock, &m.MinStock)
	return m, err
}

func listProducts(ctx context.Context, q querier) ([]domain.Product, error) {
	rows, err := q.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY product_id;`)
	if err != nil {
		return nil, storageError("failed to list products", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		m, err := scanProduct(rows)
		if err != nil {
			return nil, storageError("failed to scan product", err)
		}
		products = append(products, mapping.ToDomainProduct(m))
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate products", err)
	}
	return products, nil
}

func scanCredit(row pgx.Row) (models.CreditAccount, error) {
	var m models.CreditAccount
	err := row.Scan(&m.CreditID, &m.SaleID, &m.Customer, &m.Phone, &m.Total, &m.Paid, &m.Outstanding, &m.Status, &m.OpenedAt)
	return m, err
}

func getCredit(ctx context.Context, q querier, query string, creditID int64) (*domain.CreditAccount, error) {
	m, err := scanCredit(q.QueryRow(ctx, query, creditID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError(fmt.Sprintf("failed to get credit account %d", creditID), err)
	}
	credit := mapping.ToDomainCreditAccount(m)
	return &credit, nil
}
