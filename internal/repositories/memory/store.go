// Package memory is an in-process implementation of the storage ports. It backs
// the service tests and DB_DRIVER=memory; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	"github.com/SscSPs/licoreria_pos/internal/utils/pagination"
)

const maxPageSize = 200

var (
	_ portsrepo.LedgerStore         = (*Store)(nil)
	_ portsrepo.CommerceStore       = (*Store)(nil)
	_ portsrepo.ReportingRepository = (*Store)(nil)
	_ portsrepo.Tx                  = (*memTx)(nil)
)

type sequences struct {
	session, movement, product, sale, purchase, credit, payment int64
}

type state struct {
	sessions  map[int64]domain.TillSession
	movements []domain.Movement
	products  map[int64]domain.Product
	sales     []domain.Sale
	purchases []domain.Purchase
	credits   map[int64]domain.CreditAccount
	payments  []domain.CreditPayment
	seq       sequences
}

func newState() *state {
	return &state{
		sessions: make(map[int64]domain.TillSession),
		products: make(map[int64]domain.Product),
		credits:  make(map[int64]domain.CreditAccount),
	}
}

func (s *state) clone() *state {
	c := &state{
		sessions:  make(map[int64]domain.TillSession, len(s.sessions)),
		movements: append([]domain.Movement(nil), s.movements...),
		products:  make(map[int64]domain.Product, len(s.products)),
		sales:     append([]domain.Sale(nil), s.sales...),
		purchases: append([]domain.Purchase(nil), s.purchases...),
		credits:   make(map[int64]domain.CreditAccount, len(s.credits)),
		payments:  append([]domain.CreditPayment(nil), s.payments...),
		seq:       s.seq,
	}
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.credits {
		c.credits[k] = v
	}
	return c
}

// Store keeps every record in maps guarded by one RWMutex. Transactions run
// one at a time on a copy of the state that replaces it on commit.
type Store struct {
	mu    sync.RWMutex
	state *state

	failMovementInserts error
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: newState()}
}

// RepositoryProvider exposes the store through every repository port.
func (s *Store) RepositoryProvider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:    s,
		CommerceRepo:  s,
		ReportingRepo: s,
		Close:         func() {},
	}
}

// FailMovementInserts makes every later InsertMovement return err. Pass nil to
// stop failing.
func (s *Store) FailMovementInserts(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failMovementInserts = err
}

// WithinTx runs fn against a private copy of the state.
func (s *Store) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{st: s.state.clone(), failMovementInserts: s.failMovementInserts}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.state = tx.st
	return nil
}

// --- ledger reads ---

func (s *Store) GetSession(_ context.Context, sessionID int64) (*domain.TillSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.state.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &session, nil
}

func (s *Store) GetOpenSession(_ context.Context) (*domain.TillSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if open := s.state.openSession(); open != nil {
		return open, nil
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListSessions(_ context.Context, filter domain.SessionFilter) ([]domain.TillSession, *string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		afterTime time.Time
		afterID   int64
		hasCursor bool
	)
	if filter.NextToken != nil && *filter.NextToken != "" {
		var err error
		afterTime, afterID, err = pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		hasCursor = true
	}

	matched := make([]domain.TillSession, 0)
	for _, session := range s.state.sessions {
		if filter.Status != nil && session.Status != *filter.Status {
			continue
		}
		if filter.OpenedFrom != nil && session.OpenedAt.Before(*filter.OpenedFrom) {
			continue
		}
		if filter.OpenedTo != nil && !session.OpenedAt.Before(*filter.OpenedTo) {
			continue
		}
		if hasCursor && !olderThan(session, afterTime, afterID) {
			continue
		}
		matched = append(matched, session)
	}
	sort.Slice(matched, func(i, j int) bool {
		return olderThan(matched[j], matched[i].OpenedAt, matched[i].SessionID)
	})

	limit := pagination.NormalizeLimit(filter.Limit, maxPageSize)
	if len(matched) <= limit {
		return matched, nil, nil
	}
	page := matched[:limit]
	last := page[len(page)-1]
	token := pagination.EncodeToken(last.OpenedAt, last.SessionID)
	return page, &token, nil
}

// olderThan orders sessions by (OpenedAt, SessionID) descending.
func olderThan(s domain.TillSession, t time.Time, id int64) bool {
	if s.OpenedAt.Equal(t) {
		return s.SessionID < id
	}
	return s.OpenedAt.Before(t)
}

func (s *Store) ListMovementsBySession(_ context.Context, sessionID int64) ([]domain.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.movementsOf(sessionID), nil
}

// --- catalog ---

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.state.products {
		if strings.EqualFold(existing.Name, product.Name) {
			return 0, fmt.Errorf("%w: product %q already exists", apperrors.ErrDuplicate, product.Name)
		}
	}
	s.state.seq.product++
	product.ProductID = s.state.seq.product
	s.state.products[product.ProductID] = product
	return product.ProductID, nil
}

func (s *Store) GetProduct(_ context.Context, productID int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.products[productID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.products[product.ProductID]; !ok {
		return apperrors.ErrNotFound
	}
	for id, existing := range s.state.products {
		if id != product.ProductID && strings.EqualFold(existing.Name, product.Name) {
			return fmt.Errorf("%w: product %q already exists", apperrors.ErrDuplicate, product.Name)
		}
	}
	s.state.products[product.ProductID] = product
	return nil
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := make([]domain.Product, 0, len(s.state.products))
	for _, p := range s.state.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ProductID < products[j].ProductID })
	return products, nil
}

// --- commerce reads ---

func (s *Store) ListSales(_ context.Context, r domain.DateRange) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sales := make([]domain.Sale, 0)
	for _, sale := range s.state.sales {
		if r.Contains(sale.CreatedAt) {
			sales = append(sales, sale)
		}
	}
	return sales, nil
}

func (s *Store) GetSale(_ context.Context, saleID int64) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sale := range s.state.sales {
		if sale.SaleID == saleID {
			sale.Items = append([]domain.SaleItem(nil), sale.Items...)
			return &sale, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListPurchases(_ context.Context, r domain.DateRange) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	purchases := make([]domain.Purchase, 0)
	for _, p := range s.state.purchases {
		if r.Contains(p.CreatedAt) {
			purchases = append(purchases, p)
		}
	}
	return purchases, nil
}

func (s *Store) FindPurchases(_ context.Context, filter domain.PurchaseFilter) ([]domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	purchases := make([]domain.Purchase, 0)
	for i := len(s.state.purchases) - 1; i >= 0; i-- {
		p := s.state.purchases[i]
		if filter.Kind != nil && p.Kind != *filter.Kind {
			continue
		}
		if filter.From != nil && p.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !p.CreatedAt.Before(*filter.To) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Supplier), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		p.Items = nil
		purchases = append(purchases, p)
	}
	sort.SliceStable(purchases, func(i, j int) bool { return purchases[i].CreatedAt.After(purchases[j].CreatedAt) })
	if limit := pagination.NormalizeLimit(filter.Limit, maxPageSize); len(purchases) > limit {
		purchases = purchases[:limit]
	}
	return purchases, nil
}

func (s *Store) GetPurchase(_ context.Context, purchaseID int64) (*domain.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.state.purchases {
		if p.PurchaseID == purchaseID {
			p.Items = append([]domain.PurchaseItem(nil), p.Items...)
			return &p, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListCreditPayments(_ context.Context, r domain.DateRange) ([]domain.CreditPayment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payments := make([]domain.CreditPayment, 0)
	for _, p := range s.state.payments {
		if r.Contains(p.CreatedAt) {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

func (s *Store) ListCreditsOpened(_ context.Context, r domain.DateRange) ([]domain.CreditAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.creditsWhere(func(c domain.CreditAccount) bool { return r.Contains(c.OpenedAt) }), nil
}

func (s *Store) ListOutstandingCredits(_ context.Context) ([]domain.CreditAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.creditsWhere(func(c domain.CreditAccount) bool { return c.Status != domain.CreditPaid }), nil
}

func (s *Store) ListCredits(_ context.Context, filter domain.CreditFilter) ([]domain.CreditAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	customer := strings.TrimSpace(filter.Customer)
	credits := s.state.creditsWhere(func(c domain.CreditAccount) bool {
		if filter.Status != nil && c.Status != *filter.Status {
			return false
		}
		if filter.Outstanding && c.Status == domain.CreditPaid {
			return false
		}
		if customer != "" && !strings.EqualFold(c.Customer, customer) {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Customer), search) &&
			!strings.Contains(strings.ToLower(c.CustomerPhone), search) {
			return false
		}
		return true
	})
	sort.SliceStable(credits, func(i, j int) bool {
		if credits[i].OpenedAt.Equal(credits[j].OpenedAt) {
			return credits[i].CreditID > credits[j].CreditID
		}
		return credits[i].OpenedAt.After(credits[j].OpenedAt)
	})
	return credits, nil
}

func (s *Store) GetCreditAccount(_ context.Context, creditID int64) (*domain.CreditAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.state.credits[creditID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

// --- state helpers ---

func (st *state) openSession() *domain.TillSession {
	for _, session := range st.sessions {
		if session.IsOpen() {
			found := session
			return &found
		}
	}
	return nil
}

func (st *state) movementsOf(sessionID int64) []domain.Movement {
	movements := make([]domain.Movement, 0)
	for i := len(st.movements) - 1; i >= 0; i-- {
		if st.movements[i].SessionID == sessionID {
			movements = append(movements, st.movements[i])
		}
	}
	return movements
}

func (st *state) creditsWhere(keep func(domain.CreditAccount) bool) []domain.CreditAccount {
	credits := make([]domain.CreditAccount, 0)
	for _, c := range st.credits {
		if keep(c) {
			credits = append(credits, c)
		}
	}
	sort.Slice(credits, func(i, j int) bool { return credits[i].CreditID < credits[j].CreditID })
	return credits
}
