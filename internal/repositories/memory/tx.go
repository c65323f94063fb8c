package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
)

// memTx mutates the staged copy owned by one WithinTx call.
type memTx struct {
	st                  *state
	failMovementInserts error
}

func (tx *memTx) ShareLockOpenSession(_ context.Context) (*domain.TillSession, error) {
	if open := tx.st.openSession(); open != nil {
		return open, nil
	}
	return nil, apperrors.ErrNoOpenSession
}

func (tx *memTx) LockSession(_ context.Context, sessionID int64) (*domain.TillSession, error) {
	session, ok := tx.st.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &session, nil
}

func (tx *memTx) InsertSession(_ context.Context, session domain.TillSession) (int64, error) {
	if session.IsOpen() && tx.st.openSession() != nil {
		return 0, apperrors.ErrSessionAlreadyOpen
	}
	tx.st.seq.session++
	session.SessionID = tx.st.seq.session
	tx.st.sessions[session.SessionID] = session
	return session.SessionID, nil
}

func (tx *memTx) InsertMovement(_ context.Context, movement domain.Movement) (int64, error) {
	if tx.failMovementInserts != nil {
		return 0, apperrors.NewAppError(500, "failed to insert movement", tx.failMovementInserts)
	}
	session, ok := tx.st.sessions[movement.SessionID]
	if !ok || !session.IsOpen() {
		return 0, fmt.Errorf("%w: session %d", apperrors.ErrNoOpenSession, movement.SessionID)
	}
	tx.st.seq.movement++
	movement.MovementID = tx.st.seq.movement
	tx.st.movements = append(tx.st.movements, movement)
	return movement.MovementID, nil
}

func (tx *memTx) ListMovementsBySession(_ context.Context, sessionID int64) ([]domain.Movement, error) {
	return tx.st.movementsOf(sessionID), nil
}

func (tx *memTx) CloseSession(_ context.Context, sessionID int64, closedAt time.Time, totals domain.SessionTotals) error {
	session, ok := tx.st.sessions[sessionID]
	if !ok || !session.IsOpen() {
		return fmt.Errorf("%w: session %d", apperrors.ErrNoOpenSession, sessionID)
	}
	session.Status = domain.SessionClosed
	session.ClosedAt = &closedAt
	session.Totals = totals
	tx.st.sessions[sessionID] = session
	return nil
}

func (tx *memTx) GetProductsForUpdate(_ context.Context, productIDs []int64) (map[int64]domain.Product, error) {
	products := make(map[int64]domain.Product, len(productIDs))
	for _, id := range productIDs {
		p, ok := tx.st.products[id]
		if !ok {
			return nil, fmt.Errorf("%w: product %d", apperrors.ErrNotFound, id)
		}
		products[id] = p
	}
	return products, nil
}

func (tx *memTx) AdjustStock(_ context.Context, productID int64, delta int) error {
	p, ok := tx.st.products[productID]
	if !ok {
		return fmt.Errorf("%w: product %d", apperrors.ErrNotFound, productID)
	}
	p.Stock += delta
	tx.st.products[productID] = p
	return nil
}

func (tx *memTx) InsertSale(_ context.Context, sale domain.Sale) (int64, error) {
	tx.st.seq.sale++
	sale.SaleID = tx.st.seq.sale
	sale.Items = append([]domain.SaleItem(nil), sale.Items...)
	tx.st.sales = append(tx.st.sales, sale)
	return sale.SaleID, nil
}

func (tx *memTx) InsertPurchase(_ context.Context, purchase domain.Purchase) (int64, error) {
	tx.st.seq.purchase++
	purchase.PurchaseID = tx.st.seq.purchase
	purchase.Items = append([]domain.PurchaseItem(nil), purchase.Items...)
	tx.st.purchases = append(tx.st.purchases, purchase)
	return purchase.PurchaseID, nil
}

func (tx *memTx) InsertCreditAccount(_ context.Context, account domain.CreditAccount) (int64, error) {
	tx.st.seq.credit++
	account.CreditID = tx.st.seq.credit
	tx.st.credits[account.CreditID] = account
	return account.CreditID, nil
}

func (tx *memTx) LockCreditAccount(_ context.Context, creditID int64) (*domain.CreditAccount, error) {
	c, ok := tx.st.credits[creditID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

func (tx *memTx) UpdateCreditAccount(_ context.Context, account domain.CreditAccount) error {
	if _, ok := tx.st.credits[account.CreditID]; !ok {
		return apperrors.ErrNotFound
	}
	tx.st.credits[account.CreditID] = account
	return nil
}

func (tx *memTx) InsertCreditPayment(_ context.Context, payment domain.CreditPayment) (int64, error) {
	tx.st.seq.payment++
	payment.PaymentID = tx.st.seq.payment
	tx.st.payments = append(tx.st.payments, payment)
	return payment.PaymentID, nil
}
