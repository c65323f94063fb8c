package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
)

// LedgerReader reads till sessions and their movements.
type LedgerReader interface {
	// GetSession returns apperrors.ErrNotFound for unknown ids.
	GetSession(ctx context.Context, sessionID int64) (*domain.TillSession, error)
	// GetOpenSession returns apperrors.ErrNotFound when the till is closed.
	GetOpenSession(ctx context.Context) (*domain.TillSession, error)
	// ListSessions orders by opening time, newest first, and returns the token
	// of the next page when more rows exist.
	ListSessions(ctx context.Context, filter domain.SessionFilter) ([]domain.TillSession, *string, error)
	// ListMovementsBySession orders newest first.
	ListMovementsBySession(ctx context.Context, sessionID int64) ([]domain.Movement, error)
}

// LedgerTx holds the ledger writes. They are only reachable inside WithinTx so
// that status checks and writes share one transaction.
type LedgerTx interface {
	// ShareLockOpenSession returns the open session and blocks it from closing
	// until the transaction ends. Returns apperrors.ErrNoOpenSession when none is open.
	ShareLockOpenSession(ctx context.Context) (*domain.TillSession, error)
	// LockSession takes an exclusive lock on the session row.
	LockSession(ctx context.Context, sessionID int64) (*domain.TillSession, error)
	// InsertSession returns apperrors.ErrSessionAlreadyOpen when another
	// session is open, enforced by the storage uniqueness rule.
	InsertSession(ctx context.Context, session domain.TillSession) (int64, error)
	InsertMovement(ctx context.Context, movement domain.Movement) (int64, error)
	ListMovementsBySession(ctx context.Context, sessionID int64) ([]domain.Movement, error)
	// CloseSession freezes totals and flips the status. It only updates an open
	// session and returns apperrors.ErrNoOpenSession otherwise.
	CloseSession(ctx context.Context, sessionID int64, closedAt time.Time, totals domain.SessionTotals) error
}

// LedgerStore is the persistence port of the till ledger.
type LedgerStore interface {
	LedgerReader
	TransactionManager
}
