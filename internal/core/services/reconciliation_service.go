package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// reconciliationService computes session summaries and closes the till.
type reconciliationService struct {
	BaseService
	ledgerRepo portsrepo.LedgerStore
}

// NewReconciliationService creates the reconciliation engine.
func NewReconciliationService(ledgerRepo portsrepo.LedgerStore, options ...ServiceOption) portssvc.ReconciliationSvc {
	return &reconciliationService{
		BaseService: newBaseService(options),
		ledgerRepo:  ledgerRepo,
	}
}

var _ portssvc.ReconciliationSvc = (*reconciliationService)(nil)

func (s *reconciliationService) Summarize(ctx context.Context, sessionID int64) (*domain.Summary, error) {
	session, err := s.ledgerRepo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to read session for summary", slog.Int64("session_id", sessionID))
		return nil, fmt.Errorf("failed to read till session %d: %w", sessionID, err)
	}
	movements, err := s.ledgerRepo.ListMovementsBySession(ctx, sessionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read movements for summary", slog.Int64("session_id", sessionID))
		return nil, fmt.Errorf("failed to list movements of session %d: %w", sessionID, err)
	}

	summary := domain.Summarize(*session, movements)
	return &summary, nil
}

func (s *reconciliationService) CloseSession(ctx context.Context, sessionID int64, countedCash decimal.Decimal, operator string) (*domain.CloseResult, error) {
	if countedCash.IsNegative() {
		return nil, fmt.Errorf("%w: counted cash cannot be negative", apperrors.ErrInvalidAmount)
	}
	if err := domain.ValidateCents(countedCash, "counted cash"); err != nil {
		return nil, err
	}

	var result domain.CloseResult
	err := s.ledgerRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		session, err := tx.LockSession(ctx, sessionID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("%w: session %d does not exist", apperrors.ErrNoOpenSession, sessionID)
			}
			return err
		}
		if !session.IsOpen() {
			return fmt.Errorf("%w: session %d is already closed", apperrors.ErrNoOpenSession, sessionID)
		}

		// The exclusive lock keeps movements out until the status flips.
		movements, err := tx.ListMovementsBySession(ctx, sessionID)
		if err != nil {
			return err
		}
		summary := domain.Summarize(*session, movements)
		totals := summary.Freeze(countedCash)
		closedAt := s.Now()

		if err := tx.CloseSession(ctx, sessionID, closedAt, totals); err != nil {
			return err
		}

		session.Status = domain.SessionClosed
		session.ClosedAt = &closedAt
		session.Totals = totals
		result = domain.CloseResult{Session: *session, Summary: summary, Totals: totals}
		return nil
	})
	if err != nil {
		return nil, s.ledgerWriteError(ctx, err, "Failed to close till session",
			slog.Int64("session_id", sessionID), slog.String("operator", operator))
	}

	s.LogInfo(ctx, "Till session closed",
		slog.Int64("session_id", sessionID),
		slog.String("operator", operator),
		slog.String("expected_cash", result.Totals.ExpectedCash.String()),
		slog.String("counted_cash", result.Totals.CountedCash.String()),
		slog.String("variance", result.Totals.Variance.String()))
	s.Publish(ctx, domain.EventSessionClosed, domain.SessionClosedPayload{SessionID: sessionID, Totals: result.Totals})
	return &result, nil
}
