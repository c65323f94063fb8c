package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// movementService appends movements to the open till session.
type movementService struct {
	BaseService
	ledgerRepo portsrepo.LedgerStore
}

// NewMovementService creates the movement recorder.
func NewMovementService(ledgerRepo portsrepo.LedgerStore, options ...ServiceOption) portssvc.MovementSvcFacade {
	return &movementService{
		BaseService: newBaseService(options),
		ledgerRepo:  ledgerRepo,
	}
}

var _ portssvc.MovementSvcFacade = (*movementService)(nil)

func (s *movementService) RecordMovement(ctx context.Context, sessionID int64, draft domain.MovementDraft) (int64, error) {
	if err := draft.Validate(); err != nil {
		return 0, err
	}

	var recorded []domain.Movement
	err := s.ledgerRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		if _, err := requireOpenSession(ctx, tx, &sessionID); err != nil {
			return err
		}
		var err error
		recorded, err = insertMovements(ctx, tx, sessionID, []domain.MovementDraft{draft}, s.Now())
		return err
	})
	if err != nil {
		return 0, s.ledgerWriteError(ctx, err, "Failed to record movement", slog.Int64("session_id", sessionID))
	}

	s.announceMovements(ctx, recorded)
	return recorded[0].MovementID, nil
}

func (s *movementService) RecordWithdrawal(ctx context.Context, amount decimal.Decimal, concept string, operator string) (*domain.Movement, error) {
	draft := domain.WithdrawalMovement(amount, concept)
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	var recorded []domain.Movement
	err := s.ledgerRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		session, err := requireOpenSession(ctx, tx, nil)
		if err != nil {
			return err
		}
		recorded, err = insertMovements(ctx, tx, session.SessionID, []domain.MovementDraft{draft}, s.Now())
		return err
	})
	if err != nil {
		return nil, s.ledgerWriteError(ctx, err, "Failed to record cash withdrawal", slog.String("operator", operator))
	}

	m := recorded[0]
	s.LogInfo(ctx, "Cash withdrawn from till",
		slog.Int64("session_id", m.SessionID),
		slog.Int64("movement_id", m.MovementID),
		slog.String("amount", m.Amount.String()),
		slog.String("operator", operator))
	s.announceMovements(ctx, recorded)
	s.Publish(ctx, domain.EventCashWithdrawn, domain.CashWithdrawnPayload{
		SessionID:  m.SessionID,
		MovementID: m.MovementID,
		Amount:     m.Amount.String(),
	})
	return &m, nil
}

func (s *movementService) ListMovements(ctx context.Context, sessionID int64) ([]domain.Movement, error) {
	if _, err := s.ledgerRepo.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read till session %d: %w", sessionID, err)
	}
	movements, err := s.ledgerRepo.ListMovementsBySession(ctx, sessionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list movements", slog.Int64("session_id", sessionID))
		return nil, fmt.Errorf("failed to list movements of session %d: %w", sessionID, err)
	}
	return movements, nil
}

// requireOpenSession share-locks the open session inside tx. When sessionID is
// given it must be that session.
func requireOpenSession(ctx context.Context, tx portsrepo.LedgerTx, sessionID *int64) (*domain.TillSession, error) {
	open, err := tx.ShareLockOpenSession(ctx)
	if err != nil {
		return nil, err
	}
	if sessionID != nil && open.SessionID != *sessionID {
		return nil, fmt.Errorf("%w: session %d is not the open session", apperrors.ErrNoOpenSession, *sessionID)
	}
	return open, nil
}

// insertMovements validates and stores drafts against sessionID.
func insertMovements(ctx context.Context, tx portsrepo.LedgerTx, sessionID int64, drafts []domain.MovementDraft, at time.Time) ([]domain.Movement, error) {
	recorded := make([]domain.Movement, 0, len(drafts))
	for _, draft := range drafts {
		if err := draft.Validate(); err != nil {
			return nil, err
		}
		m := domain.NewMovement(sessionID, draft, at)
		id, err := tx.InsertMovement(ctx, m)
		if err != nil {
			return nil, err
		}
		m.MovementID = id
		recorded = append(recorded, m)
	}
	return recorded, nil
}

// announceMovements publishes one movement-recorded event per movement.
func (s *BaseService) announceMovements(ctx context.Context, movements []domain.Movement) {
	for _, m := range movements {
		payload := domain.MovementRecordedPayload{
			MovementID: m.MovementID,
			SessionID:  m.SessionID,
			Direction:  m.Direction,
		}
		if m.Method != nil {
			payload.Method = string(*m.Method)
		}
		s.Publish(ctx, domain.EventMovementRecorded, payload)
	}
}

// ledgerWriteError logs a failed transactional write at the right level and
// returns the error to hand back. Business rejections pass through unwrapped.
func (s *BaseService) ledgerWriteError(ctx context.Context, err error, msg string, keyvals ...any) error {
	switch {
	case errors.Is(err, apperrors.ErrNoOpenSession),
		errors.Is(err, apperrors.ErrSessionAlreadyOpen),
		errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidAmount),
		errors.Is(err, apperrors.ErrNotFound):
		s.LogWarn(ctx, err, msg, keyvals...)
		return err
	}
	s.LogError(ctx, err, msg, keyvals...)
	return fmt.Errorf("%s: %w", msg, err)
}
