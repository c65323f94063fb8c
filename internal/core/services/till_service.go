package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portsrepo "github.com/SscSPs/licoreria_pos/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/dto"
	"github.com/shopspring/decimal"
)

// tillService owns the session lifecycle up to, but not including, close.
type tillService struct {
	BaseService
	ledgerRepo portsrepo.LedgerStore
}

// NewTillService creates the till session manager.
func NewTillService(ledgerRepo portsrepo.LedgerStore, options ...ServiceOption) portssvc.TillSvcFacade {
	return &tillService{
		BaseService: newBaseService(options),
		ledgerRepo:  ledgerRepo,
	}
}

var _ portssvc.TillSvcFacade = (*tillService)(nil)

func (s *tillService) OpenSession(ctx context.Context, openingFloat decimal.Decimal, operator string) (int64, error) {
	if openingFloat.IsNegative() {
		return 0, fmt.Errorf("%w: opening float cannot be negative", apperrors.ErrInvalidAmount)
	}
	if err := domain.ValidateCents(openingFloat, "opening float"); err != nil {
		return 0, err
	}
	operator = strings.TrimSpace(operator)
	if operator == "" {
		return 0, fmt.Errorf("%w: operator is required", apperrors.ErrValidation)
	}

	session := domain.TillSession{
		OpenedAt:     s.Now(),
		OpeningFloat: openingFloat,
		Status:       domain.SessionOpen,
		Operator:     operator,
	}

	var sessionID int64
	err := s.ledgerRepo.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Tx) error {
		id, err := tx.InsertSession(ctx, session)
		if err != nil {
			return err
		}
		sessionID = id
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionAlreadyOpen) {
			s.LogWarn(ctx, err, "Rejected opening a second till session", slog.String("operator", operator))
			return 0, err
		}
		s.LogError(ctx, err, "Failed to open till session", slog.String("operator", operator))
		return 0, fmt.Errorf("failed to open till session: %w", err)
	}

	s.LogInfo(ctx, "Till session opened",
		slog.Int64("session_id", sessionID),
		slog.String("operator", operator),
		slog.String("opening_float", openingFloat.String()))
	s.Publish(ctx, domain.EventSessionOpened, domain.SessionOpenedPayload{SessionID: sessionID, Operator: operator})
	return sessionID, nil
}

func (s *tillService) GetOpenSession(ctx context.Context) (*domain.TillSession, error) {
	session, err := s.ledgerRepo.GetOpenSession(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		s.LogError(ctx, err, "Failed to read open till session")
		return nil, fmt.Errorf("failed to read open till session: %w", err)
	}
	return session, nil
}

func (s *tillService) GetSession(ctx context.Context, sessionID int64) (*domain.TillSession, error) {
	session, err := s.ledgerRepo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.LogError(ctx, err, "Failed to read till session", slog.Int64("session_id", sessionID))
		return nil, fmt.Errorf("failed to read till session %d: %w", sessionID, err)
	}
	return session, nil
}

func (s *tillService) ListClosedSessions(ctx context.Context, params dto.ListSessionsParams) ([]domain.TillSession, *string, error) {
	if params.From != nil && params.To != nil && params.From.After(*params.To) {
		return nil, nil, fmt.Errorf("%w: from date is after to date", apperrors.ErrValidation)
	}

	closed := domain.SessionClosed
	filter := domain.SessionFilter{
		Status:    &closed,
		Limit:     params.Limit,
		NextToken: params.NextToken,
	}
	if params.From != nil {
		from := s.dayStart(*params.From)
		filter.OpenedFrom = &from
	}
	if params.To != nil {
		to := s.dayStart(*params.To).AddDate(0, 0, 1)
		filter.OpenedTo = &to
	}

	sessions, nextToken, err := s.ledgerRepo.ListSessions(ctx, filter)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			return nil, nil, err
		}
		s.LogError(ctx, err, "Failed to list closed till sessions")
		return nil, nil, fmt.Errorf("failed to list closed till sessions: %w", err)
	}
	return sessions, nextToken, nil
}
