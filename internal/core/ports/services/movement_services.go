package services

import (
	"context"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MovementRecorderSvc appends movements to the open session.
type MovementRecorderSvc interface {
	// RecordMovement fails with apperrors.ErrNoOpenSession when sessionID is
	// not the currently open session.
	RecordMovement(ctx context.Context, sessionID int64, draft domain.MovementDraft) (int64, error)

	// RecordWithdrawal takes cash out of the open session.
	RecordWithdrawal(ctx context.Context, amount decimal.Decimal, concept string, operator string) (*domain.Movement, error)
}

// MovementReaderSvc lists the movements of a session.
type MovementReaderSvc interface {
	ListMovements(ctx context.Context, sessionID int64) ([]domain.Movement, error)
}

// MovementSvcFacade combines the movement interfaces.
type MovementSvcFacade interface {
	MovementRecorderSvc
	MovementReaderSvc
}
