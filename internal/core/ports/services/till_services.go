package services

import (
	"context"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/SscSPs/licoreria_pos/internal/dto"
	"github.com/shopspring/decimal"
)

// TillReaderSvc defines read operations for till sessions
type TillReaderSvc interface {
	// GetOpenSession returns nil without error when the till is closed.
	GetOpenSession(ctx context.Context) (*domain.TillSession, error)

	// GetSession returns apperrors.ErrNotFound for unknown ids.
	GetSession(ctx context.Context, sessionID int64) (*domain.TillSession, error)

	// ListClosedSessions lists closed sessions, newest opening first, and
	// returns the token of the next page when there is one.
	ListClosedSessions(ctx context.Context, params dto.ListSessionsParams) ([]domain.TillSession, *string, error)
}

// TillWriterSvc defines the session lifecycle writes owned by the session manager.
type TillWriterSvc interface {
	// OpenSession fails with apperrors.ErrSessionAlreadyOpen while another session is open.
	OpenSession(ctx context.Context, openingFloat decimal.Decimal, operator string) (int64, error)
}

// TillSvcFacade combines the till session interfaces.
type TillSvcFacade interface {
	TillReaderSvc
	TillWriterSvc
}

// ReconciliationSvc aggregates movements and closes sessions.
type ReconciliationSvc interface {
	// Summarize never fails for an existing session, even without movements.
	Summarize(ctx context.Context, sessionID int64) (*domain.Summary, error)

	// CloseSession freezes the totals of the open session and marks it closed.
	CloseSession(ctx context.Context, sessionID int64, countedCash decimal.Decimal, operator string) (*domain.CloseResult, error)
}
