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

const maxPageSize = 200

const sessionColumns = `session_id, opened_at, closed_at, opening_float, status, operator,
	cash_in, cash_out, qr_in, credit_in, total_in, total_out, expected_cash, counted_cash, variance`

const movementColumns = `movement_id, session_id, direction, concept, amount, method, reference_kind, reference_id, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) GetSession(ctx context.Context, sessionID int64) (*domain.TillSession, error) {
	return getSession(ctx, s.db, `SELECT `+sessionColumns+` FROM till_sessions WHERE session_id = ?`, sessionID)
}

func (s *Store) GetOpenSession(ctx context.Context) (*domain.TillSession, error) {
	return getSession(ctx, s.db, `SELECT `+sessionColumns+` FROM till_sessions WHERE status = 'OPEN'`)
}

func (s *Store) ListSessions(ctx context.Context, filter domain.SessionFilter) ([]domain.TillSession, *string, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.OpenedFrom != nil {
		conds = append(conds, "opened_at >= ?")
		args = append(args, toNanos(*filter.OpenedFrom))
	}
	if filter.OpenedTo != nil {
		conds = append(conds, "opened_at < ?")
		args = append(args, toNanos(*filter.OpenedTo))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		afterTime, afterID, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		after := toNanos(afterTime)
		conds = append(conds, "(opened_at < ? OR (opened_at = ? AND session_id < ?))")
		args = append(args, after, after, afterID)
	}

	limit := pagination.NormalizeLimit(filter.Limit, maxPageSize)
	query := `SELECT ` + sessionColumns + ` FROM till_sessions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY opened_at DESC, session_id DESC LIMIT ?"
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, storageError("failed to list till sessions", err)
	}
	defer rows.Close()

	sessions := make([]domain.TillSession, 0, limit)
	for rows.Next() {
		m, err := scanSession(rows)
		if err != nil {
			return nil, nil, storageError("failed to scan till session", err)
		}
		sessions = append(sessions, mapping.ToDomainTillSession(m))
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storageError("failed to iterate till sessions", err)
	}

	if len(sessions) <= limit {
		return sessions, nil, nil
	}
	sessions = sessions[:limit]
	last := sessions[len(sessions)-1]
	token := pagination.EncodeToken(last.OpenedAt, last.SessionID)
	return sessions, &token, nil
}

func (s *Store) ListMovementsBySession(ctx context.Context, sessionID int64) ([]domain.Movement, error) {
	return listMovements(ctx, s.db, sessionID)
}

func getSession(ctx context.Context, q queryer, query string, args ...any) (*domain.TillSession, error) {
	m, err := scanSession(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError("failed to read till session", err)
	}
	session := mapping.ToDomainTillSession(m)
	return &session, nil
}

func scanSession(row rowScanner) (models.TillSession, error) {
	var (
		m        models.TillSession
		openedAt int64
		closedAt sql.NullInt64
	)
	err := row.Scan(
		&m.SessionID,
		&openedAt,
		&closedAt,
		&m.OpeningFloat,
		&m.Status,
		&m.Operator,
		&m.CashIn,
		&m.CashOut,
		&m.QRIn,
		&m.CreditIn,
		&m.TotalIn,
		&m.TotalOut,
		&m.ExpectedCash,
		&m.CountedCash,
		&m.Variance,
	)
	if err != nil {
		return m, err
	}
	m.OpenedAt = fromNanos(openedAt)
	if closedAt.Valid {
		t := fromNanos(closedAt.Int64)
		m.ClosedAt = &t
	}
	return m, nil
}

func listMovements(ctx context.Context, q queryer, sessionID int64) ([]domain.Movement, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+movementColumns+` FROM movements WHERE session_id = ? ORDER BY movement_id DESC`, sessionID)
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to list movements of session %d", sessionID), err)
	}
	defer rows.Close()

	var ms []models.Movement
	for rows.Next() {
		var (
			m         models.Movement
			createdAt int64
		)
		if err := rows.Scan(
			&m.MovementID,
			&m.SessionID,
			&m.Direction,
			&m.Concept,
			&m.Amount,
			&m.Method,
			&m.ReferenceKind,
			&m.ReferenceID,
			&createdAt,
		); err != nil {
			return nil, storageError("failed to scan movement", err)
		}
		m.CreatedAt = fromNanos(createdAt)
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate movements", err)
	}
	return mapping.ToDomainMovementSlice(ms), nil
}
