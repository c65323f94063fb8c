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

const maxPageSize = 200

const sessionColumns = `session_id, opened_at, closed_at, opening_float, status, operator,
	cash_in, cash_out, qr_in, credit_in, total_in, total_out, expected_cash, counted_cash, variance`

const movementColumns = `movement_id, session_id, direction, concept, amount, method, reference_kind, reference_id, created_at`

// PgxTillRepository reads till sessions and their movements.
type PgxTillRepository struct {
	BaseRepository
}

func newPgxTillRepository(pool *pgxpool.Pool) *PgxTillRepository {
	return &PgxTillRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerStore = (*PgxTillRepository)(nil)

func (r *PgxTillRepository) GetSession(ctx context.Context, sessionID int64) (*domain.TillSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM till_sessions WHERE session_id = $1;`
	return getSession(ctx, r.Pool, query, sessionID)
}

func (r *PgxTillRepository) GetOpenSession(ctx context.Context) (*domain.TillSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM till_sessions WHERE status = 'OPEN';`
	return getSession(ctx, r.Pool, query)
}

func (r *PgxTillRepository) ListSessions(ctx context.Context, filter domain.SessionFilter) ([]domain.TillSession, *string, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		conds = append(conds, "status = "+arg(string(*filter.Status)))
	}
	if filter.OpenedFrom != nil {
		conds = append(conds, "opened_at >= "+arg(*filter.OpenedFrom))
	}
	if filter.OpenedTo != nil {
		conds = append(conds, "opened_at < "+arg(*filter.OpenedTo))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		afterTime, afterID, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		conds = append(conds, fmt.Sprintf("(opened_at, session_id) < (%s, %s)", arg(afterTime), arg(afterID)))
	}

	limit := pagination.NormalizeLimit(filter.Limit, maxPageSize)
	query := `SELECT ` + sessionColumns + ` FROM till_sessions`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	// Fetch one extra row to know whether another page exists.
	query += " ORDER BY opened_at DESC, session_id DESC LIMIT " + arg(limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
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

func (r *PgxTillRepository) ListMovementsBySession(ctx context.Context, sessionID int64) ([]domain.Movement, error) {
	return listMovements(ctx, r.Pool, sessionID)
}

// --- shared by the pool and transactions ---

func getSession(ctx context.Context, q querier, query string, args ...any) (*domain.TillSession, error) {
	m, err := scanSession(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, storageError("failed to read till session", err)
	}
	session := mapping.ToDomainTillSession(m)
	return &session, nil
}

func scanSession(row pgx.Row) (models.TillSession, error) {
	var m models.TillSession
	err := row.Scan(
		&m.SessionID,
		&m.OpenedAt,
		&m.ClosedAt,
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
	return m, err
}

func listMovements(ctx context.Context, q querier, sessionID int64) ([]domain.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE session_id = $1 ORDER BY movement_id DESC;`
	rows, err := q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, storageError(fmt.Sprintf("failed to list movements of session %d", sessionID), err)
	}
	defer rows.Close()

	var ms []models.Movement
	for rows.Next() {
		var m models.Movement
		if err := rows.Scan(
			&m.MovementID,
			&m.SessionID,
			&m.Direction,
			&m.Concept,
			&m.Amount,
			&m.Method,
			&m.ReferenceKind,
			&m.ReferenceID,
			&m.CreatedAt,
		); err != nil {
			return nil, storageError("failed to scan movement", err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("failed to iterate movements", err)
	}
	return mapping.ToDomainMovementSlice(ms), nil
}
