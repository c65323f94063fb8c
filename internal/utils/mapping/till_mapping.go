package mapping

import (
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/SscSPs/licoreria_pos/internal/models"
)

// ToModelTillSession converts a domain TillSession to a model TillSession
func ToModelTillSession(d domain.TillSession) models.TillSession {
	return models.TillSession{
		SessionID:    d.SessionID,
		OpenedAt:     d.OpenedAt,
		ClosedAt:     d.ClosedAt,
		OpeningFloat: d.OpeningFloat,
		Status:       string(d.Status),
		Operator:     d.Operator,
		CashIn:       d.Totals.CashIn,
		CashOut:      d.Totals.CashOut,
		QRIn:         d.Totals.QRIn,
		CreditIn:     d.Totals.CreditIn,
		TotalIn:      d.Totals.TotalIn,
		TotalOut:     d.Totals.TotalOut,
		ExpectedCash: d.Totals.ExpectedCash,
		CountedCash:  d.Totals.CountedCash,
		Variance:     d.Totals.Variance,
	}
}

// ToDomainTillSession converts a model TillSession to a domain TillSession
func ToDomainTillSession(m models.TillSession) domain.TillSession {
	return domain.TillSession{
		SessionID:    m.SessionID,
		OpenedAt:     m.OpenedAt,
		ClosedAt:     m.ClosedAt,
		OpeningFloat: m.OpeningFloat,
		Status:       domain.SessionStatus(m.Status),
		Operator:     m.Operator,
		Totals: domain.SessionTotals{
			CashIn:       m.CashIn,
			CashOut:      m.CashOut,
			QRIn:         m.QRIn,
			CreditIn:     m.CreditIn,
			TotalIn:      m.TotalIn,
			TotalOut:     m.TotalOut,
			ExpectedCash: m.ExpectedCash,
			CountedCash:  m.CountedCash,
			Variance:     m.Variance,
		},
	}
}

// ToModelMovement converts a domain Movement to a model Movement
func ToModelMovement(d domain.Movement) models.Movement {
	m := models.Movement{
		MovementID: d.MovementID,
		SessionID:  d.SessionID,
		Direction:  string(d.Direction),
		Concept:    d.Concept,
		Amount:     d.Amount,
		CreatedAt:  d.CreatedAt,
	}
	if d.Method != nil {
		method := string(*d.Method)
		m.Method = &method
	}
	if d.Reference != nil {
		kind := string(d.Reference.Kind)
		m.ReferenceKind = &kind
		m.ReferenceID = d.Reference.ID
	}
	return m
}

// ToDomainMovement converts a model Movement to a domain Movement
func ToDomainMovement(m models.Movement) domain.Movement {
	d := domain.Movement{
		MovementID: m.MovementID,
		SessionID:  m.SessionID,
		Direction:  domain.Direction(m.Direction),
		Concept:    m.Concept,
		Amount:     m.Amount,
		CreatedAt:  m.CreatedAt,
	}
	if m.Method != nil {
		d.Method = domain.MethodPtr(domain.PaymentMethod(*m.Method))
	}
	if m.ReferenceKind != nil {
		d.Reference = &domain.Reference{Kind: domain.ReferenceKind(*m.ReferenceKind), ID: m.ReferenceID}
	}
	return d
}

// ToDomainMovementSlice converts a slice of model Movements to a slice of domain Movements
func ToDomainMovementSlice(ms []models.Movement) []domain.Movement {
	ds := make([]domain.Movement, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMovement(m)
	}
	return ds
}
