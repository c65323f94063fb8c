package dto

import (
	"time"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	"github.com/SscSPs/licoreria_pos/internal/utils"
	"github.com/shopspring/decimal"
)

// OpenSessionRequest defines the data needed to open the till.
type OpenSessionRequest struct {
	OpeningFloat decimal.Decimal `json:"openingFloat" binding:"gte=0"`
}

// CloseSessionRequest carries the physically counted cash.
type CloseSessionRequest struct {
	CountedCash decimal.Decimal `json:"countedCash" binding:"gte=0"`
}

// WithdrawalRequest takes cash out of the drawer.
type WithdrawalRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"gt=0"`
	Concept string          `json:"concept" binding:"max=200"`
}

// ListSessionsParams filters the closed-session history. From and To are
// calendar dates (YYYY-MM-DD) matched against the opening date, inclusive.
type ListSessionsParams struct {
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
	Limit     int        `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken *string    `form:"nextToken"`
}

// ListSessionsResponse is one page of session history.
type ListSessionsResponse struct {
	Sessions  []SessionResponse `json:"sessions"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// SessionResponse mirrors domain.TillSession with display strings.
type SessionResponse struct {
	domain.TillSession
	OpeningFloatDisplay string  `json:"openingFloatDisplay"`
	ExpectedCashDisplay *string `json:"expectedCashDisplay,omitempty"`
	VarianceDisplay     *string `json:"varianceDisplay,omitempty"`
}

// OpenSessionResponse returns the id of the new session.
type OpenSessionResponse struct {
	SessionID int64 `json:"sessionID"`
}

// CurrentSessionResponse wraps the open session, or null when the till is closed.
type CurrentSessionResponse struct {
	Session *SessionResponse `json:"session"`
	Summary *SummaryResponse `json:"summary,omitempty"`
}

// SummaryResponse mirrors domain.Summary with the expected cash formatted.
type SummaryResponse struct {
	domain.Summary
	ExpectedCashDisplay string `json:"expectedCashDisplay"`
}

// CloseSessionResponse is shown to the operator after counting the drawer.
type CloseSessionResponse struct {
	Session             SessionResponse      `json:"session"`
	Summary             domain.Summary       `json:"summary"`
	Totals              domain.SessionTotals `json:"totals"`
	ExpectedCashDisplay string               `json:"expectedCashDisplay"`
	CountedCashDisplay  string               `json:"countedCashDisplay"`
	VarianceDisplay     string               `json:"varianceDisplay"`
}

// MovementResponse mirrors domain.Movement with the amount formatted.
type MovementResponse struct {
	domain.Movement
	AmountDisplay string `json:"amountDisplay"`
}

// SessionDetailResponse is the session detail view.
type SessionDetailResponse struct {
	Session   SessionResponse    `json:"session"`
	Summary   SummaryResponse    `json:"summary"`
	Movements []MovementResponse `json:"movements"`
}

// ToSessionResponse formats a session for display in currency.
func ToSessionResponse(s *domain.TillSession, currency string) SessionResponse {
	resp := SessionResponse{
		TillSession:         *s,
		OpeningFloatDisplay: utils.FormatMoney(s.OpeningFloat, currency),
	}
	if !s.IsOpen() {
		expected := utils.FormatMoney(s.Totals.ExpectedCash, currency)
		variance := utils.FormatMoney(s.Totals.Variance, currency)
		resp.ExpectedCashDisplay = &expected
		resp.VarianceDisplay = &variance
	}
	return resp
}

// ToListSessionResponse maps a page of sessions.
func ToListSessionResponse(sessions []domain.TillSession, currency string) []SessionResponse {
	resp := make([]SessionResponse, len(sessions))
	for i := range sessions {
		resp[i] = ToSessionResponse(&sessions[i], currency)
	}
	return resp
}

func ToSummaryResponse(s *domain.Summary, currency string) SummaryResponse {
	return SummaryResponse{
		Summary:             *s,
		ExpectedCashDisplay: utils.FormatMoney(s.ExpectedCash, currency),
	}
}

func ToMovementResponse(m *domain.Movement, currency string) MovementResponse {
	return MovementResponse{
		Movement:      *m,
		AmountDisplay: utils.FormatMoney(m.Amount, currency),
	}
}

func ToMovementResponses(movements []domain.Movement, currency string) []MovementResponse {
	resp := make([]MovementResponse, len(movements))
	for i := range movements {
		resp[i] = ToMovementResponse(&movements[i], currency)
	}
	return resp
}

func ToCloseSessionResponse(r *domain.CloseResult, currency string) CloseSessionResponse {
	return CloseSessionResponse{
		Session:             ToSessionResponse(&r.Session, currency),
		Summary:             r.Summary,
		Totals:              r.Totals,
		ExpectedCashDisplay: utils.FormatMoney(r.Totals.ExpectedCash, currency),
		CountedCashDisplay:  utils.FormatMoney(r.Totals.CountedCash, currency),
		VarianceDisplay:     utils.FormatMoney(r.Totals.Variance, currency),
	}
}

func ToSessionDetailResponse(d *domain.SessionDetail, currency string) SessionDetailResponse {
	return SessionDetailResponse{
		Session:   ToSessionResponse(&d.Session, currency),
		Summary:   ToSummaryResponse(&d.Summary, currency),
		Movements: ToMovementResponses(d.Movements, currency),
	}
}
