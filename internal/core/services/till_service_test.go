package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/apperrors"
	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/core/services"
	"github.com/SscSPs/licoreria_pos/internal/dto"
	"github.com/SscSPs/licoreria_pos/internal/repositories/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Test Suite ---
type TillServiceTestSuite struct {
	suite.Suite
	store        *memory.Store
	mockNotifier *MockNotifier
	clock        *fakeClock
	service      portssvc.TillSvcFacade
	closer       portssvc.ReconciliationSvc
}

func (suite *TillServiceTestSuite) SetupTest() {
	suite.store = memory.NewStore()
	suite.mockNotifier = new(MockNotifier)
	suite.clock = &fakeClock{now: time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)}
	opts := []services.ServiceOption{
		services.WithNotifier(suite.mockNotifier),
		services.WithClock(suite.clock.Now),
		services.WithLocation(laPaz),
	}
	suite.service = services.NewTillService(suite.store, opts...)
	suite.closer = services.NewReconciliationService(suite.store, opts...)
}

func (suite *TillServiceTestSuite) expectEvents() {
	suite.mockNotifier.On("Notify", mock.Anything, mock.AnythingOfType("domain.Event")).Return(nil)
}

// --- Test Cases ---

func (suite *TillServiceTestSuite) TestOpenSession_Success() {
	ctx := context.Background()
	suite.mockNotifier.On("Notify", ctx, mock.MatchedBy(func(e domain.Event) bool {
		p, ok := e.Payload.(domain.SessionOpenedPayload)
		return ok && e.Type == domain.EventSessionOpened && p.Operator == "ana" && p.SessionID == 1
	})).Return(nil).Once()

	id, err := suite.service.OpenSession(ctx, dec("100.00"), "ana")

	suite.Require().NoError(err)
	suite.Equal(int64(1), id)

	open, err := suite.service.GetOpenSession(ctx)
	suite.Require().NoError(err)
	suite.Require().NotNil(open)
	suite.Equal(id, open.SessionID)
	suite.Equal(domain.SessionOpen, open.Status)
	suite.True(open.OpeningFloat.Equal(dec("100")))
	suite.Nil(open.ClosedAt)
	suite.Equal(suite.clock.Now(), open.OpenedAt)
	suite.mockNotifier.AssertExpectations(suite.T())
}

func (suite *TillServiceTestSuite) TestOpenSession_SecondOpenRejected() {
	ctx := context.Background()
	suite.expectEvents()

	_, err := suite.service.OpenSession(ctx, dec("100"), "ana")
	suite.Require().NoError(err)

	id, err := suite.service.OpenSession(ctx, dec("50"), "luis")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrSessionAlreadyOpen)
	suite.Zero(id)
	suite.mockNotifier.AssertNumberOfCalls(suite.T(), "Notify", 1)
}

func (suite *TillServiceTestSuite) TestOpenSession_NegativeFloat() {
	id, err := suite.service.OpenSession(context.Background(), dec("-1"), "ana")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Zero(id)
	suite.mockNotifier.AssertNotCalled(suite.T(), "Notify", mock.Anything, mock.Anything)
}

func (suite *TillServiceTestSuite) TestOpenSession_ZeroFloatAllowed() {
	suite.expectEvents()
	_, err := suite.service.OpenSession(context.Background(), dec("0"), "ana")
	suite.NoError(err)
}

func (suite *TillServiceTestSuite) TestOpenSession_MissingOperator() {
	_, err := suite.service.OpenSession(context.Background(), dec("10"), "  ")
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TillServiceTestSuite) TestOpenSession_NotifierFailureIsNotReturned() {
	suite.mockNotifier.On("Notify", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	id, err := suite.service.OpenSession(context.Background(), dec("10"), "ana")

	suite.Require().NoError(err)
	suite.NotZero(id)
}

func (suite *TillServiceTestSuite) TestGetOpenSession_NoneOpen() {
	open, err := suite.service.GetOpenSession(context.Background())
	suite.NoError(err)
	suite.Nil(open)
}

func (suite *TillServiceTestSuite) TestGetSession_NotFound() {
	session, err := suite.service.GetSession(context.Background(), 42)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(session)
}

func (suite *TillServiceTestSuite) TestListClosedSessions_PagesNewestFirst() {
	ctx := context.Background()
	suite.expectEvents()

	day := time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		suite.clock.Set(day.AddDate(0, 0, i))
		id, err := suite.service.OpenSession(ctx, dec("10"), "ana")
		suite.Require().NoError(err)
		_, err = suite.closer.CloseSession(ctx, id, dec("10"), "ana")
		suite.Require().NoError(err)
	}
	// The open session is excluded from history.
	_, err := suite.service.OpenSession(ctx, dec("10"), "ana")
	suite.Require().NoError(err)

	first, next, err := suite.service.ListClosedSessions(ctx, dto.ListSessionsParams{Limit: 2})
	suite.Require().NoError(err)
	suite.Require().Len(first, 2)
	suite.Require().NotNil(next)
	suite.Equal(int64(3), first[0].SessionID)
	suite.Equal(int64(2), first[1].SessionID)

	rest, next, err := suite.service.ListClosedSessions(ctx, dto.ListSessionsParams{Limit: 2, NextToken: next})
	suite.Require().NoError(err)
	suite.Nil(next)
	suite.Require().Len(rest, 1)
	suite.Equal(int64(1), rest[0].SessionID)
}

func (suite *TillServiceTestSuite) TestListClosedSessions_DateBoundsAreInclusive() {
	ctx := context.Background()
	suite.expectEvents()

	// 2024-03-01 23:30 in La Paz is already March 2nd in UTC.
	for _, at := range []time.Time{
		time.Date(2024, 3, 2, 3, 30, 0, 0, time.UTC),
		time.Date(2024, 3, 3, 15, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC),
	} {
		suite.clock.Set(at)
		id, err := suite.service.OpenSession(ctx, dec("0"), "ana")
		suite.Require().NoError(err)
		_, err = suite.closer.CloseSession(ctx, id, dec("0"), "ana")
		suite.Require().NoError(err)
	}

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	sessions, _, err := suite.service.ListClosedSessions(ctx, dto.ListSessionsParams{From: &from, To: &to})

	suite.Require().NoError(err)
	suite.Require().Len(sessions, 2)
	suite.Equal(int64(2), sessions[0].SessionID)
	suite.Equal(int64(1), sessions[1].SessionID)
}

func (suite *TillServiceTestSuite) TestListClosedSessions_InvertedRange() {
	from := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, _, err := suite.service.ListClosedSessions(context.Background(), dto.ListSessionsParams{From: &from, To: &to})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *TillServiceTestSuite) TestListClosedSessions_BadToken() {
	bad := "not-a-token"
	_, _, err := suite.service.ListClosedSessions(context.Background(), dto.ListSessionsParams{NextToken: &bad})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Run Test Suite ---
func TestTillService(t *testing.T) {
	suite.Run(t, new(TillServiceTestSuite))
}
