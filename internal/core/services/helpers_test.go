package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/core/services"
	"github.com/SscSPs/licoreria_pos/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// laPaz has no daylight saving time, which keeps day arithmetic in tests exact.
var laPaz = time.FixedZone("BOT", -4*60*60)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// --- Mock Notifier ---
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// eventRecorder keeps every event it is handed.
type eventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *eventRecorder) Notify(_ context.Context, event domain.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]domain.EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}

func (r *eventRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fixture wires every service to one memory store.
type fixture struct {
	store  *memory.Store
	clock  *fakeClock
	events *eventRecorder

	till           portssvc.TillSvcFacade
	reconciliation portssvc.ReconciliationSvc
	movement       portssvc.MovementSvcFacade
	commerce       portssvc.CommerceSvcFacade
	reporting      portssvc.ReportingService
}

func newFixture(start time.Time) *fixture {
	f := &fixture{
		store:  memory.NewStore(),
		clock:  &fakeClock{now: start},
		events: &eventRecorder{},
	}
	opts := []services.ServiceOption{
		services.WithNotifier(f.events),
		services.WithClock(f.clock.Now),
		services.WithLocation(laPaz),
	}
	f.till = services.NewTillService(f.store, opts...)
	f.reconciliation = services.NewReconciliationService(f.store, opts...)
	f.movement = services.NewMovementService(f.store, opts...)
	f.commerce = services.NewCommerceService(f.store, 3, opts...)
	f.reporting = services.NewReportingService(f.store, opts...)
	return f
}

func cashIn(concept, amount string) domain.MovementDraft {
	return domain.MovementDraft{
		Direction: domain.DirectionIn,
		Concept:   concept,
		Amount:    dec(amount),
		Method:    domain.MethodPtr(domain.MethodCash),
	}
}

func cashOut(concept, amount string) domain.MovementDraft {
	return domain.MovementDraft{
		Direction: domain.DirectionOut,
		Concept:   concept,
		Amount:    dec(amount),
		Method:    domain.MethodPtr(domain.MethodCash),
	}
}
