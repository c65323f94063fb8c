package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
	"github.com/SscSPs/licoreria_pos/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	Notifier portssvc.Notifier
	Clock    func() time.Time
	Location *time.Location
}

// ServiceOption configures the shared parts of a service.
type ServiceOption func(*BaseService)

// WithNotifier sets where ledger events are published.
func WithNotifier(n portssvc.Notifier) ServiceOption {
	return func(s *BaseService) {
		s.Notifier = n
	}
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.Clock = clock
	}
}

// WithLocation sets the time zone used for calendar-day boundaries.
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *BaseService) {
		s.Location = loc
	}
}

func newBaseService(options []ServiceOption) BaseService {
	base := BaseService{}
	for _, option := range options {
		option(&base)
	}
	if base.Clock == nil {
		base.Clock = time.Now
	}
	if base.Location == nil {
		base.Location = time.UTC
	}
	return base
}

// Now returns the current instant in UTC.
func (s *BaseService) Now() time.Time {
	return s.Clock().UTC()
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Error(msg, args...)
}

// LogWarn logs a rejected request that is not a server fault.
func (s *BaseService) LogWarn(ctx context.Context, err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger(ctx).Warn(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// Publish hands an event to the notifier. Failures are logged, never returned:
// the write the event describes has already committed.
func (s *BaseService) Publish(ctx context.Context, eventType domain.EventType, payload any) {
	if s.Notifier == nil {
		return
	}
	event := domain.Event{Type: eventType, OccurredAt: s.Now(), Payload: payload}
	if err := s.Notifier.Notify(ctx, event); err != nil {
		s.LogWarn(ctx, err, "Failed to deliver ledger notification", slog.String("event", string(eventType)))
	}
}

// dayStart returns midnight of the calendar date d in the service location.
func (s *BaseService) dayStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.Location)
}

// dayRange converts inclusive calendar bounds into a half-open instant range.
// Missing bounds are filled from the defaults.
func (s *BaseService) dayRange(from, to *time.Time, defaultFrom, defaultTo time.Time) domain.DateRange {
	start := s.dayStart(defaultFrom)
	if from != nil {
		start = s.dayStart(*from)
	}
	end := s.dayStart(defaultTo).AddDate(0, 0, 1)
	if to != nil {
		end = s.dayStart(*to).AddDate(0, 0, 1)
	}
	return domain.DateRange{From: start, To: end}
}

// today returns the current instant in the service location.
func (s *BaseService) today() time.Time {
	return s.Clock().In(s.Location)
}
