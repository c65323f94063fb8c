package services

import (
	"context"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
)

// Notifier receives ledger events after the write that caused them commits.
// Implementations must not block; returned errors are logged and dropped.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event) error
}

// EventSubscriber hands out live event streams. cancel releases the subscription.
type EventSubscriber interface {
	Subscribe() (events <-chan domain.Event, cancel func())
}
