package notify

import (
	"context"
	"errors"

	"github.com/SscSPs/licoreria_pos/internal/core/domain"
	portssvc "github.com/SscSPs/licoreria_pos/internal/core/ports/services"
)

// Fanout hands every event to each notifier in order. One failing notifier
// does not stop the others; their errors are joined.
type Fanout []portssvc.Notifier

func (f Fanout) Notify(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, domain.Event) error { return nil }
