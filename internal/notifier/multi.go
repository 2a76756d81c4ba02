package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/auto-dns/podvis/internal/domain"
)

// Sender delivers a notification to one downstream channel.
type Sender interface {
	Name() string
	Send(ctx context.Context, n domain.Notification) error
}

// MultiSender hands each notification to every sender in order. A failing
// sender does not stop the rest. All senders share one delivery id so the
// listener can drop the copies that reach it twice.
type MultiSender struct {
	senders []Sender
}

func NewMultiSender(senders ...Sender) *MultiSender {
	return &MultiSender{senders: senders}
}

func (m *MultiSender) Send(ctx context.Context, n domain.Notification) error {
	ctx = WithDeliveryID(ctx, DeliveryID(ctx))
	var errs []error
	for _, s := range m.senders {
		if err := s.Send(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
