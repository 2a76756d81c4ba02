package notifier

import (
	"context"

	"github.com/google/uuid"
)

type deliveryIDKey struct{}

// WithDeliveryID attaches the id every sender stamps on its copy of a
// notification.
func WithDeliveryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deliveryIDKey{}, id)
}

// DeliveryID returns the id attached to ctx, or a fresh one when none is.
func DeliveryID(ctx context.Context) string {
	if id, ok := ctx.Value(deliveryIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
