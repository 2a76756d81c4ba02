package registry

import (
	"context"

	"github.com/auto-dns/podvis/internal/domain"
)

// Registry stores the latest notification per pod.
type Registry interface {
	Put(ctx context.Context, n domain.Notification) error
	Delete(ctx context.Context, podName string) error
	List(ctx context.Context) ([]domain.Notification, error)
	Close() error
}
