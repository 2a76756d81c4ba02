package podvis

import (
	"context"

	"github.com/auto-dns/podvis/internal/domain"
)

type snapshotStore interface {
	Put(ctx context.Context, n domain.Notification) error
	Delete(ctx context.Context, podName string) error
	List(ctx context.Context) ([]domain.Notification, error)
}

type publisher interface {
	Publish(ctx context.Context, data []byte) error
}

type subscriber interface {
	Subscribe(ctx context.Context) (<-chan Message, func(), error)
}
