package core

import (
	"context"

	"github.com/auto-dns/podvis/internal/domain"
)

type sender interface {
	Send(ctx context.Context, n domain.Notification) error
}
