package state

import (
	"time"

	"github.com/auto-dns/podvis/internal/domain"
)

type podState struct {
	Notification domain.Notification
	LastUpdated  time.Time
}
