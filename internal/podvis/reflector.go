package podvis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/auto-dns/podvis/internal/domain"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
)

const (
	maxNotificationBytes = 1 << 20
	recentDeliveries     = 4096
)

// InvalidNotificationError reports a reflected body that is not a usable
// notification.
type InvalidNotificationError struct {
	Reason string
}

func NewInvalidNotificationError(reason string) *InvalidNotificationError {
	return &InvalidNotificationError{Reason: reason}
}

func (e *InvalidNotificationError) Error() string {
	return fmt.Sprintf("invalid notification: %s", e.Reason)
}

// Reflector accepts notifications, records them in the snapshot and hands
// them to the broker. A notification that arrives over both HTTP and NATS
// carries the same delivery id and is reflected once.
type Reflector struct {
	broker publisher
	store  snapshotStore
	seen   *lru.Cache[string, struct{}]
	logger zerolog.Logger
}

func NewReflector(broker publisher, store snapshotStore, logger zerolog.Logger) *Reflector {
	// lru.New only fails for a non-positive size.
	seen, _ := lru.New[string, struct{}](recentDeliveries)
	return &Reflector{
		broker: broker,
		store:  store,
		seen:   seen,
		logger: logger,
	}
}

// Reflect validates raw, updates the snapshot and broadcasts the
// notification. Snapshot failures are logged; the broadcast still happens.
// A delivery id seen recently is acknowledged without reflecting again; an
// empty id is never deduplicated.
func (rf *Reflector) Reflect(ctx context.Context, deliveryID string, raw []byte) error {
	var n domain.Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return NewInvalidNotificationError(err.Error())
	}
	if n.PodName == "" {
		return NewInvalidNotificationError("podName is empty")
	}
	if n.ContainerStates == nil {
		n.ContainerStates = map[string]string{}
	}
	if deliveryID != "" {
		if seen, _ := rf.seen.ContainsOrAdd(deliveryID, struct{}{}); seen {
			reflectedTotal.WithLabelValues("duplicate").Inc()
			rf.logger.Debug().Str("delivery", deliveryID).Str("pod", n.PodName).Msg("Skipping duplicate delivery")
			return nil
		}
	}

	var storeErr error
	if n.EventType.IsDelete() {
		storeErr = rf.store.Delete(ctx, n.PodName)
	} else {
		storeErr = rf.store.Put(ctx, n)
	}
	if storeErr != nil {
		rf.logger.Warn().Err(storeErr).Str("pod", n.PodName).Msg("Updating pod snapshot")
	}

	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	if err := rf.broker.Publish(ctx, data); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	rf.logger.Debug().Str("notification", n.Render()).Msg("Reflected notification")
	return nil
}

// ServeHTTP accepts POSTed notifications.
func (rf *Reflector) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		reflectedTotal.WithLabelValues("bad_method").Inc()
		http.Error(w, "You can only POST here.", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxNotificationBytes))
	if err != nil {
		reflectedTotal.WithLabelValues("read_error").Inc()
		http.Error(w, "Error reading body", http.StatusInternalServerError)
		return
	}

	if err := rf.Reflect(req.Context(), req.Header.Get(domain.DeliveryIDHeader), body); err != nil {
		var invalid *InvalidNotificationError
		switch {
		case errors.As(err, &invalid):
			reflectedTotal.WithLabelValues("invalid").Inc()
			rf.logger.Info().Err(err).Msg("Rejecting reflected body")
			http.Error(w, invalid.Error(), http.StatusBadRequest)
		case errors.Is(err, ErrBrokerClosed):
			reflectedTotal.WithLabelValues("unavailable").Inc()
			http.Error(w, "shutting down", http.StatusServiceUnavailable)
		default:
			reflectedTotal.WithLabelValues("error").Inc()
			rf.logger.Error().Err(err).Msg("Reflecting notification")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	reflectedTotal.WithLabelValues("ok").Inc()
	w.WriteHeader(http.StatusOK)
}
