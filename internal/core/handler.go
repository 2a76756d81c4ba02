package core

import (
	"context"
	"errors"
	"time"

	"github.com/auto-dns/podvis/internal/domain"
	"github.com/auto-dns/podvis/internal/event"
	"github.com/rs/zerolog"
)

const (
	outcomeIgnored   = "ignored"
	outcomeSkipped   = "skipped"
	outcomeMalformed = "malformed"
	outcomeForwarded = "forwarded"
	outcomeFailed    = "send_failed"
)

// Handler classifies pod events and forwards the resulting notification.
// It holds no per-event state and is safe for concurrent use.
type Handler struct {
	logger      zerolog.Logger
	sender      sender
	sendTimeout time.Duration
}

func NewHandler(logger zerolog.Logger, s sender, sendTimeout time.Duration) *Handler {
	return &Handler{
		logger:      logger,
		sender:      s,
		sendTimeout: sendTimeout,
	}
}

// Handle processes one event. Classification and delivery failures are logged
// and absorbed so the trigger never redelivers.
func (h *Handler) Handle(ctx context.Context, ev domain.InboundEvent) error {
	n, err := Classify(ev)
	if err != nil {
		h.logClassifyError(ev, err)
		return nil
	}

	h.logger.Info().
		Str("event_type", string(ev.EventType)).
		Str("object_type", ev.ObjectType).
		Str("pod", n.PodName).
		Msg("Pod event received")
	h.logger.Info().Interface("container_states", n.ContainerStates).Msg("Container states")

	sendCtx, cancel := context.WithTimeout(ctx, h.sendTimeout)
	defer cancel()

	if err := h.sender.Send(sendCtx, n); err != nil {
		eventsHandled.WithLabelValues(outcomeFailed).Inc()
		h.logger.Warn().Err(err).Str("pod", n.PodName).Msg("Forwarding notification failed")
		return nil
	}
	eventsHandled.WithLabelValues(outcomeForwarded).Inc()
	return nil
}

func (h *Handler) logClassifyError(ev domain.InboundEvent, err error) {
	var (
		decodeErr  *event.DecodeError
		missingErr *event.MissingFieldError
	)
	switch {
	case errors.Is(err, ErrNotPod):
		eventsHandled.WithLabelValues(outcomeIgnored).Inc()
		h.logger.Debug().Str("object_type", ev.ObjectType).Msg("Ignoring non-pod event")
	case errors.Is(err, event.ErrNoContainerStatuses):
		eventsHandled.WithLabelValues(outcomeSkipped).Inc()
		h.logger.Info().Msg("No container status information in event")
	case errors.As(err, &decodeErr):
		eventsHandled.WithLabelValues(outcomeMalformed).Inc()
		h.logger.Info().Err(err).Msg("Ignoring event with undecodable body")
	case errors.As(err, &missingErr):
		eventsHandled.WithLabelValues(outcomeMalformed).Inc()
		h.logger.Warn().Err(err).Str("event_type", string(ev.EventType)).Msg("Ignoring pod event with incomplete metadata")
	default:
		eventsHandled.WithLabelValues(outcomeMalformed).Inc()
		h.logger.Error().Err(err).Msg("Classifying event")
	}
}
