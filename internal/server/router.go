package server

import (
	"context"
	"io"
	"net/http"

	"github.com/auto-dns/podvis/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	HeaderEventType  = "X-Kubernetes-Event-Type"
	HeaderObjectType = "X-Kubernetes-Object-Type"

	maxBodyBytes = 4 << 20
)

type eventHandler interface {
	Handle(ctx context.Context, ev domain.InboundEvent) error
}

// Router builds the forwarder's inbound HTTP surface.
func Router(h eventHandler, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Method(http.MethodPost, "/", otelhttp.NewHandler(eventEndpoint(h, logger), "pod-event"))

	return r
}

// eventEndpoint answers 200 for every event it manages to read, whatever the
// handler made of it, so the trigger does not redeliver.
func eventEndpoint(h eventHandler, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ev, err := inboundEventFromRequest(w, r)
		if err != nil {
			logger.Warn().Err(err).Msg("Reading inbound event body")
			w.WriteHeader(http.StatusOK)
			return
		}
		if err := h.Handle(r.Context(), ev); err != nil {
			logger.Error().Err(err).Msg("Handling inbound event")
		}
		w.WriteHeader(http.StatusOK)
	}
}

func inboundEventFromRequest(w http.ResponseWriter, r *http.Request) (domain.InboundEvent, error) {
	ev := domain.InboundEvent{
		EventType:  domain.EventType(r.Header.Get(HeaderEventType)),
		ObjectType: r.Header.Get(HeaderObjectType),
	}
	if r.Body == nil {
		return ev, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return ev, err
	}
	if len(body) > 0 {
		ev.Body = body
	}
	return ev, nil
}
