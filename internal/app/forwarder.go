package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/auto-dns/podvis/internal/config"
	"github.com/auto-dns/podvis/internal/core"
	"github.com/auto-dns/podvis/internal/notifier"
	"github.com/auto-dns/podvis/internal/server"
	"github.com/auto-dns/podvis/internal/telemetry"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Forwarder receives pod events over HTTP and forwards notifications.
type Forwarder struct {
	cfg      *config.Config
	natsConn *nats.Conn
	server   *http.Server
	logger   zerolog.Logger
}

// NewForwarder creates a Forwarder by wiring up all dependencies.
func NewForwarder(cfg *config.Config, logger zerolog.Logger) (*Forwarder, error) {
	httpSender, err := notifier.NewHTTPSender(logger.With().Str("sender", "http").Logger(), cfg.Forwarder.TargetURL, cfg.Forwarder.Timeout)
	if err != nil {
		return nil, err
	}
	senders := []notifier.Sender{httpSender}

	var nc *nats.Conn
	if cfg.Forwarder.NatsURL != "" {
		nc, err = notifier.DialNATS(cfg.Forwarder.NatsURL, "podvis-forwarder", logger)
		if err != nil {
			return nil, err
		}
		senders = append(senders, notifier.NewNATSSender(nc, cfg.Forwarder.NatsSubject, logger))
	}

	handler := core.NewHandler(logger, notifier.NewMultiSender(senders...), cfg.Forwarder.Timeout)

	return &Forwarder{
		cfg:      cfg,
		natsConn: nc,
		server:   newHTTPServer(cfg.Forwarder.ListenAddr, server.Router(handler, logger)),
		logger:   logger,
	}, nil
}

// Run serves inbound events until ctx is cancelled.
func (f *Forwarder) Run(ctx context.Context) error {
	shutdownTracing, err := telemetry.Init(ctx, "podvis-forwarder", f.cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer f.shutdownTracing(shutdownTracing)

	f.logger.Info().
		Str("target", notifier.RedactURL(f.cfg.Forwarder.TargetURL)).
		Dur("timeout", f.cfg.Forwarder.Timeout).
		Msg("Forwarder starting")
	return serveAll(ctx, f.logger, f.server)
}

func (f *Forwarder) shutdownTracing(shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		f.logger.Error().Err(err).Msg("Shutting down tracer provider")
	}
}

func (f *Forwarder) Close() error {
	if f.natsConn != nil {
		if err := f.natsConn.Drain(); err != nil {
			f.natsConn.Close()
			return fmt.Errorf("drain nats connection: %w", err)
		}
	}
	return nil
}
