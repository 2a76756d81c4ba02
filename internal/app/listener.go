package app

import (
	"context"
	"fmt"
	"os"

	"github.com/auto-dns/podvis/internal/config"
	"github.com/auto-dns/podvis/internal/domain"
	"github.com/auto-dns/podvis/internal/notifier"
	"github.com/auto-dns/podvis/internal/podvis"
	"github.com/auto-dns/podvis/internal/registry"
	"github.com/auto-dns/podvis/internal/state"
	"github.com/auto-dns/podvis/internal/telemetry"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// Listener runs the visualizer: reflector, broker, event stream and page.
type Listener struct {
	cfg       *config.Config
	broker    *podvis.Broker
	reflector *podvis.Reflector
	store     registry.Registry
	stream    *podvis.EventStream
	natsConn  *nats.Conn
	logger    zerolog.Logger
}

// NewListener creates a Listener by wiring up all dependencies.
func NewListener(cfg *config.Config, logger zerolog.Logger) (*Listener, error) {
	store, err := newSnapshotStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	broker := podvis.NewBroker(logger, cfg.Listener.ClientBuffer)
	l := &Listener{
		cfg:       cfg,
		broker:    broker,
		reflector: podvis.NewReflector(broker, store, logger),
		store:     store,
		stream:    podvis.NewEventStream(broker, store, logger),
		logger:    logger,
	}

	if cfg.Listener.NatsURL != "" {
		nc, err := notifier.DialNATS(cfg.Listener.NatsURL, "podvis-listener", logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		l.natsConn = nc
	}
	return l, nil
}

func newSnapshotStore(cfg *config.Config, logger zerolog.Logger) (registry.Registry, error) {
	if cfg.Listener.Store != config.StoreEtcd {
		return state.NewMemoryState(), nil
	}
	etcdClient, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Etcd.Endpoints,
		DialTimeout: cfg.Etcd.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}
	return registry.NewEtcdRegistry(etcdClient, &cfg.Etcd, hostname, logger), nil
}

// Run serves the listener until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	shutdownTracing, err := telemetry.Init(ctx, "podvis-listener", l.cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			l.logger.Error().Err(err).Msg("Shutting down tracer provider")
		}
	}()

	brokerCtx, stopBroker := context.WithCancel(ctx)
	defer stopBroker()
	go l.broker.Run(brokerCtx)

	if l.natsConn != nil {
		sub, err := l.natsConn.Subscribe(l.cfg.Listener.NatsSubject, func(msg *nats.Msg) {
			if err := l.reflector.Reflect(brokerCtx, msg.Header.Get(domain.DeliveryIDHeader), msg.Data); err != nil {
				l.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("Reflecting NATS message")
			}
		})
		if err != nil {
			return fmt.Errorf("subscribe to %s: %w", l.cfg.Listener.NatsSubject, err)
		}
		defer func() { _ = sub.Unsubscribe() }()
		l.logger.Info().Str("subject", l.cfg.Listener.NatsSubject).Msg("Subscribed to NATS notifications")
	}

	l.logger.Info().Str("store", l.cfg.Listener.Store).Msg("Listener starting")
	return serveAll(ctx, l.logger,
		newHTTPServer(l.cfg.Listener.ReflectorAddr, podvis.ReflectorRouter(l.reflector)),
		newHTTPServer(l.cfg.Listener.UIAddr, podvis.UIRouter(l.stream, l.cfg.Listener.AllowedOrigins)),
	)
}

func (l *Listener) Close() error {
	var firstErr error
	if l.natsConn != nil {
		l.natsConn.Close()
	}
	if l.store != nil {
		if err := l.store.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close snapshot store: %w", err)
		}
	}
	return firstErr
}
