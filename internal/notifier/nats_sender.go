package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/auto-dns/podvis/internal/domain"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

type natsPublisher interface {
	PublishMsg(m *nats.Msg) error
}

// NATSSender publishes notifications on a core NATS subject. Delivery is at
// most once, matching the HTTP path.
type NATSSender struct {
	conn    natsPublisher
	subject string
	logger  zerolog.Logger
}

func NewNATSSender(conn natsPublisher, subject string, logger zerolog.Logger) *NATSSender {
	return &NATSSender{
		conn:    conn,
		subject: subject,
		logger:  logger,
	}
}

// DialNATS connects with the options both the forwarder and listener use.
func DialNATS(url, name string, logger zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrlRedacted()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return nc, nil
}

func (s *NATSSender) Name() string { return "nats" }

func (s *NATSSender) Send(ctx context.Context, n domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(n)
	if err != nil {
		sendTotal.WithLabelValues(s.Name(), "error").Inc()
		return fmt.Errorf("marshal notification: %w", err)
	}
	msg := nats.NewMsg(s.subject)
	msg.Data = data
	msg.Header.Set(domain.DeliveryIDHeader, DeliveryID(ctx))
	if err := s.conn.PublishMsg(msg); err != nil {
		sendTotal.WithLabelValues(s.Name(), "error").Inc()
		return fmt.Errorf("publish to %s: %w", s.subject, err)
	}
	sendTotal.WithLabelValues(s.Name(), "published").Inc()
	s.logger.Debug().Str("subject", s.subject).Str("pod", n.PodName).Msg("Published notification")
	return nil
}
