package podvis

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrBrokerClosed = errors.New("broker closed")

// Message is one SSE frame.
type Message struct {
	ID   string
	Data []byte
}

func newMessage(data []byte) Message {
	return Message{ID: uuid.NewString(), Data: data}
}

// Broker keeps the set of attached SSE clients and broadcasts every published
// message to all of them. The client set is owned by the Run goroutine; all
// other methods talk to it over channels.
type Broker struct {
	logger         zerolog.Logger
	bufferSize     int
	clients        map[chan Message]struct{}
	newClients     chan chan Message
	defunctClients chan chan Message
	messages       chan Message
	done           chan struct{}
}

func NewBroker(logger zerolog.Logger, bufferSize int) *Broker {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Broker{
		logger:         logger,
		bufferSize:     bufferSize,
		clients:        make(map[chan Message]struct{}),
		newClients:     make(chan chan Message),
		defunctClients: make(chan chan Message),
		messages:       make(chan Message),
		done:           make(chan struct{}),
	}
}

// Run serves the broker until ctx is cancelled, then closes every client
// channel. It must be called exactly once.
func (b *Broker) Run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case ch := <-b.newClients:
			b.clients[ch] = struct{}{}
			brokerClients.Set(float64(len(b.clients)))
			b.logger.Info().Int("clients", len(b.clients)).Msg("Added new client")

		case ch := <-b.defunctClients:
			if _, ok := b.clients[ch]; ok {
				delete(b.clients, ch)
				close(ch)
			}
			brokerClients.Set(float64(len(b.clients)))
			b.logger.Info().Int("clients", len(b.clients)).Msg("Removed client")

		case msg := <-b.messages:
			for ch := range b.clients {
				select {
				case ch <- msg:
				default:
					brokerDropped.Inc()
					b.logger.Warn().Str("id", msg.ID).Msg("Client buffer full, dropping message")
				}
			}
			brokerBroadcasts.Inc()
			b.logger.Debug().Int("clients", len(b.clients)).Msg("Broadcast message")

		case <-ctx.Done():
			for ch := range b.clients {
				close(ch)
			}
			b.clients = map[chan Message]struct{}{}
			brokerClients.Set(0)
			b.logger.Info().Msg("Broker shutting down")
			return
		}
	}
}

// Subscribe attaches a new client. The returned channel is closed when the
// client is unsubscribed or the broker stops.
func (b *Broker) Subscribe(ctx context.Context) (<-chan Message, func(), error) {
	ch := make(chan Message, b.bufferSize)
	select {
	case b.newClients <- ch:
	case <-b.done:
		return nil, nil, ErrBrokerClosed
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	unsubscribe := func() {
		select {
		case b.defunctClients <- ch:
		case <-b.done:
		}
	}
	return ch, unsubscribe, nil
}

// Publish queues data for broadcast to every attached client.
func (b *Broker) Publish(ctx context.Context, data []byte) error {
	select {
	case b.messages <- newMessage(data):
		return nil
	case <-b.done:
		return ErrBrokerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
