package podvis

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// EventStream serves the SSE endpoint. New clients first receive the current
// snapshot, then every broadcast until they disconnect.
type EventStream struct {
	broker subscriber
	store  snapshotStore
	logger zerolog.Logger
}

func NewEventStream(broker subscriber, store snapshotStore, logger zerolog.Logger) *EventStream {
	return &EventStream{
		broker: broker,
		store:  store,
		logger: logger,
	}
}

func (es *EventStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	// Subscribe before reading the snapshot so nothing published in between
	// is lost. A pod may then appear twice, which the page tolerates.
	messages, unsubscribe, err := es.broker.Subscribe(ctx)
	if err != nil {
		http.Error(w, "event stream unavailable", http.StatusServiceUnavailable)
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	snapshot, err := es.store.List(ctx)
	if err != nil {
		es.logger.Warn().Err(err).Msg("Loading pod snapshot")
	}
	for _, n := range snapshot {
		data, err := json.Marshal(n)
		if err != nil {
			continue
		}
		if err := writeFrame(w, newMessage(data)); err != nil {
			return
		}
	}
	f.Flush()

	for {
		select {
		case msg, open := <-messages:
			if !open {
				return
			}
			if err := writeFrame(w, msg); err != nil {
				es.logger.Debug().Err(err).Msg("Writing event frame")
				return
			}
			f.Flush()
		case <-ctx.Done():
			es.logger.Debug().Str("path", r.URL.Path).Msg("HTTP connection just closed")
			return
		}
	}
}

func writeFrame(w http.ResponseWriter, msg Message) error {
	_, err := fmt.Fprintf(w, "id: %s\ndata: %s\n\n", msg.ID, msg.Data)
	return err
}
