package server

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auto-dns/podvis/internal/domain"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []domain.InboundEvent
	err    error
}

func (h *recordingHandler) Handle(_ context.Context, ev domain.InboundEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	return h.err
}

func TestRouter_ConvertsRequestToEvent(t *testing.T) {
	h := &recordingHandler{}
	r := Router(h, zerolog.Nop())

	body := `{"metadata":{"name":"web-1"}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(HeaderEventType, "MODIFIED")
	req.Header.Set(HeaderObjectType, "Pod")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.events, 1)
	assert.Equal(t, domain.InboundEvent{
		EventType:  "MODIFIED",
		ObjectType: "Pod",
		Body:       []byte(body),
	}, h.events[0])
}

func TestRouter_EmptyBodyIsAbsent(t *testing.T) {
	h := &recordingHandler{}
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(HeaderObjectType, "Pod")
	rec := httptest.NewRecorder()
	Router(h, zerolog.Nop()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.events, 1)
	assert.Nil(t, h.events[0].Body)
}

func TestRouter_OversizedBodyIsNotHandled(t *testing.T) {
	h := &recordingHandler{}
	var logs bytes.Buffer
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", maxBodyBytes+1)))
	req.Header.Set(HeaderObjectType, "Pod")
	rec := httptest.NewRecorder()
	Router(h, zerolog.New(&logs)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, h.events)
	assert.Contains(t, logs.String(), "request body too large")
}

func TestRouter_HandlerErrorStillAnswersOK(t *testing.T) {
	h := &recordingHandler{err: errors.New("unexpected")}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	Router(h, zerolog.Nop()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Probes(t *testing.T) {
	r := Router(&recordingHandler{}, zerolog.Nop())
	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, rec.Body.String(), path)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_GetOnEventEndpointNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	Router(&recordingHandler{}, zerolog.Nop()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
