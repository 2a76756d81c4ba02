package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/auto-dns/podvis/internal/domain"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout = 5 * time.Second
	userAgent      = "podvis-forwarder/v1"
)

// HTTPSender POSTs notifications to the visualizer's reflector. It makes a
// single attempt per notification and treats any HTTP response as delivered.
type HTTPSender struct {
	httpClient *http.Client
	logger     zerolog.Logger
	url        string
}

// NewHTTPSender validates the target URL and builds a sender with a bounded
// client timeout. A zero timeout falls back to five seconds.
func NewHTTPSender(logger zerolog.Logger, targetURL string, timeout time.Duration) (*HTTPSender, error) {
	if targetURL == "" {
		return nil, fmt.Errorf("target URL is required")
	}
	u, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("target URL must use http or https scheme, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("target URL must include a host")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &HTTPSender{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport.(*http.Transport).Clone()),
		},
		logger: logger,
		url:    targetURL,
	}, nil
}

func (s *HTTPSender) Name() string { return "http" }

// Send performs one POST. Only transport failures are returned; the response
// status is logged and otherwise ignored.
func (s *HTTPSender) Send(ctx context.Context, n domain.Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		sendTotal.WithLabelValues(s.Name(), "error").Inc()
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		sendTotal.WithLabelValues(s.Name(), "error").Inc()
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(domain.DeliveryIDHeader, DeliveryID(ctx))

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	duration := time.Since(start).Seconds()
	if err != nil {
		sendTotal.WithLabelValues(s.Name(), "error").Inc()
		sendDuration.WithLabelValues(s.Name(), "error").Observe(duration)
		return fmt.Errorf("post to %s: %w", RedactURL(s.url), err)
	}
	defer func() {
		// Drain and close body to reuse connections.
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	status := strconv.Itoa(resp.StatusCode)
	sendTotal.WithLabelValues(s.Name(), status).Inc()
	sendDuration.WithLabelValues(s.Name(), status).Observe(duration)

	evt := s.logger.Info()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		evt = s.logger.Warn()
	}
	evt.Int("status", resp.StatusCode).Str("pod", n.PodName).Msg("Pod vis event post status")
	return nil
}

// RedactURL masks credentials in a URL for safe logging.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	if u.RawQuery != "" {
		q := u.Query()
		for key := range q {
			q.Set(key, "REDACTED")
		}
		u.RawQuery = q.Encode()
	}
	return u.Redacted()
}
