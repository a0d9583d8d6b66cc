// Package mltransport provides the shared HTTP transport for model sidecar
// calls: rate limiting, circuit breaking and retry around JSON and raw-byte
// POSTs, plus the health check.
package mltransport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/veracity/infrastructure/circuitbreaker"
	infraerrors "github.com/jonesrussell/veracity/infrastructure/errors"
	infrahttp "github.com/jonesrussell/veracity/infrastructure/http"
	"github.com/jonesrussell/veracity/infrastructure/retry"
	"github.com/jonesrussell/veracity/internal/domain"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout       = 5 * time.Second
	defaultRetryAttempts = 2
	defaultRetryDelay    = 100 * time.Millisecond
	contentTypeJSON      = "application/json"
)

// Config tunes a Transport. Zero values take defaults; RateLimit 0 means
// unlimited.
type Config struct {
	Timeout          time.Duration
	RateLimit        float64
	Burst            int
	RetryAttempts    int
	RetryDelay       time.Duration
	BreakerThreshold int
	BreakerTimeout   time.Duration
}

// Transport is safe for concurrent use.
type Transport struct {
	client  *http.Client
	limiter *rate.Limiter
	breaker *circuitbreaker.Breaker
	retry   retry.Config
}

// HealthStatus is the result of a GET /health call.
type HealthStatus struct {
	Reachable    bool
	LatencyMs    int64
	ModelVersion string
}

// healthResponse is the JSON shape returned by GET /health (model_version optional).
type healthResponse struct {
	ModelVersion string `json:"model_version"`
}

// New builds a Transport from cfg.
func New(cfg Config) *Transport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := max(cfg.Burst, 1)

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.RetryAttempts
	retryCfg.InitialDelay = cfg.RetryDelay

	return &Transport{
		client:  infrahttp.NewClient(&infrahttp.ClientConfig{Timeout: cfg.Timeout}),
		limiter: rate.NewLimiter(limit, burst),
		breaker: circuitbreaker.New(circuitbreaker.Config{
			FailureThreshold: cfg.BreakerThreshold,
			Timeout:          cfg.BreakerTimeout,
		}),
		retry: retryCfg,
	}
}

// PostJSON marshals req, POSTs it to url and decodes the response into respPtr.
func (t *Transport) PostJSON(ctx context.Context, url string, req, respPtr any) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return t.PostBytes(ctx, url, contentTypeJSON, body, respPtr)
}

// PostBytes POSTs body with contentType to url and decodes the JSON response
// into respPtr. Every failure wraps domain.ErrModelUnavailable.
func (t *Transport) PostBytes(ctx context.Context, url, contentType string, body []byte, respPtr any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limit: %w", domain.ErrModelUnavailable, err)
	}

	err := t.breaker.Execute(ctx, func() error {
		return retry.Retry(ctx, t.retry, func() error {
			return t.do(ctx, url, contentType, body, respPtr)
		})
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	return nil
}

func (t *Transport) do(ctx context.Context, url, contentType string, body []byte, respPtr any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", contentTypeJSON)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if httpErr := infraerrors.ParseHTTPError(resp); httpErr != nil {
		return httpErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if decodeErr := json.Unmarshal(data, respPtr); decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	return nil
}

// Health calls GET /health at baseURL. It bypasses the breaker so a health check
// always reaches the sidecar.
func (t *Transport) Health(ctx context.Context, baseURL string) (HealthStatus, error) {
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", http.NoBody)
	if err != nil {
		return HealthStatus{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := t.client.Do(httpReq)
	status := HealthStatus{LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		return status, fmt.Errorf("%w: service unreachable: %w", domain.ErrModelUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return status, fmt.Errorf("%w: unhealthy status: %d", domain.ErrModelUnavailable, resp.StatusCode)
	}

	status.Reachable = true
	var health healthResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&health); decodeErr == nil {
		status.ModelVersion = health.ModelVersion
	}
	return status, nil
}

// BreakerState reports the circuit breaker position for health output.
func (t *Transport) BreakerState() string {
	return t.breaker.State().String()
}
