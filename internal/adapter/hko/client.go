package hko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/hko-weather-e2e/internal/config"
	"github.com/couchcryptid/hko-weather-e2e/internal/domain"
	"github.com/couchcryptid/hko-weather-e2e/internal/observability"
	"github.com/couchcryptid/hko-weather-e2e/internal/retry"
)

// maxErrorBody caps how much of a failed response body is kept in HTTPError.
const maxErrorBody = 512

// Attempt outcomes recorded in the api_attempts_total metric.
const (
	outcomeSuccess        = "success"
	outcomeHTTPError      = "http_error"
	outcomeTransportError = "transport_error"
	outcomeDecodeError    = "decode_error"
)

// Client fetches JSON weather data from the HKO open-data API. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	endpoints  config.Endpoints
	headers    map[string]string
	timeout    time.Duration
	transport  *http.Transport
	httpClient *http.Client
	retrier    *retry.Retrier
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*clientOptions)

type clientOptions struct {
	clock clockwork.Clock
}

// WithClock sets the clock used for backoff waits between attempts.
func WithClock(c clockwork.Clock) Option {
	return func(o *clientOptions) { o.clock = c }
}

// NewClient creates a client from cfg. cfg.Retry must already be valid, which
// config.Load guarantees.
func NewClient(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Client {
	o := clientOptions{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&o)
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		endpoints:  cfg.Endpoints,
		headers:    cfg.Headers(),
		timeout:    cfg.APITimeout,
		transport:  transport,
		httpClient: &http.Client{Transport: transport},
		retrier: retry.New(cfg.Retry,
			retry.WithClock(o.clock),
			retry.WithLogger(logger),
		),
		metrics: metrics,
		logger:  logger,
	}
	if cfg.APIRateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.APIRateLimit), 1)
	}
	return c
}

// RequestOption customizes a single Request call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	params  url.Values
	timeout time.Duration
}

// WithParams adds query parameters, replacing any of the same name already
// present in the endpoint.
func WithParams(params url.Values) RequestOption {
	return func(o *requestOptions) { o.params = params }
}

// WithTimeout overrides the per-attempt timeout.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// Request performs a GET against base URL + endpoint and decodes the JSON
// object body. Retryable failures are retried under the configured policy;
// the error from the last attempt is returned once attempts run out.
func (c *Client) Request(ctx context.Context, endpoint string, opts ...RequestOption) (domain.Payload, error) {
	ro := requestOptions{timeout: c.timeout}
	for _, opt := range opts {
		opt(&ro)
	}

	target, err := c.buildURL(endpoint, ro.params)
	if err != nil {
		return nil, &TransportError{URL: c.baseURL + endpoint, Err: err}
	}
	label := endpointLabel(endpoint)

	var payload domain.Payload
	err = c.retrier.Do(ctx, c.Retryable, func(ctx context.Context, attempt int) error {
		if attempt > 1 {
			c.metrics.APIRetries.WithLabelValues(label).Inc()
		}
		p, err := c.attempt(ctx, target, label, attempt, ro.timeout)
		if err != nil {
			return err
		}
		payload = p
		return nil
	})
	if err != nil {
		if !isClientError(err) {
			// Backoff wait aborted by ctx.
			err = &TransportError{URL: target, Err: err}
		}
		return nil, err
	}
	return payload, nil
}

func (c *Client) attempt(ctx context.Context, target, label string, attempt int, timeout time.Duration) (domain.Payload, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.fail(label, outcomeTransportError, attempt, &TransportError{URL: target, Err: err})
		}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, c.fail(label, outcomeTransportError, attempt, &TransportError{URL: target, Err: err})
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("api request", "url", target, "attempt", attempt)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(label, start)
		return nil, c.fail(label, outcomeTransportError, attempt, &TransportError{URL: target, Err: err})
	}
	defer func() {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain so the connection is reused
		resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	c.observe(label, start)
	if err != nil {
		return nil, c.fail(label, outcomeTransportError, attempt, &TransportError{URL: target, Err: fmt.Errorf("read body: %w", err)})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, c.fail(label, outcomeHTTPError, attempt, &HTTPError{URL: target, Status: resp.StatusCode, Body: string(body)})
	}

	var payload domain.Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, c.fail(label, outcomeDecodeError, attempt, &DecodeError{URL: target, Err: err})
	}
	if payload == nil {
		return nil, c.fail(label, outcomeDecodeError, attempt, &DecodeError{URL: target, Err: errors.New("body is not a JSON object")})
	}

	c.metrics.APIAttempts.WithLabelValues(label, outcomeSuccess).Inc()
	c.logger.Debug("api request succeeded", "url", target, "attempt", attempt, "status", resp.StatusCode)
	return payload, nil
}

func (c *Client) observe(label string, start time.Time) {
	c.metrics.APIRequestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
}

func (c *Client) fail(label, outcome string, attempt int, err error) error {
	c.metrics.APIAttempts.WithLabelValues(label, outcome).Inc()
	c.logger.Warn("api request failed", "endpoint", label, "attempt", attempt, "outcome", outcome, "error", err)
	return err
}

// Retryable reports whether the client would retry err. HTTP statuses are
// checked against the configured retry policy; everything else defers to
// IsRetryable.
func (c *Client) Retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return c.retrier.Policy().IsRetryableStatus(httpErr.Status)
	}
	return IsRetryable(err)
}

func (c *Client) buildURL(endpoint string, params url.Values) (string, error) {
	u, err := url.Parse(c.baseURL + endpoint)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("malformed URL %q: missing scheme or host", c.baseURL+endpoint)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			q[k] = vs
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// endpointLabel names an endpoint for metrics by its dataType parameter,
// falling back to the path.
func endpointLabel(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "unknown"
	}
	if dt := u.Query().Get("dataType"); dt != "" {
		return dt
	}
	return u.Path
}

func isClientError(err error) bool {
	var (
		transportErr *TransportError
		httpErr      *HTTPError
		decodeErr    *DecodeError
	)
	return errors.As(err, &transportErr) || errors.As(err, &httpErr) || errors.As(err, &decodeErr)
}

// Close releases idle pooled connections.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}
