// Package transport is the HTTP client every backend call goes through. It
// owns authentication, envelope decoding and the resilience policy (client
// side rate limiting, circuit breaking and retries of idempotent requests).
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/zhuiying-client/internal/circuitbreaker"
	"github.com/zhuiying-client/internal/config"
	apperrors "github.com/zhuiying-client/internal/errors"
	"github.com/zhuiying-client/internal/logging"
	"github.com/zhuiying-client/internal/retry"
	"github.com/zhuiying-client/internal/types"
)

// Request describes one backend call. Query is only sent for GET requests,
// Body only for the other methods.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

// Doer executes backend requests and decodes the envelope's data into out
type Doer interface {
	Do(ctx context.Context, req Request, out interface{}) error
}

// TokenSource supplies the bearer token; "" means anonymous
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Options configures a Client
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	Retry             *retry.RetryConfig
	Breaker           *circuitbreaker.Config
	HTTPClient        *http.Client
	Logger            *logging.Logger
}

// OptionsFromConfig builds client options from the application config
func OptionsFromConfig(cfg *config.Config, logger *logging.Logger) Options {
	breaker := circuitbreaker.DefaultConfig("backend")
	breaker.MaxFailures = cfg.Transport.BreakerFailures
	breaker.Timeout = cfg.Transport.BreakerTimeout

	return Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.Transport.RequestsPerSecond,
		Burst:             cfg.Transport.Burst,
		Retry: &retry.RetryConfig{
			MaxAttempts:  cfg.Transport.RetryAttempts,
			InitialDelay: cfg.Transport.RetryInitialDelay,
			MaxDelay:     cfg.Transport.RetryMaxDelay,
			Multiplier:   2.0,
		},
		Breaker: breaker,
		Logger:  logger,
	}
}

// Client is the default Doer
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	breaker    *circuitbreaker.CircuitBreaker
	retry      retry.RetryConfig
	logger     *logging.Logger
}

// NewClient creates a client. tokens may be nil for anonymous use.
func NewClient(opts Options, tokens TokenSource) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Retry == nil {
		opts.Retry = retry.DefaultRetryConfig()
	}
	if opts.Breaker == nil {
		opts.Breaker = circuitbreaker.DefaultConfig("backend")
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	breakerCfg := *opts.Breaker
	breakerCfg.IsFailure = apperrors.IsRetryable

	retryCfg := *opts.Retry
	retryCfg.ShouldRetry = apperrors.IsRetryable

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    opts.Timeout,
		httpClient: opts.HTTPClient,
		tokens:     tokens,
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    circuitbreaker.NewCircuitBreaker(&breakerCfg),
		retry:      retryCfg,
		logger:     opts.Logger.WithComponent("transport"),
	}
}

// BreakerState exposes the circuit breaker state for status output
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.GetState()
}

// Do sends req and decodes the response data into out (which may be nil).
// GET requests are retried on transport failures and 5xx/429 responses.
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	ctx = logging.WithLogger(ctx, c.logger)

	attempt := func(ctx context.Context, _ int) error {
		err := c.breaker.Execute(ctx, func() error {
			return c.send(ctx, req, out)
		})
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return apperrors.NewCircuitOpenError(err)
		}
		return err
	}

	if req.Method != http.MethodGet {
		return attempt(ctx, 1)
	}
	return retry.Do(ctx, &c.retry, attempt)
}

func (c *Client) send(ctx context.Context, req Request, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.NewTimeoutError("rate limit", err)
	}

	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		}).Warn("Request failed")
		return apperrors.Categorize(err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(map[string]interface{}{
		"method":   req.Method,
		"path":     req.Path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("Request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return apperrors.NewHTTPStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Categorize(err)
	}
	return decodeEnvelope(body, out)
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL + req.Path
	var body io.Reader
	if req.Method == http.MethodGet {
		if len(req.Query) > 0 {
			target += "?" + req.Query.Encode()
		}
	} else if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("cannot encode request body: %v", err))
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.logger.WithError(err).Warn("Failed to read session token")
		} else if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return httpReq, nil
}

func decodeEnvelope(body []byte, out interface{}) error {
	var env types.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return apperrors.NewDecodeError(err)
	}
	if !env.OK() {
		return apperrors.NewAPIError(env.Code, env.Message)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperrors.NewDecodeError(err)
	}
	return nil
}
