// Package client implements the resilient request executor every marketplace
// page goes through to reach the backend: breaker check, URL build, timed
// fetch, decode, retry on transient failure, fallback on exhaustion. It never
// returns an error; every path terminates in a well-formed Outcome.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/propmarket/apicore/internal/breaker"
	"github.com/propmarket/apicore/internal/environment"
	"github.com/propmarket/apicore/internal/fallback"
	"github.com/propmarket/apicore/internal/monitoring"
	"github.com/propmarket/apicore/internal/types/environments"
	"github.com/propmarket/apicore/internal/utils/config"
	"github.com/propmarket/apicore/internal/utils/logger"
)

// Outcome is the result of one logical request. Produced once, never mutated
// after return, owned solely by the caller.
type Outcome struct {
	Data         any  `json:"data"`
	Status       int  `json:"status"`
	OK           bool `json:"ok"`
	FromFallback bool `json:"fromFallback"`
}

// RequestOptions carries the caller-controlled parts of a request. Body may
// be a string, []byte, or any JSON-encodable value.
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Body    any
}

type Client struct {
	baseURL     string
	environment environments.Environment

	timeout       time.Duration
	retryAttempts int
	retryDelay    time.Duration

	breaker    *breaker.Breaker
	httpClient *http.Client
	logger     *logger.Logger
	metrics    *monitoring.Metrics
}

// New resolves the deployment environment from the host context, derives the
// base URL, and wires the breaker state into the metrics gauge. metrics may
// be nil.
func New(cfg *config.AppConfig, hc environment.HostContext, brk *breaker.Breaker, logger *logger.Logger, metrics *monitoring.Metrics) *Client {
	env := environment.Resolve(hc)

	brk.OnStateChange(metrics.SetBreakerOpen)

	return &Client{
		baseURL:       environment.BaseURL(env, cfg.API.BaseURLOverride),
		environment:   env,
		timeout:       cfg.API.Timeout,
		retryAttempts: cfg.API.RetryAttempts,
		retryDelay:    cfg.API.RetryDelay,
		breaker:       brk,
		httpClient:    &http.Client{},
		logger:        logger,
		metrics:       metrics,
	}
}

// Environment returns the deployment environment resolved at construction.
func (c *Client) Environment() environments.Environment {
	return c.environment
}

// BaseURL returns the resolved backend base URL. Empty means root-relative
// paths against the serving origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request executes one logical request against the named endpoint. Retries
// are sequential; total attempts never exceed retryAttempts+1. The internal
// per-attempt deadline is the only cancellation the outcome contract depends
// on, but a cancelled ctx stops the retry loop early.
func (c *Client) Request(ctx context.Context, endpoint string, opts *RequestOptions) Outcome {
	return c.execute(ctx, endpoint, opts, 0)
}

func (c *Client) Get(ctx context.Context, endpoint, token string) Outcome {
	return c.Request(ctx, endpoint, &RequestOptions{
		Method:  http.MethodGet,
		Headers: authHeaders(token),
	})
}

func (c *Client) Post(ctx context.Context, endpoint string, data any, token string) Outcome {
	return c.Request(ctx, endpoint, &RequestOptions{
		Method:  http.MethodPost,
		Headers: authHeaders(token),
		Body:    data,
	})
}

func (c *Client) Put(ctx context.Context, endpoint string, data any, token string) Outcome {
	return c.Request(ctx, endpoint, &RequestOptions{
		Method:  http.MethodPut,
		Headers: authHeaders(token),
		Body:    data,
	})
}

func (c *Client) Delete(ctx context.Context, endpoint, token string) Outcome {
	return c.Request(ctx, endpoint, &RequestOptions{
		Method:  http.MethodDelete,
		Headers: authHeaders(token),
	})
}

func (c *Client) execute(ctx context.Context, endpoint string, opts *RequestOptions, retryCount int) Outcome {
	if c.breaker.IsOpen() {
		c.logger.Debug("circuit breaker open, serving fallback", map[string]string{
			"endpoint": endpoint,
			"retry_in": c.breaker.RemainingTime().String(),
		})
		c.metrics.RecordFallback("breaker_open")

		return Outcome{
			Data:         fallback.DataFor(endpoint),
			Status:       http.StatusServiceUnavailable,
			FromFallback: true,
		}
	}

	url := BuildURL(c.baseURL, endpoint)

	start := time.Now()
	status, body, err := c.attempt(ctx, url, opts)
	duration := time.Since(start)

	if err == nil {
		// The request reached the server and produced a response; that is a
		// success for breaker purposes even when the status is non-2xx.
		c.breaker.RecordSuccess()
		c.metrics.RecordRequest(endpoint, strconv.Itoa(status), duration.Seconds())

		ok := status >= 200 && status < 300
		return Outcome{
			Data:   decodePayload(body, ok),
			Status: status,
			OK:     ok,
		}
	}

	c.breaker.RecordFailure()

	kind := classifyError(err)
	if kind == errKindTimeout {
		c.metrics.RecordTimeout()
	}
	c.metrics.RecordRequest(endpoint, "error", duration.Seconds())

	c.logger.Error("request attempt failed", map[string]string{
		"endpoint":   endpoint,
		"url":        url,
		"error":      err.Error(),
		"error_type": string(kind),
		"attempt":    strconv.Itoa(retryCount + 1),
	})

	if kind.retryable() && retryCount < c.retryAttempts {
		if c.waitBeforeRetry(ctx, kind, retryCount) {
			return c.execute(ctx, endpoint, opts, retryCount+1)
		}
	}

	c.metrics.RecordFallback("retries_exhausted")

	return Outcome{
		Data:         fallback.DataFor(endpoint),
		Status:       0,
		FromFallback: true,
	}
}

// waitBeforeRetry sleeps the linear backoff step, doubled when the backend is
// still starting up. Returns false when the caller context ends first.
func (c *Client) waitBeforeRetry(ctx context.Context, kind errorKind, retryCount int) bool {
	delay := c.retryDelay * time.Duration(retryCount+1)
	if kind == errKindBackendStarting {
		delay *= 2
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// attempt performs a single timed HTTP exchange. The deadline covers both the
// round trip and the body read; once it fires the in-flight operation is
// abandoned.
func (c *Client) attempt(ctx context.Context, url string, opts *RequestOptions) (int, []byte, error) {
	method := http.MethodGet
	headers := map[string]string{}
	var bodyReader io.Reader

	if opts != nil {
		if opts.Method != "" {
			method = opts.Method
		}
		for k, v := range opts.Headers {
			headers[k] = v
		}

		if opts.Body != nil {
			switch b := opts.Body.(type) {
			case string:
				bodyReader = strings.NewReader(b)
			case []byte:
				bodyReader = bytes.NewReader(b)
			default:
				encoded, err := json.Marshal(b)
				if err != nil {
					return 0, nil, errors.Wrap(err, "failed to encode request body")
				}
				bodyReader = bytes.NewReader(encoded)
				if _, set := headers["Content-Type"]; !set {
					headers["Content-Type"] = "application/json"
				}
			}
		}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, method, url, bodyReader)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to create request")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to read response body")
	}

	return resp.StatusCode, body, nil
}

// decodePayload turns a response body into a JSON-like value. Decode failures
// are downgraded to a synthetic object so malformed bodies never crash page
// code.
func decodePayload(body []byte, ok bool) any {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return map[string]any{"message": "Empty response"}
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err == nil {
		return decoded
	}

	return map[string]any{
		"success": ok,
		"message": text,
	}
}

func authHeaders(token string) map[string]string {
	if token == "" {
		return nil
	}

	return map[string]string{
		"Authorization": "Bearer " + token,
	}
}
