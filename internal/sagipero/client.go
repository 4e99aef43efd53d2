package sagipero

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
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/sagipero/admin-console/internal/metrics"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
)

// Client talks to the Sagipero REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetry sets the retry budget and the linear delay step.
func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.retryDelay = delay
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CallBudget is the longest a single Do can take: every attempt running to
// the timeout plus the linear waits between attempts.
func CallBudget(timeout time.Duration, maxRetries int, delay time.Duration) time.Duration {
	n := time.Duration(max(maxRetries, 0))
	return (n+1)*timeout + delay*n*(n+1)/2
}

// BaseURL returns the API base the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// SetToken installs the bearer token sent on every subsequent request.
// An empty token removes the Authorization header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Request describes one call to the backend.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// Response is a successful backend reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	RetryCount int
}

// Decode unmarshals the body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ContentType returns the media type of the response without parameters.
func (r *Response) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(strings.ToLower(ct))
}

// Do sends the request, retrying transient failures up to the configured
// budget with a linearly growing delay. Cancelling ctx aborts both the
// in-flight attempt and any pending retry wait.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	var body []byte
	if req.Body != nil {
		var err error
		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
	}

	var (
		resp     *Response
		attempts int
	)
	backoff := retry.WithMaxRetries(uint64(c.maxRetries), linearBackoff(c.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if attempts > 0 {
			metrics.BackendRetries.Inc()
			c.logger.Warn().
				Str("method", req.Method).
				Str("path", req.Path).
				Int("attempt", attempts).
				Int("max_retries", c.maxRetries).
				Msg("retrying backend request")
		}
		attempts++

		r, err := c.send(ctx, req, body)
		if err != nil {
			if shouldRetry(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		resp = r
		return nil
	})

	retries := max(attempts-1, 0)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			apiErr.RetryCount = retries
			metrics.BackendRequests.WithLabelValues(req.Method, apiErr.Kind.String()).Inc()
		} else {
			metrics.BackendRequests.WithLabelValues(req.Method, "cancelled").Inc()
		}
		return nil, err
	}

	resp.RetryCount = retries
	if resp.RetryCount > 0 {
		c.logger.Info().
			Str("method", req.Method).
			Str("path", req.Path).
			Int("retries", resp.RetryCount).
			Msg("backend request recovered")
	}
	metrics.BackendRequests.WithLabelValues(req.Method, "ok").Inc()
	return resp, nil
}

func (c *Client) send(ctx context.Context, req Request, body []byte) (*Response, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newNetworkError(req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, newNetworkError(req.Method, req.Path, err)
	}

	if httpResp.StatusCode >= 400 {
		return nil, newStatusError(req.Method, req.Path, httpResp.StatusCode, data)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

// linearBackoff waits n*step before the nth retry.
func linearBackoff(step time.Duration) retry.Backoff {
	var n int64
	return retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return time.Duration(n) * step, false
	})
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return resp.Decode(result)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	resp, err := c.Do(ctx, Request{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return resp.Decode(result)
}

func (c *Client) doNoBody(ctx context.Context, method, path string) error {
	_, err := c.Do(ctx, Request{Method: method, Path: path})
	return err
}

// LoginResult is the reply of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// ErrNoToken is returned when the backend accepts a login without issuing a token.
var ErrNoToken = errors.New("login response did not include a token")

// Login exchanges credentials for a token and installs it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	if err := c.doJSON(ctx, http.MethodPost, "/users/login",
		map[string]string{"email": email, "password": password}, &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, ErrNoToken
	}
	c.SetToken(res.Token)
	return &res, nil
}

// Logout forgets the token.
func (c *Client) Logout() {
	c.SetToken("")
}
