package sdk

import (
	"bytes"
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

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	headerRequestID    = "X-Request-ID"
	headerOrganization = "X-Organization-ID"
)

// Client is a typed Go client for the rfpdesk backend.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	tokens    oauth2.TokenSource
	retryCfg  retry.Config
	timeout   time.Duration
	logger    *slog.Logger
	userAgent string
}

// NewClient creates a client for the backend at baseURL. tokens may be nil,
// in which case every call fails with ErrUnauthenticated.
func NewClient(baseURL string, tokens oauth2.TokenSource, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse api url: unsupported scheme %q", u.Scheme)
	}
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	if o.maxAttempts < 1 {
		o.maxAttempts = 1
	}
	return &Client{
		baseURL:   u,
		http:      o.httpClient,
		tokens:    tokens,
		timeout:   o.timeout,
		logger:    o.logger,
		userAgent: o.userAgent,
		retryCfg: retry.Config{
			MaxAttempts:   o.maxAttempts,
			InitialDelay:  o.initialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
	}, nil
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type orgKey struct{}

// WithOrganization returns a context whose calls are scoped to orgID.
func WithOrganization(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, orgKey{}, orgID)
}

// OrganizationFrom returns the organization stored in ctx, if any.
func OrganizationFrom(ctx context.Context) (string, bool) {
	org, ok := ctx.Value(orgKey{}).(string)
	return org, ok && org != ""
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// get issues an idempotent read, retrying temporary failures.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*response, error) {
	return c.execute(ctx, request{method: http.MethodGet, path: path, query: query}, true)
}

// send issues a write exactly once.
func (c *Client) send(ctx context.Context, req request) (*response, error) {
	return c.execute(ctx, req, false)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) (*response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	return c.send(ctx, request{method: method, path: path, body: body, contentType: "application/json"})
}

func (c *Client) execute(ctx context.Context, req request, retryable bool) (*response, error) {
	token, err := c.token()
	if err != nil {
		return nil, err
	}
	org, ok := OrganizationFrom(ctx)
	if !ok {
		return nil, ErrNoOrganization
	}

	run := func(ctx context.Context) (*response, error) {
		return c.roundTrip(ctx, req, token, org)
	}
	if retryable {
		once := run
		run = func(ctx context.Context) (*response, error) {
			// Permanent failures end the retry loop early; the error is
			// carried out of Do separately.
			var permanent error
			r := retry.New[*response](c.retryCfg)
			res, err := r.Do(ctx, func(ctx context.Context) (*response, error) {
				res, err := once(ctx)
				if err != nil && !IsTemporary(err) {
					permanent = err
					return nil, nil
				}
				return res, err
			})
			if permanent != nil {
				return nil, permanent
			}
			return res, err
		}
	}

	t := timeout.New[*response](timeout.Config{DefaultTimeout: c.timeout})
	res, err := t.Execute(ctx, c.timeout, run)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) token() (*oauth2.Token, error) {
	if c.tokens == nil {
		return nil, ErrUnauthenticated
	}
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if !tok.Valid() {
		return nil, ErrUnauthenticated
	}
	return tok, nil
}

func (c *Client) roundTrip(ctx context.Context, req request, token *oauth2.Token, org string) (*response, error) {
	u := c.baseURL.JoinPath(req.path)
	if strings.HasSuffix(req.path, "/") && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestID := uuid.NewString()
	token.SetAuthHeader(httpReq)
	httpReq.Header.Set(headerRequestID, requestID)
	httpReq.Header.Set(headerOrganization, org)
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed", "method", req.method, "path", req.path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.method, req.path, err)
	}
	c.logger.Debug("request",
		"method", req.method,
		"path", req.path,
		"status", httpResp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, &APIError{
			Status:  httpResp.StatusCode,
			Method:  req.method,
			Path:    req.path,
			Message: errorMessage(data),
		}
	}
	return &response{status: httpResp.StatusCode, header: httpResp.Header, body: data}, nil
}

// decodeInto unmarshals a response without record validation.
func decodeInto[T any](path string, res *response) (T, error) {
	var v T
	if err := json.Unmarshal(res.body, &v); err != nil {
		return v, &DecodeError{Path: path, Err: err}
	}
	return v, nil
}

func wrapDecode(path string, err error) error {
	if err == nil {
		return nil
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return err
	}
	return &DecodeError{Path: path, Err: err}
}
