// Package apix is the single chokepoint for every call to the storefront
// backend: URL building, identity headers, JSON normalization, error
// taxonomy and the 401 forced-logout side effect.
package apix

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/Khatrip009/MinalGems-website/internal/identity"
	"github.com/Khatrip009/MinalGems-website/internal/logx"
)

// DefaultBaseURL is used when no API_BASE_URL is configured.
const DefaultBaseURL = "https://apiminalgems.exotech.co.in"

const visitorHeader = "x-visitor-id"

// NormalizeBaseURL canonicalizes a configured base so the result always
// ends in exactly one "/api": trailing slashes are stripped, an existing
// "/api" suffix is stripped, then "/api" is appended.
func NormalizeBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		base = DefaultBaseURL
	}
	for strings.HasSuffix(base, "/") {
		base = strings.TrimSuffix(base, "/")
	}
	base = strings.TrimSuffix(base, "/api")
	return base + "/api"
}

// Client issues requests against the normalized base URL. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	id         *identity.Store
	log        *zap.Logger

	// maxGETRetries bounds the extra attempts made for idempotent GETs on
	// transport failures and 5xx gateway answers. Mutations always fire
	// exactly once.
	maxGETRetries uint64
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithGETRetries sets the retry budget for idempotent GETs. Zero disables
// retrying.
func WithGETRetries(n uint64) Option {
	return func(c *Client) { c.maxGETRetries = n }
}

// New builds a Client for the given raw base URL. The identity store
// supplies the visitor header and bearer token for every request.
func New(rawBaseURL string, id *identity.Store, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		baseURL: NormalizeBaseURL(rawBaseURL),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar, // cookies always travel alongside header auth
		},
		id:            id,
		log:           logx.GetScope("apix"),
		maxGETRetries: 2,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the normalized base, always "<host>/api".
func (c *Client) BaseURL() string { return c.baseURL }

// Identity exposes the identity store to domain modules that persist
// server-issued ids (visitors, auth).
func (c *Client) Identity() *identity.Store { return c.id }

func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// RequestOptions carries the per-call knobs. Body is JSON-encoded unless it
// is an io.Reader or []byte, which pass through untouched so multipart
// boundaries survive.
type RequestOptions struct {
	Method string
	Body   any
	Header http.Header
}

// Do performs one call and decodes the JSON response into out (which may be
// nil). All failures are one of the apix error types.
func (c *Client) Do(ctx context.Context, path string, opts *RequestOptions, out any) error {
	if opts == nil {
		opts = &RequestOptions{}
	}
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	attempt := func() error {
		return c.doOnce(ctx, method, c.buildURL(path), opts, out)
	}

	if method != http.MethodGet || c.maxGETRetries == 0 {
		return attempt()
	}

	// Idempotent GETs get a small bounded retry with exponential backoff.
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(200*time.Millisecond),
			backoff.WithMaxInterval(2*time.Second),
		), c.maxGETRetries),
		ctx,
	)
	return backoff.Retry(func() error {
		err := attempt()
		if err == nil || !retryableGET(err) {
			return backoff.Permanent(err)
		}
		c.log.Debug("retrying GET", zap.String("path", path), zap.Error(err))
		return err
	}, bo)
}

func retryableGET(err error) bool {
	switch e := err.(type) {
	case *NetworkError:
		return true
	case *APIError:
		return e.Status == http.StatusBadGateway ||
			e.Status == http.StatusServiceUnavailable ||
			e.Status == http.StatusGatewayTimeout
	default:
		return false
	}
}

func (c *Client) doOnce(ctx context.Context, method, url string, opts *RequestOptions, out any) error {
	var bodyReader io.Reader
	rawBody := false
	if opts.Body != nil && method != http.MethodGet {
		switch b := opts.Body.(type) {
		case io.Reader:
			bodyReader = b
			rawBody = true
		case []byte:
			bodyReader = bytes.NewReader(b)
			rawBody = true
		case string:
			bodyReader = strings.NewReader(b)
		default:
			enc, err := json.Marshal(b)
			if err != nil {
				return &ValidationError{Code: "unencodable_body"}
			}
			bodyReader = bytes.NewReader(enc)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return &NetworkError{Err: err}
	}

	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	// JSON content type only when we encoded the body ourselves; raw bodies
	// (multipart forms) keep whatever the caller set.
	if bodyReader != nil && !rawBody && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(visitorHeader, c.id.RequestVisitorID())
	if tok := c.id.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("network error", zap.String("method", method), zap.String("url", url), zap.Error(err))
		return &NetworkError{Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return &InvalidResponseError{Status: res.StatusCode, Err: err}
	}

	if res.StatusCode == http.StatusUnauthorized {
		// Forced logout happens here, before the caller sees the error.
		c.id.ClearAuth()
		return &UnauthorizedError{Payload: payload}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		code, _ := payload["error"].(string)
		return &APIError{Status: res.StatusCode, Code: code, Payload: payload}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return &InvalidResponseError{Status: res.StatusCode, Err: err}
		}
	}
	return nil
}

// Get issues a GET for path and decodes into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, path, nil, out)
}

// Post issues a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, path, &RequestOptions{Method: http.MethodPost, Body: body}, out)
}

// Put issues a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, path, &RequestOptions{Method: http.MethodPut, Body: body}, out)
}

// Patch issues a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, path, &RequestOptions{Method: http.MethodPatch, Body: body}, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, path, &RequestOptions{Method: http.MethodDelete}, out)
}
