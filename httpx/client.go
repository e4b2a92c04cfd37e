package httpx

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	httpClient *http.Client

	baseURL *url.URL

	timeout        time.Duration
	defaultHeaders http.Header
	userAgent      string
	maxBody        int64
	maxOKBody      int64

	requestID RequestIDConfig

	rateLimiter RateLimiter
	before      []BeforeHook
	after       []AfterHook
}

// New constructs a Client from DefaultConfig() plus the provided options.
func New(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	for _, o := range opts {
		if o != nil {
			o.apply(&cfg)
		}
	}
	return NewWithConfig(cfg)
}

func NewWithConfig(cfg Config) (*Client, error) {
	var bu *url.URL
	if s := strings.TrimSpace(cfg.BaseURL); s != "" {
		u, err := url.Parse(s)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, &url.Error{Op: "parse", URL: cfg.BaseURL, Err: errors.New("base url must be absolute")}
		}
		// The base path is a prefix for every relative path.
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		bu = u
	}

	rt := cfg.Transport
	if rt == nil {
		rt = DefaultTransport()
	}

	maxBody := cfg.MaxErrorBodyBytes
	if maxBody == 0 {
		maxBody = DefaultMaxErrorBodyBytes
	}
	maxOKBody := cfg.MaxBodyBytes
	if maxOKBody == 0 {
		maxOKBody = DefaultMaxBodyBytes
	}

	c := &Client{
		httpClient:     &http.Client{Transport: rt},
		baseURL:        bu,
		timeout:        cfg.Timeout,
		defaultHeaders: cfg.DefaultHeaders.Clone(),
		userAgent:      cfg.UserAgent,
		maxBody:        maxBody,
		maxOKBody:      maxOKBody,
		requestID:      cfg.RequestID,
		rateLimiter:    NewRateLimiter(cfg.RateLimit, cfg.RateBurst),
	}
	if c.defaultHeaders == nil {
		c.defaultHeaders = make(http.Header)
	}
	if c.requestID.New == nil && c.requestID.Header != "" {
		c.requestID.New = DefaultRequestID
	}
	if cfg.Logger != nil {
		c.after = append(c.after, LogHook(cfg.Logger, c.requestID.Header))
	}
	return c, nil
}

// WithRateLimiter replaces the client-wide rate limiter.
// Call this during initialization (before the client is used concurrently).
func (c *Client) WithRateLimiter(rl RateLimiter) *Client {
	c.rateLimiter = rl
	return c
}

// WithHooks adds hooks run around every request.
func (c *Client) WithHooks(before []BeforeHook, after []AfterHook) *Client {
	c.before = append(c.before, before...)
	c.after = append(c.after, after...)
	return c
}

func (c *Client) resolveURL(path string, q url.Values) (*url.URL, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty url/path")
	}
	u, err := url.Parse(p)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		if c.baseURL == nil {
			return nil, errors.New("relative path requires BaseURL")
		}
		// A leading "/" stays under the base path prefix.
		u2 := *u
		u2.Path = strings.TrimPrefix(u2.Path, "/")
		u = c.baseURL.ResolveReference(&u2)
	} else {
		u2 := *u
		u = &u2
	}
	if q != nil {
		qq := u.Query()
		for k, vv := range q {
			for _, v := range vv {
				qq.Add(k, v)
			}
		}
		u.RawQuery = qq.Encode()
	}
	return u, nil
}

func earliestDeadline(base context.Context, timeouts ...time.Duration) (time.Time, bool) {
	now := time.Now()
	var earliest time.Time
	for _, d := range timeouts {
		if d <= 0 {
			continue
		}
		dd := now.Add(d)
		if earliest.IsZero() || dd.Before(earliest) {
			earliest = dd
		}
	}
	if dl, ok := base.Deadline(); ok {
		if earliest.IsZero() || dl.Before(earliest) {
			earliest = dl
		}
	}
	return earliest, !earliest.IsZero()
}

// Do executes the request once. Like net/http, non-2xx responses are
// returned with a nil error.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.do(req, false)
}

// DoStatus executes the request once and converts responses with status
// >= 400 into *Error. The error body is read up to MaxErrorBodyBytes.
func (c *Client) DoStatus(req *http.Request) (*http.Response, error) {
	return c.do(req, true)
}

func (c *Client) do(req *http.Request, statusAsError bool) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	ctx := req.Context()
	cancel := func() {}
	if dl, ok := earliestDeadline(ctx, c.timeout, requestTimeout(ctx)); ok {
		ctx, cancel = context.WithDeadline(ctx, dl)
	}
	req = req.Clone(ctx)

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			cancel()
			return nil, err
		}
	}
	for _, h := range c.before {
		if h == nil {
			continue
		}
		if err := h(req); err != nil {
			cancel()
			return nil, err
		}
	}

	t0 := time.Now()
	resp, err := c.httpClient.Do(req)
	dur := time.Since(t0)
	for _, h := range c.after {
		if h != nil {
			h(req, resp, err, dur)
		}
	}

	if err != nil {
		cancel()
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if !statusAsError {
			return nil, err
		}
		return nil, &Error{
			Method:    req.Method,
			URL:       req.URL.String(),
			RequestID: strings.TrimSpace(req.Header.Get(c.requestID.Header)),
			Cause:     err,
		}
	}

	// The deadline must outlive the call so the caller can read the body.
	resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}

	if statusAsError && resp.StatusCode >= 400 {
		return c.responseToError(req, resp)
	}
	return resp, nil
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func (c *Client) responseToError(req *http.Request, resp *http.Response) (*http.Response, error) {
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	resp.Body = io.NopCloser(bytes.NewReader(raw))

	rid := ""
	if c.requestID.Header != "" {
		rid = strings.TrimSpace(resp.Header.Get(c.requestID.Header))
		if rid == "" {
			rid = strings.TrimSpace(req.Header.Get(c.requestID.Header))
		}
	}

	return resp, &Error{
		Method:     req.Method,
		URL:        req.URL.String(),
		StatusCode: resp.StatusCode,
		RequestID:  rid,
		RawBody:    raw,
		Cause:      errors.New(http.StatusText(resp.StatusCode)),
	}
}
