package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"
)

type RequestOption interface{ apply(*requestConfig) }

type requestOptionFunc func(*requestConfig)

func (f requestOptionFunc) apply(c *requestConfig) { f(c) }

type requestConfig struct {
	header  http.Header
	timeout time.Duration

	body        []byte
	bodyErr     error
	contentType string
}

func WithHeader(key, value string) RequestOption {
	return requestOptionFunc(func(c *requestConfig) {
		if c.header == nil {
			c.header = make(http.Header)
		}
		c.header.Set(key, value)
	})
}

func WithHeaders(h map[string]string) RequestOption {
	return requestOptionFunc(func(c *requestConfig) {
		if len(h) == 0 {
			return
		}
		if c.header == nil {
			c.header = make(http.Header)
		}
		for k, v := range h {
			c.header.Set(k, v)
		}
	})
}

// WithRequestTimeout sets a per-request deadline upper bound.
// If the request context already has a deadline, the earlier one wins.
func WithRequestTimeout(d time.Duration) RequestOption {
	return requestOptionFunc(func(c *requestConfig) { c.timeout = d })
}

// WithJSON sets the request body to v encoded as JSON.
func WithJSON(v any) RequestOption {
	return requestOptionFunc(func(c *requestConfig) {
		b, err := json.Marshal(v)
		if err != nil {
			// Surfaced by NewRequest.
			c.bodyErr = err
			return
		}
		c.body = b
		c.contentType = "application/json"
	})
}

type requestTimeoutKey struct{}

func requestTimeout(ctx context.Context) time.Duration {
	d, _ := ctx.Value(requestTimeoutKey{}).(time.Duration)
	return d
}

func (c *Client) NewRequest(ctx context.Context, method, path string, opts ...RequestOption) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	rc := requestConfig{}
	for _, o := range opts {
		if o != nil {
			o.apply(&rc)
		}
	}
	if rc.bodyErr != nil {
		return nil, rc.bodyErr
	}

	u, err := c.resolveURL(path, nil)
	if err != nil {
		return nil, err
	}
	if rc.timeout > 0 {
		ctx = context.WithValue(ctx, requestTimeoutKey{}, rc.timeout)
	}

	var body io.Reader
	if rc.body != nil {
		body = bytes.NewReader(rc.body)
	}
	req, err := http.NewRequestWithContext(ctx, strings.ToUpper(method), u.String(), body)
	if err != nil {
		return nil, err
	}

	// Default headers first, then request headers override.
	for k, vv := range c.defaultHeaders {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	for k, vv := range rc.header {
		req.Header.Del(k)
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if rc.contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", rc.contentType)
	}
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.requestID.Header != "" && req.Header.Get(c.requestID.Header) == "" && c.requestID.New != nil {
		if id := strings.TrimSpace(c.requestID.New()); id != "" {
			req.Header.Set(c.requestID.Header, id)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return req, nil
}
