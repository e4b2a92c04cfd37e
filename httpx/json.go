package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrBodyTooLarge reports a successful response larger than MaxBodyBytes.
var ErrBodyTooLarge = errors.New("response body too large")

// NewJSONRequest builds a request whose body is v encoded as JSON.
func (c *Client) NewJSONRequest(ctx context.Context, method, path string, body any, opts ...RequestOption) (*http.Request, error) {
	opts2 := make([]RequestOption, 0, len(opts)+1)
	opts2 = append(opts2, WithJSON(body))
	opts2 = append(opts2, opts...)
	req, err := c.NewRequest(ctx, method, path, opts2...)
	if err != nil {
		return nil, err
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	return req, nil
}

// DoBytes performs the request like DoStatus and returns the response body.
// A body over MaxBodyBytes is an error wrapping ErrBodyTooLarge, never a
// silently truncated slice. The response body is always closed.
func (c *Client) DoBytes(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.DoStatus(req)
	if err != nil {
		return resp, nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, c.maxOKBody+1))
	if err == nil && int64(len(b)) > c.maxOKBody {
		err = fmt.Errorf("%w: over %d bytes", ErrBodyTooLarge, c.maxOKBody)
	}
	if err != nil {
		return resp, nil, &Error{Method: req.Method, URL: req.URL.String(), StatusCode: resp.StatusCode, Cause: err}
	}
	return resp, b, nil
}
