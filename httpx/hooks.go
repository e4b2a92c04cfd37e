package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter throttles outgoing requests. Wait blocks until a request may
// proceed or ctx is done. *rate.Limiter satisfies it.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// NewRateLimiter returns a token bucket allowing rps requests per second.
// It returns nil when rps is not positive.
func NewRateLimiter(rps float64, burst int) RateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

type BeforeHook func(req *http.Request) error

type AfterHook func(req *http.Request, resp *http.Response, err error, dur time.Duration)

// LogHook logs every completed request at debug level and failures at warn.
// requestIDHeader names the header whose value is attached to each record.
func LogHook(logger *slog.Logger, requestIDHeader string) AfterHook {
	return func(req *http.Request, resp *http.Response, err error, dur time.Duration) {
		attrs := []any{
			"method", req.Method,
			"url", req.URL.Redacted(),
			"duration", dur,
		}
		if rid := req.Header.Get(requestIDHeader); requestIDHeader != "" && rid != "" {
			attrs = append(attrs, "request_id", rid)
		}
		switch {
		case err != nil:
			logger.Warn("http request failed", append(attrs, "error", err)...)
		case resp.StatusCode >= 400:
			logger.Warn("http request returned error status", append(attrs, "status", resp.StatusCode)...)
		default:
			logger.Debug("http request", append(attrs, "status", resp.StatusCode)...)
		}
	}
}
