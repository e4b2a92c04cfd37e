package httpx

import (
	"log/slog"
	"net/http"
	"time"
)

// Config configures a Client. Use DefaultConfig() as a baseline.
type Config struct {
	// BaseURL is optional. If set, relative paths passed to NewRequest are resolved against it.
	BaseURL string

	// Timeout bounds each request. If the request context already has a deadline, the earlier one wins.
	Timeout time.Duration

	// Transport is the underlying RoundTripper. If nil, DefaultTransport() is used.
	Transport http.RoundTripper

	// DefaultHeaders are copied into every request (caller headers win).
	DefaultHeaders http.Header

	// UserAgent is set when the request does not already have a User-Agent header.
	UserAgent string

	// MaxErrorBodyBytes limits how many bytes are read into Error.RawBody and ReadBody.
	// If zero, DefaultMaxErrorBodyBytes is used.
	MaxErrorBodyBytes int64

	// MaxBodyBytes limits successful bodies read by DoBytes. Larger bodies
	// fail with ErrBodyTooLarge. If zero, DefaultMaxBodyBytes is used.
	MaxBodyBytes int64

	RequestID RequestIDConfig

	// RateLimit is the sustained requests per second; zero disables limiting.
	RateLimit float64
	// RateBurst defaults to 1 when RateLimit is set.
	RateBurst int

	// Logger receives one record per completed attempt. Nil disables logging.
	Logger *slog.Logger
}

const (
	DefaultMaxErrorBodyBytes int64 = 1 << 20  // 1MiB
	DefaultMaxBodyBytes      int64 = 32 << 20 // 32MiB
)

func DefaultConfig() Config {
	return Config{
		Timeout:           30 * time.Second,
		Transport:         DefaultTransport(),
		DefaultHeaders:    make(http.Header),
		MaxErrorBodyBytes: DefaultMaxErrorBodyBytes,
		MaxBodyBytes:      DefaultMaxBodyBytes,
		RequestID:         DefaultRequestIDConfig(),
	}
}
