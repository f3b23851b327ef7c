package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/lakshyafoods/storefront/utils"
)

// RateLimitConfig holds configuration for rate limiting middleware
type RateLimitConfig struct {
	// RequestLimit is the maximum number of requests allowed in the window
	RequestLimit int
	// WindowSize is the time window for rate limiting
	WindowSize time.Duration
	// KeyFunc extracts the rate limit key; nil limits by client IP
	KeyFunc func(r *http.Request) (string, error)
}

// RateLimit creates a sliding window rate limiter that answers 429 in the
// standard error envelope with a Retry-After header
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = httprate.KeyByIP
	}

	return httprate.Limit(
		cfg.RequestLimit,
		cfg.WindowSize,
		httprate.WithKeyFuncs(keyFunc),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(cfg.WindowSize.Seconds())))
			_ = utils.WriteTooManyRequests(w, "Too many requests. Please try again later.", nil)
		}),
	)
}

// AuthRateLimit limits credential endpoints (sign-in, sign-up, contact)
// to perMinute requests per client IP
func AuthRateLimit(perMinute int) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{
		RequestLimit: perMinute,
		WindowSize:   time.Minute,
	})
}
