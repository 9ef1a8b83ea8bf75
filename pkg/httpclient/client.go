// Package httpclient builds the long-lived forecast HTTP client: retries with
// exponential backoff on top of an arbitrary transport (usually the cache).
package httpclient

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"weathercast/pkg/observe"
)

type Config struct {
	RetryMax      int
	BackoffFactor float64
	RetryWaitMax  time.Duration
}

// New returns a plain *http.Client whose requests are retried on connection
// errors, 429 and 5xx. Once retries are exhausted the last response is
// returned unchanged so callers can report its status.
func New(cfg Config, transport http.RoundTripper, l *observe.Logger) *http.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: transport}
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 0
	rc.RetryWaitMax = cfg.RetryWaitMax
	rc.Backoff = FactorBackoff(cfg.BackoffFactor)
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if l != nil {
		rc.Logger = observe.NewLeveledLogger(l)
	} else {
		rc.Logger = nil
	}

	return rc.StandardClient()
}

// FactorBackoff waits factor·2ⁿ seconds before retry n (0-based), bounded by
// [min, max]. A Retry-After header on 429/503 takes precedence.
func FactorBackoff(factor float64) retryablehttp.Backoff {
	return func(min, max time.Duration, attemptNum int, resp *http.Response) time.Duration {
		if resp != nil && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable) {
			if s := resp.Header.Get("Retry-After"); s != "" {
				if sec, err := strconv.Atoi(s); err == nil && sec >= 0 {
					return clamp(time.Duration(sec)*time.Second, min, max)
				}
			}
		}

		wait := time.Duration(factor * math.Pow(2, float64(attemptNum)) * float64(time.Second))
		return clamp(wait, min, max)
	}
}

func clamp(d, min, max time.Duration) time.Duration {
	if d < min {
		return min
	}
	if max > 0 && d > max {
		return max
	}
	return d
}
