package botapi

import (
	"io"
	"net/http"
	"strconv"
	"time"
)

// retryAfterOf extracts the provider wait from the body parameters, then the
// Retry-After header, then falls back to defaultFloodWait
func retryAfterOf(env envelope, h http.Header) time.Duration {
	if env.Parameters != nil && env.Parameters.RetryAfter > 0 {
		return time.Duration(env.Parameters.RetryAfter) * time.Second
	}
	if ra := atoi(h.Get("Retry-After")); ra > 0 {
		return time.Duration(ra) * time.Second
	}
	return defaultFloodWait
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	i, _ := strconv.Atoi(s)
	return i
}

// tail trims a body for diagnostics
func tail(b []byte) string {
	if len(b) > 256 {
		b = b[:256]
	}
	return string(b)
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}

// backoff is a shifted exponential with a 30s cap
func backoff(base time.Duration, attempt int) time.Duration {
	if attempt > 6 {
		attempt = 6
	}
	ms := int64(base / time.Millisecond)
	ms = ms << uint(attempt)
	max := int64(30 * time.Second / time.Millisecond)
	if ms > max {
		ms = max
	}
	return time.Duration(ms) * time.Millisecond
}
