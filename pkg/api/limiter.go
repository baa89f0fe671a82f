package api

import (
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/hazyhaar/provider-directory/pkg/metrics"
)

// Limiter is a process-wide token bucket in front of the API.
type Limiter struct {
	limiter *rate.Limiter
	metrics *metrics.Metrics
}

// NewLimiter allows rps requests per second with the given burst. m may be nil.
func NewLimiter(rps float64, burst int, m *metrics.Metrics) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(rps), burst), metrics: m}
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.limiter.Allow() {
			if l.metrics != nil {
				l.metrics.RateLimited.Inc()
			}
			retry := time.Second
			if lim := l.limiter.Limit(); lim > 0 {
				retry = max(time.Duration(float64(time.Second)/float64(lim)), time.Second)
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
