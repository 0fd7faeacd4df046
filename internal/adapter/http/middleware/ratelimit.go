package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/http/response"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/ratelimit"
)

// LimitObserver is told whenever a request is rejected.
type LimitObserver interface {
	RateLimited(policy string)
}

// RateLimit counts every request under policy per client IP and answers 429
// once the window's cap is exceeded. The client IP is resolved by proxies; a
// nil *ProxyTrust keys on the connection's remote address.
func RateLimit(limiter *ratelimit.Limiter, policy ratelimit.Policy, obs LimitObserver, proxies *ProxyTrust) Interceptor {
	return func(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
		d := limiter.Allow(r.Context(), policy, proxies.ClientIP(r))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if d.Allowed {
			return r, true
		}

		if obs != nil {
			obs.RateLimited(policy.Name)
		}
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
		response.Message(w, http.StatusTooManyRequests, policy.Message)
		return r, false
	}
}
