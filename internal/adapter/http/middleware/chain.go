package middleware

import "net/http"

// Interceptor runs before a handler. It returns the request to pass on,
// possibly with an enriched context, and false once it has written a
// response itself.
type Interceptor func(w http.ResponseWriter, r *http.Request) (*http.Request, bool)

// Chain runs interceptors in order and calls h only if all of them continue.
func Chain(h http.Handler, interceptors ...Interceptor) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, intercept := range interceptors {
			next, ok := intercept(w, r)
			if !ok {
				return
			}
			r = next
		}
		h.ServeHTTP(w, r)
	})
}
