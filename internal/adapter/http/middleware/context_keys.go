package middleware

import "context"

// ContextKey is the type of keys this package stores in a request context.
type ContextKey string

const (
	UserIDCtxKey    = ContextKey("user_id")
	RequestIDCtxKey = ContextKey("request_id")
)

// UserIDFromContext returns the user set by the bearer guard.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDCtxKey).(string)
	return id, ok && id != ""
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDCtxKey).(string)
	return id
}
