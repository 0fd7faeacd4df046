package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/adapter/http/response"
	"github.com/Monkfuego/rentsetu-prereleasebe/internal/auth/domain"
)

type AccessTokenParser interface {
	ParseAccessToken(token string) (string, error)
}

// BearerGuard requires "Authorization: Bearer <token>" and puts the token's
// user ID in the request context.
func BearerGuard(tokens AccessTokenParser) Interceptor {
	return func(w http.ResponseWriter, r *http.Request) (*http.Request, bool) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" {
			response.Message(w, http.StatusUnauthorized, domain.ErrMissingAccessToken.Message)
			return r, false
		}
		scheme, token, found := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
			response.Message(w, http.StatusUnauthorized, domain.ErrInvalidAccessToken.Message)
			return r, false
		}

		userID, err := tokens.ParseAccessToken(token)
		if err != nil {
			response.Message(w, http.StatusUnauthorized, domain.ErrInvalidAccessToken.Message)
			return r, false
		}
		return r.WithContext(context.WithValue(r.Context(), UserIDCtxKey, userID)), true
	}
}
