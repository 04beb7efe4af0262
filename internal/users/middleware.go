package users

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/panafact/panafact/internal/platform/httpx"
)

// AuthMiddleware authenticates Bearer API tokens and puts the user on the
// request context.
type AuthMiddleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Require rejects requests without a valid token.
func (m AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		user, err := m.Service.Authenticate(r.Context(), token)
		if err != nil {
			if err != ErrInvalidToken && m.Logger != nil {
				m.Logger.Error("authenticate token", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}
