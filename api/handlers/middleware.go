package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/openlems/lems-backend/pkg/jwt"
)

type contextKey string

const claimsContextKey contextKey = "operator-claims"

// AuthMiddleware validates the bearer token and attaches the operator
// claims to the request context.
func AuthMiddleware(jwtService jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the operator claims attached by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*jwt.OperatorClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*jwt.OperatorClaims)
	return claims, ok
}
