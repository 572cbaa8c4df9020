package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

type contextKey string

const claimsKey contextKey = "claims"

// ContextWithClaims stores verified claims on the context.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the claims set by the gate, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

// Middleware rejects requests without a valid Authorization token and
// attaches the verified claims for downstream handlers.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.enabled {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := g.Authenticate(r.Header.Get("Authorization"))
		if err != nil {
			status, message := rejection(err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
			return
		}

		ctx := ContextWithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func rejection(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return http.StatusForbidden, "error_login_header"
	case errors.Is(err, ErrExpired):
		return http.StatusUnauthorized, "error_login_token_expired"
	default:
		return http.StatusNotFound, "error_login_invalid_token"
	}
}
