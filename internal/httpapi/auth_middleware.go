package httpapi

import (
	"context"
	"net/http"

	"interndesk/internal/auth"
	"interndesk/internal/logging"
)

type claimsKey struct{}

// ClaimsFrom returns the caller's token claims, if the request was authenticated.
func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return c, ok
}

func withClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// RequireAuth rejects requests without a valid session token.
func RequireAuth(tokens *auth.Tokens) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := auth.ParseBearer(r.Header.Get("Authorization"))
			if err != nil {
				WriteError(w, r, http.StatusUnauthorized, "unauthorized", "No token, authorization denied")
				return
			}
			claims, err := tokens.ParseSession(raw)
			if err != nil {
				logging.Ctx(r.Context()).Debug().Err(err).Msg("rejected token")
				WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Token is not valid")
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth attaches claims when a valid token is present and never rejects.
func OptionalAuth(tokens *auth.Tokens) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw, err := auth.ParseBearer(r.Header.Get("Authorization")); err == nil {
				if claims, err := tokens.ParseSession(raw); err == nil {
					r = r.WithContext(withClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFrom(r.Context())
		if !ok {
			WriteError(w, r, http.StatusUnauthorized, "unauthorized", "No token, authorization denied")
			return
		}
		if !c.IsAdmin() {
			WriteError(w, r, http.StatusForbidden, "forbidden", "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
