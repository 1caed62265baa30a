package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
)

// RequireAuth rejects requests without a valid bearer token for a known user.
func RequireAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return chi.Chain(oauth.Authorize(secret, nil), requireUser).Handler(next)
	}
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httpx.Actor(r) == nil {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "auth.claims")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// OptionalAuth authenticates the request when it carries a bearer token,
// and lets anonymous requests through.
func OptionalAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authorized := oauth.Authorize(secret, nil)(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			authorized.ServeHTTP(w, r)
		})
	}
}

// CookieAuth lets browsers authenticate with the access_token cookie when
// no Authorization header is sent.
func CookieAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("authorization") == "" {
			if token, err := r.Cookie("access_token"); err == nil && token.Value != "" {
				r.Header.Set("authorization", "Bearer "+token.Value)
			}
		}
		next.ServeHTTP(w, r)
	})
}
