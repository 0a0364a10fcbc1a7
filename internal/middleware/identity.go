package middleware

import (
	"net/http"
	"strings"

	"blogapi/internal/auth"
)

// ResolveIdentity reads the bearer credential from the Authorization header
// or, for compatibility, the token query parameter, and attaches the
// verified identity to the request context. Resolution is lenient: a
// missing or failing credential leaves the request unauthenticated instead
// of rejecting it — public reads must work without one, and the mutations
// apply their own gate.
func ResolveIdentity(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := ""
			if ah := r.Header.Get("Authorization"); strings.HasPrefix(ah, "Bearer ") {
				raw = strings.TrimPrefix(ah, "Bearer ")
			} else if t := r.URL.Query().Get("token"); t != "" {
				raw = t
			}
			if raw != "" {
				if uid, err := tokens.Parse(raw); err == nil {
					r = r.WithContext(auth.WithIdentity(r.Context(), uid))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
