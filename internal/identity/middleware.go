package identity

import (
	"net/http"
	"strings"
)

// Middleware resolves an Authorization: Bearer token into the request
// context. Requests without a valid token proceed with the zero Identity;
// note routes are open and write attribution simply falls back.
func Middleware(tm *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok {
				if id, err := tm.Parse(strings.TrimSpace(token)); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
