package auth

import (
	"encoding/json"
	"net/http"
)

// Middleware returns HTTP middleware that authenticates requests with
// the given authenticators, tried in order. The first authenticator
// whose Supports returns true decides the outcome; an unsupported or
// failed request gets 401.
func Middleware(authenticators ...Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := &AuthRequest{Headers: r.Header}
			ctx := r.Context()

			for _, a := range authenticators {
				if !a.Supports(ctx, req) {
					continue
				}

				result, err := a.Authenticate(ctx, req)
				if err != nil {
					writeAuthError(w, http.StatusInternalServerError, "authentication unavailable")
					return
				}
				if !result.Authenticated {
					writeAuthError(w, http.StatusUnauthorized, result.Error.Error())
					return
				}

				next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, result.Identity)))
				return
			}

			writeAuthError(w, http.StatusUnauthorized, ErrMissingCredentials.Error())
		})
	}
}

// RequireRole returns middleware that rejects authenticated callers
// lacking the role with 403. It must run after Middleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromContext(r.Context())
			if id == nil || !id.HasRole(role) {
				writeAuthError(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeAuthError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
