package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

const (
	csrfCookieName = "hearth_csrf"
	csrfFormField  = "_csrf"
	csrfHeaderName = "X-CSRF-Token"
	csrfTokenBytes = 32
)

type csrfKey struct{}

// CSRFToken returns the token templates embed in forms, or "" when the
// request did not pass through the CSRF middleware.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}

func mintCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CSRF applies the double-submit cookie pattern. Every response carries a
// random token in an HttpOnly cookie; mutating requests must echo that token
// in the _csrf form field or X-CSRF-Token header. A request whose echo does
// not match the cookie is rejected with 403 before it reaches any handler.
// Safe methods only seed the cookie and token context for templates.
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string
			if c, err := r.Cookie(csrfCookieName); err == nil && len(c.Value) == 2*csrfTokenBytes {
				token = c.Value
			}
			if token == "" {
				minted, err := mintCSRFToken()
				if err != nil {
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				token = minted
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Secure:   secure,
				})
			}

			r = r.WithContext(context.WithValue(r.Context(), csrfKey{}, token))

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			presented := r.Header.Get(csrfHeaderName)
			if presented == "" {
				presented = r.PostFormValue(csrfFormField)
			}
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"invalid csrf token"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
