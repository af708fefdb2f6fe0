package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

const (
	// csrfTokenLength is the byte length of CSRF tokens (32 bytes = 64 hex chars).
	csrfTokenLength = 32

	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "ink_csrf"

	// CSRFHeaderName is the header the frontend sends the CSRF token in.
	// The client reads the cookie and mirrors it on every mutation.
	CSRFHeaderName = "X-CSRF-Token"
)

// NewCSRF returns a double-submit cookie CSRF middleware. It generates a
// token stored in a readable cookie and validates that state-changing
// requests (POST, PUT, PATCH, DELETE) include the same token in the
// X-CSRF-Token header.
func NewCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Ensure a CSRF token cookie exists.
			var token string
			cookie, err := r.Cookie(CSRFCookieName)
			if err == nil && cookie.Value != "" {
				token = cookie.Value
			} else {
				token, err = generateCSRFToken()
				if err != nil {
					jsonError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false, // the client must read this to echo it back
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}

			// Safe methods don't need CSRF validation.
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			submitted := r.Header.Get(CSRFHeaderName)
			if subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
				jsonError(w, http.StatusForbidden, "csrf token mismatch")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// generateCSRFToken creates a cryptographically random token.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
