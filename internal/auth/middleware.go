package auth

import (
	"net/http"
	"strings"
)

// DefaultCookieName is the session cookie set by the CRM front end.
const DefaultCookieName = "token"

// Skipper allows callers to bypass authentication for specific requests.
type Skipper func(r *http.Request) bool

// ErrorHandler renders an authentication failure.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware resolves the session credential of every request.
type Middleware struct {
	authenticator Authenticator
	cookieName    string
	skipper       Skipper
	onError       ErrorHandler
}

// NewMiddleware constructs a middleware. A nil onError falls back to a plain-text 401.
func NewMiddleware(authenticator Authenticator, cookieName string, skipper Skipper, onError ErrorHandler) Middleware {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if onError == nil {
		onError = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}
	return Middleware{authenticator: authenticator, cookieName: cookieName, skipper: skipper, onError: onError}
}

// Wrap wraps an http.Handler with authentication.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipper != nil && m.skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := Credential(r, m.cookieName)
		if err != nil {
			m.onError(w, r, err)
			return
		}
		claims, err := m.authenticator.Verify(token)
		if err != nil {
			m.onError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// Credential extracts the session token from the named cookie, falling back to
// an Authorization bearer header.
func Credential(r *http.Request, cookieName string) (string, error) {
	if cookie, err := r.Cookie(cookieName); err == nil && strings.TrimSpace(cookie.Value) != "" {
		return strings.TrimSpace(cookie.Value), nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", ErrInvalidToken
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
