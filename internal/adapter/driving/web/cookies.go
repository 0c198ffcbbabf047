package web

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

// NewCookieStore creates the signed cookie store that carries the browser's
// analysis session id. Cookies expire after ttl, matching the server-side
// session lifetime.
func NewCookieStore(key []byte, ttl time.Duration) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   false, // set true when served over HTTPS
		SameSite: http.SameSiteLaxMode,
	}
	return store
}
