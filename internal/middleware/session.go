package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/xid"
)

const (
	// SessionCookieName names the cookie that carries the explorer session ID.
	SessionCookieName = "explorer_session"
	// SessionMaxAge is how long a browser keeps the session cookie.
	SessionMaxAge = 30 * 24 * time.Hour
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

// Session makes sure every request carries a session ID.
//
// An existing, well-formed cookie is reused. Otherwise a new xid is minted
// and set on the response. The ID is available to handlers through
// SessionIDFromContext. The session only identifies a browser; it grants
// nothing.
func Session(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(SessionCookieName); err == nil {
				if parsed, err := xid.FromString(c.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = xid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(SessionMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionIDFromContext returns the session ID stored by Session.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}

// WithSessionID returns a copy of ctx carrying id. Handler tests use it to
// skip the cookie round trip.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}
