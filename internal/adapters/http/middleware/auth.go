package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sessionStore "meetup/internal/adapters/storage/session"
	domain "meetup/internal/domain/session"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionCookieName is the cookie holding the session token.
const SessionCookieName = "meetup_session"

// ForbiddenRedirect is where RequireRole sends logged-in users lacking the role.
const ForbiddenRedirect = "/?notice=forbidden"

// current pairs a session with the token it is stored under.
type current struct {
	token   string
	session domain.Session
}

// Auth returns middleware that loads the session named by the cookie into the
// request context. It does NOT block unauthenticated requests; use RequireAuth
// or RequireRole for that. A store failure is logged and treated as no session.
func Auth(store sessionStore.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err == nil && cookie.Value != "" {
				sess, err := store.Get(r.Context(), cookie.Value)
				switch {
				case err == nil:
					r = r.WithContext(ContextWithSession(r.Context(), cookie.Value, sess))
				case !errors.Is(err, domain.ErrNotFound):
					slog.Error("session_lookup_failed", "error", err.Error())
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns middleware that redirects requests without a session to /login.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole returns middleware that admits only sessions whose role is one of roles.
// No session redirects to /login; a disallowed role redirects to ForbiddenRedirect.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	roleSet := make(map[string]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := GetSessionFromContext(r.Context())
			if !ok {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if !roleSet[sess.User.Role] {
				slog.Info("auth_event", "event", "forbidden", "user_id", sess.User.ID, "role", sess.User.Role, "path", r.URL.Path)
				http.Redirect(w, r, ForbiddenRedirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (domain.Session, bool) {
	c, ok := ctx.Value(sessionContextKey).(current)
	return c.session, ok
}

// TokenFromContext returns the token the request's session is stored under.
func TokenFromContext(ctx context.Context) (string, bool) {
	c, ok := ctx.Value(sessionContextKey).(current)
	return c.token, ok
}

// ContextWithSession returns a context carrying sess stored under token.
func ContextWithSession(ctx context.Context, token string, sess domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, current{token: token, session: sess})
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})
}
