package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"meetup/internal/adapters/http/middleware"
	"meetup/internal/application/orchestrators"
)

type loginPage struct {
	Email string
	Error string
}

// handleLoginPage handles GET /login
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, http.StatusOK, "login.html", loginPage{})
}

// handleLogin handles POST /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	input := orchestrators.LoginInput{
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
	}
	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		API:      app.API,
		Sessions: app.Sessions,
		Now:      timeNow,
		TTL:      app.SessionTTL,
	})
	if err != nil {
		if !isUpstream(err) && !errors.Is(err, orchestrators.ErrMissingCredentials) {
			internalError(w, err)
			return
		}
		renderTemplate(w, r, http.StatusUnauthorized, "login.html", loginPage{
			Email: input.Email,
			Error: loginMessage(err),
		})
		return
	}

	middleware.SetSessionCookie(w, result.Token, result.Session.ExpiresAt.Sub(result.Session.CreatedAt), app.Secure)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.TokenFromContext(r.Context())
	if !ok {
		if c, err := r.Cookie(middleware.SessionCookieName); err == nil {
			token = c.Value
		}
	}
	if err := orchestrators.ExecuteLogout(r.Context(), token, orchestrators.LogoutDeps{Sessions: app.Sessions}); err != nil {
		internalError(w, err)
		return
	}
	middleware.ClearSessionCookie(w, app.Secure)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleHealthz handles GET /healthz
func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handlePerf handles GET /admin/perf. ?window= takes a duration, default 1h.
func handlePerf(w http.ResponseWriter, r *http.Request) {
	window := time.Hour
	if v := r.URL.Query().Get("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			http.Error(w, "window must be a positive duration", http.StatusBadRequest)
			return
		}
		window = d
	}
	snap := app.Collector.Snapshot(timeNow().Add(-window), 10)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}
