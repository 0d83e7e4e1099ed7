package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"meetup/internal/domain/member"
	"meetup/internal/domain/session"
)

// AuthAPI authenticates credentials against the meetup API.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (member.Identity, error)
}

// SessionCreator stores a new session and returns its token.
type SessionCreator interface {
	Create(ctx context.Context, s session.Session) (string, error)
}

// SessionDeleter removes a session by token.
type SessionDeleter interface {
	Delete(ctx context.Context, token string) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the stored session and its cookie token.
type LoginResult struct {
	Token   string
	Session session.Session
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	API      AuthAPI
	Sessions SessionCreator
	Now      func() time.Time
	TTL      time.Duration
}

// ErrMissingCredentials is returned before any network call when a field is blank.
var ErrMissingCredentials = errors.New("email and password are required")

// ExecuteLogin exchanges credentials for a server-side session.
// PRE: deps.API and deps.Sessions are non-nil
// POST: On success the returned user record is stored as the session
// INVARIANT: No session is created when the API rejects the credentials
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return LoginResult{}, ErrMissingCredentials
	}

	user, err := deps.API.Login(ctx, email, input.Password)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "email", email, "error", err.Error())
		return LoginResult{}, fmt.Errorf("login: %w", err)
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = session.DefaultTTL
	}
	sess := session.New(user, now(), ttl)
	token, err := deps.Sessions.Create(ctx, sess)
	if err != nil {
		return LoginResult{}, fmt.Errorf("create session: %w", err)
	}

	slog.Info("auth_event", "event", "login_success", "user_id", user.ID, "role", user.Role)
	return LoginResult{Token: token, Session: sess}, nil
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	Sessions SessionDeleter
}

// ExecuteLogout deletes the session record. An empty token is a no-op.
// POST: The token no longer resolves to a session
func ExecuteLogout(ctx context.Context, token string, deps LogoutDeps) error {
	if token == "" {
		return nil
	}
	if err := deps.Sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}
