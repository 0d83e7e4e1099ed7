package session

import (
	"errors"
	"time"

	"meetup/internal/domain/member"
)

// DefaultTTL is how long a session lives after login.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned when a token has no live session.
var ErrNotFound = errors.New("session not found")

// Session is the server-side record behind the session cookie. It carries the
// logged-in user and the per-session page state of the admin console.
type Session struct {
	User      member.Identity `json:"user"`
	UserPage  int             `json:"user_page"`
	Shuffle   *ShuffleTarget  `json:"shuffle,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// ShuffleTarget is the group selected for shuffling in the admin console.
type ShuffleTarget struct {
	GroupID int64  `json:"group_id"`
	Date    string `json:"date"`
}

// New starts a session for a freshly logged-in user.
// PRE: ttl > 0
// POST: UserPage is 1, no shuffle target is selected
func New(user member.Identity, now time.Time, ttl time.Duration) Session {
	return Session{
		User:      user,
		UserPage:  1,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// CurrentUserPage returns the stored admin list page, at least 1.
func (s Session) CurrentUserPage() int {
	if s.UserPage < 1 {
		return 1
	}
	return s.UserPage
}

// IsPrivileged reports whether the user may open the admin console.
func (s Session) IsPrivileged() bool {
	return member.IsPrivileged(s.User.Role)
}
