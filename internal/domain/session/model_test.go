package session

import (
	"testing"
	"time"

	"meetup/internal/domain/member"
)

func TestNew_StartsOnFirstPageWithoutTarget(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := New(member.Identity{ID: 1, Username: "kim", Role: member.RoleMember}, now, time.Hour)

	if s.UserPage != 1 {
		t.Errorf("UserPage = %d, want 1", s.UserPage)
	}
	if s.Shuffle != nil {
		t.Errorf("Shuffle = %+v, want nil", s.Shuffle)
	}
	if !s.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", s.ExpiresAt)
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := New(member.Identity{ID: 1}, now, time.Hour)

	if s.Expired(now.Add(59 * time.Minute)) {
		t.Error("session should be live before expiry")
	}
	if !s.Expired(now.Add(time.Hour)) {
		t.Error("session should be expired at expiry")
	}
}

func TestCurrentUserPage_ClampsToOne(t *testing.T) {
	if got := (Session{UserPage: 0}).CurrentUserPage(); got != 1 {
		t.Errorf("CurrentUserPage = %d, want 1", got)
	}
	if got := (Session{UserPage: 3}).CurrentUserPage(); got != 3 {
		t.Errorf("CurrentUserPage = %d, want 3", got)
	}
}

func TestIsPrivileged(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{member.RoleLeader, true},
		{member.RoleAdmin, true},
		{member.RoleMember, false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			s := Session{User: member.Identity{Role: tt.role}}
			if got := s.IsPrivileged(); got != tt.want {
				t.Errorf("IsPrivileged(%q) = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}
