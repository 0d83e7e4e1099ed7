package orchestrators

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"meetup/internal/adapters/meetupapi"
	"meetup/internal/domain/member"
)

var loginNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestExecuteLogin_Success(t *testing.T) {
	api := &mockAPI{login: func(email, password string) (member.Identity, error) {
		if email != "kim@x.com" || password != "pw" {
			t.Errorf("credentials = %q/%q", email, password)
		}
		return member.Identity{ID: 4, Username: "kim", Role: member.RoleAdmin}, nil
	}}
	sessions := &mockSessions{}

	res, err := ExecuteLogin(context.Background(), LoginInput{Email: " kim@x.com ", Password: "pw"}, LoginDeps{
		API: api, Sessions: sessions, Now: func() time.Time { return loginNow }, TTL: time.Hour,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token != "token-1" {
		t.Errorf("Token = %q", res.Token)
	}
	if len(sessions.created) != 1 || sessions.created[0].User.Username != "kim" {
		t.Fatalf("created = %+v", sessions.created)
	}
	if !res.Session.ExpiresAt.Equal(loginNow.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", res.Session.ExpiresAt)
	}
}

func TestExecuteLogin_MissingFieldsSkipTheNetwork(t *testing.T) {
	api := &mockAPI{}
	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "  ", Password: "pw"}, LoginDeps{API: api, Sessions: &mockSessions{}})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("err = %v, want ErrMissingCredentials", err)
	}
	if len(api.calls) != 0 {
		t.Errorf("calls = %v, want none", api.calls)
	}
}

func TestExecuteLogin_RejectedCreatesNoSession(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transport bool
	}{
		{"unauthorized", httpErr(http.StatusUnauthorized, "Invalid credentials"), false},
		{"network", transportErr(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &mockSessions{}
			api := &mockAPI{login: func(string, string) (member.Identity, error) { return member.Identity{}, tt.err }}
			_, err := ExecuteLogin(context.Background(), LoginInput{Email: "a@x.com", Password: "bad"}, LoginDeps{API: api, Sessions: sessions})
			if err == nil {
				t.Fatal("expected error")
			}
			if meetupapi.IsTransport(err) != tt.transport {
				t.Errorf("IsTransport = %v, want %v", meetupapi.IsTransport(err), tt.transport)
			}
			if len(sessions.created) != 0 {
				t.Error("session created for rejected login")
			}
		})
	}
}

func TestExecuteLogin_SessionStoreFailure(t *testing.T) {
	api := &mockAPI{login: func(string, string) (member.Identity, error) { return member.Identity{ID: 1}, nil }}
	_, err := ExecuteLogin(context.Background(), LoginInput{Email: "a@x.com", Password: "pw"}, LoginDeps{
		API: api, Sessions: &mockSessions{createErr: errors.New("disk full")},
	})
	if err == nil || meetupapi.IsHTTP(err) || meetupapi.IsTransport(err) {
		t.Errorf("err = %v, want a plain store error", err)
	}
}

func TestExecuteLogout(t *testing.T) {
	sessions := &mockSessions{}
	if err := ExecuteLogout(context.Background(), "", LogoutDeps{Sessions: sessions}); err != nil {
		t.Fatal(err)
	}
	if len(sessions.deleted) != 0 {
		t.Error("empty token should not touch the store")
	}
	if err := ExecuteLogout(context.Background(), "tok", LogoutDeps{Sessions: sessions}); err != nil {
		t.Fatal(err)
	}
	if len(sessions.deleted) != 1 || sessions.deleted[0] != "tok" {
		t.Errorf("deleted = %v", sessions.deleted)
	}
}
