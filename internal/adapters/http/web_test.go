package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"meetup/internal/adapters/http/middleware"
	"meetup/internal/adapters/meetupapi"
	sessionStore "meetup/internal/adapters/storage/session"
	"meetup/internal/domain/group"
	"meetup/internal/domain/member"
	"meetup/internal/domain/session"
	"meetup/internal/domain/team"
)

var seoul = time.FixedZone("UTC+9", 9*60*60)

// fixedNow is 2025-03-01 10:00 in UTC+9.
var fixedNow = time.Date(2025, 3, 1, 1, 0, 0, 0, time.UTC)

// fakeAPI is an in-memory meetup API. Errors set on it are returned by the
// matching call.
type fakeAPI struct {
	mu sync.Mutex

	loginUser member.Identity
	loginErr  error

	users    []member.User
	usersErr error

	registered  []member.RegisterInput
	registerErr error
	updated     []member.UpdateInput
	updateErr   error

	created   []string
	createErr error

	groups    []group.Group
	groupsErr error
	teams     map[int64][]team.Team
	teamsErr  error
	myTeam    *int64

	status    map[string]string
	statusErr error
	setCalls  []string
	setErr    error

	shuffled   []string
	shuffleErr error
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (member.Identity, error) {
	return f.loginUser, f.loginErr
}

func (f *fakeAPI) ListUsers(context.Context) ([]member.User, error) {
	return f.users, f.usersErr
}

func (f *fakeAPI) RegisterUser(_ context.Context, in member.RegisterInput) (meetupapi.Message, error) {
	if f.registerErr != nil {
		return meetupapi.Message{}, f.registerErr
	}
	f.registered = append(f.registered, in)
	return meetupapi.Message{Message: "ok"}, nil
}

func (f *fakeAPI) UpdateUser(_ context.Context, in member.UpdateInput) (meetupapi.Message, error) {
	if f.updateErr != nil {
		return meetupapi.Message{}, f.updateErr
	}
	f.updated = append(f.updated, in)
	return meetupapi.Message{Message: "ok"}, nil
}

func (f *fakeAPI) CreateGroup(_ context.Context, date string) (meetupapi.Message, error) {
	if f.createErr != nil {
		return meetupapi.Message{}, f.createErr
	}
	f.created = append(f.created, date)
	return meetupapi.Message{Message: "ok"}, nil
}

func (f *fakeAPI) ListGroups(context.Context) ([]group.Group, error) {
	return f.groups, f.groupsErr
}

func (f *fakeAPI) ListTeams(_ context.Context, groupID int64) ([]team.Team, error) {
	return f.teams[groupID], f.teamsErr
}

func (f *fakeAPI) MyTeam(context.Context, int64, int64) (*int64, error) {
	return f.myTeam, nil
}

func (f *fakeAPI) GetAttendance(_ context.Context, groupID, _ int64, part string) (*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	s, ok := f.status[attKey(groupID, part)]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeAPI) SetAttendance(_ context.Context, groupID, _ int64, part, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls = append(f.setCalls, attKey(groupID, part)+"="+status)
	if f.setErr != nil {
		return f.setErr
	}
	if f.status == nil {
		f.status = make(map[string]string)
	}
	f.status[attKey(groupID, part)] = status
	return nil
}

func (f *fakeAPI) Shuffle(_ context.Context, groupID int64, part string, size int) (meetupapi.ShuffleResult, error) {
	if f.shuffleErr != nil {
		return meetupapi.ShuffleResult{}, f.shuffleErr
	}
	f.shuffled = append(f.shuffled, part)
	return meetupapi.ShuffleResult{Message: "셔플 완료", TeamCount: 2, Total: 8}, nil
}

func attKey(groupID int64, part string) string {
	return fmt.Sprintf("%d/%s", groupID, part)
}

func httpErr(status int, detail string) error {
	return &meetupapi.HTTPError{Op: "test", StatusCode: status, Detail: detail}
}

func transportErr() error {
	return &meetupapi.TransportError{Op: "test", Err: errors.New("connection refused")}
}

var (
	memberUser = member.Identity{ID: 7, Username: "kim", Role: member.RoleMember, Email: "kim@x.com"}
	adminUser  = member.Identity{ID: 1, Username: "lee", Role: member.RoleAdmin, Email: "lee@x.com"}
)

// setupApp installs a test App around api and returns its session store.
func setupApp(t *testing.T, api *fakeAPI) *sessionStore.MemoryStore {
	t.Helper()
	store := sessionStore.NewMemoryStore()
	app = &App{
		API:        api,
		Sessions:   store,
		Location:   seoul,
		SessionTTL: time.Hour,
		Notice:     "**공지**",
		CSRFKey:    []byte(strings.Repeat("k", 32)),
	}
	prev := timeNow
	timeNow = func() time.Time { return fixedNow }
	t.Cleanup(func() { timeNow = prev })
	return store
}

// login stores a session for user and returns it with its token.
func login(t *testing.T, store sessionStore.Store, user member.Identity) (session.Session, string) {
	t.Helper()
	sess := session.New(user, time.Now(), time.Hour)
	token, err := store.Create(context.Background(), sess)
	if err != nil {
		t.Fatal(err)
	}
	return sess, token
}

// formRequest builds a request carrying sess in context, bypassing the
// middleware chain.
func formRequest(method, target string, form url.Values, token string, sess *session.Session) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if sess != nil {
		req = req.WithContext(middleware.ContextWithSession(req.Context(), token, *sess))
	}
	return req
}

func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(body, w) {
			t.Errorf("body missing %q", w)
		}
	}
}
