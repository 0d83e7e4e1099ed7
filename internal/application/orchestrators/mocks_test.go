package orchestrators

import (
	"context"
	"errors"

	"meetup/internal/adapters/email"
	"meetup/internal/adapters/meetupapi"
	"meetup/internal/domain/group"
	"meetup/internal/domain/member"
	"meetup/internal/domain/session"
	"meetup/internal/domain/team"
)

// mockAPI implements every meetup API interface the orchestrators use.
// Nil function fields fail the call.
type mockAPI struct {
	login     func(email, password string) (member.Identity, error)
	register  func(in member.RegisterInput) (meetupapi.Message, error)
	update    func(in member.UpdateInput) (meetupapi.Message, error)
	createGrp func(date string) (meetupapi.Message, error)
	groups    []group.Group
	groupsErr error
	teams     []team.Team
	teamsErr  error
	shuffle   func(groupID int64, part string, size int) (meetupapi.ShuffleResult, error)
	setAttErr error
	calls     []string
}

var errUnexpectedCall = errors.New("unexpected call")

func (m *mockAPI) Login(_ context.Context, email, password string) (member.Identity, error) {
	m.calls = append(m.calls, "Login")
	if m.login == nil {
		return member.Identity{}, errUnexpectedCall
	}
	return m.login(email, password)
}

func (m *mockAPI) RegisterUser(_ context.Context, in member.RegisterInput) (meetupapi.Message, error) {
	m.calls = append(m.calls, "RegisterUser")
	if m.register == nil {
		return meetupapi.Message{}, errUnexpectedCall
	}
	return m.register(in)
}

func (m *mockAPI) UpdateUser(_ context.Context, in member.UpdateInput) (meetupapi.Message, error) {
	m.calls = append(m.calls, "UpdateUser")
	if m.update == nil {
		return meetupapi.Message{}, errUnexpectedCall
	}
	return m.update(in)
}

func (m *mockAPI) CreateGroup(_ context.Context, date string) (meetupapi.Message, error) {
	m.calls = append(m.calls, "CreateGroup")
	if m.createGrp == nil {
		return meetupapi.Message{}, errUnexpectedCall
	}
	return m.createGrp(date)
}

func (m *mockAPI) ListGroups(context.Context) ([]group.Group, error) {
	m.calls = append(m.calls, "ListGroups")
	return m.groups, m.groupsErr
}

func (m *mockAPI) ListTeams(context.Context, int64) ([]team.Team, error) {
	m.calls = append(m.calls, "ListTeams")
	return m.teams, m.teamsErr
}

func (m *mockAPI) Shuffle(_ context.Context, groupID int64, part string, size int) (meetupapi.ShuffleResult, error) {
	m.calls = append(m.calls, "Shuffle")
	if m.shuffle == nil {
		return meetupapi.ShuffleResult{}, errUnexpectedCall
	}
	return m.shuffle(groupID, part, size)
}

func (m *mockAPI) SetAttendance(context.Context, int64, int64, string, string) error {
	m.calls = append(m.calls, "SetAttendance")
	return m.setAttErr
}

// mockSessions is an in-memory session store recording its calls.
type mockSessions struct {
	created   []session.Session
	updated   map[string]session.Session
	deleted   []string
	createErr error
	updateErr error
}

func (m *mockSessions) Create(_ context.Context, s session.Session) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.created = append(m.created, s)
	return "token-1", nil
}

func (m *mockSessions) Update(_ context.Context, token string, s session.Session) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if m.updated == nil {
		m.updated = make(map[string]session.Session)
	}
	m.updated[token] = s
	return nil
}

func (m *mockSessions) Delete(_ context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	return nil
}

// mockSender records mails and optionally fails.
type mockSender struct {
	sent []email.SendRequest
	err  error
}

func (m *mockSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if m.err != nil {
		return email.SendResult{}, m.err
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "m-1"}, nil
}

func httpErr(status int, detail string) error {
	return &meetupapi.HTTPError{Op: "test", StatusCode: status, Detail: detail}
}

func transportErr() error {
	return &meetupapi.TransportError{Op: "test", Err: errors.New("connection refused")}
}
