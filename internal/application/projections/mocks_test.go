package projections

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"meetup/internal/adapters/meetupapi"
	"meetup/internal/domain/group"
	"meetup/internal/domain/member"
	"meetup/internal/domain/team"
)

// mockAPI serves seeded data for every read the projections make.
// Safe for the concurrent attendance fetches of QueryGetHome.
type mockAPI struct {
	users     []member.User
	usersErr  error
	groups    []group.Group
	groupsErr error
	teams     []team.Team
	teamsErr  error
	myTeam    *int64
	myTeamErr error

	// status and statusErr are keyed by "groupID/part".
	status    map[string]string
	statusErr map[string]error

	mu          sync.Mutex
	inFlight    int
	maxInFlight int
	release     chan struct{}
}

func statusKey(groupID int64, part string) string {
	return fmt.Sprintf("%d/%s", groupID, part)
}

func (m *mockAPI) ListUsers(context.Context) ([]member.User, error) {
	return m.users, m.usersErr
}

func (m *mockAPI) ListGroups(context.Context) ([]group.Group, error) {
	return m.groups, m.groupsErr
}

func (m *mockAPI) ListTeams(context.Context, int64) ([]team.Team, error) {
	return m.teams, m.teamsErr
}

func (m *mockAPI) MyTeam(context.Context, int64, int64) (*int64, error) {
	return m.myTeam, m.myTeamErr
}

func (m *mockAPI) GetAttendance(_ context.Context, groupID, _ int64, part string) (*string, error) {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	m.inFlight--
	m.mu.Unlock()

	key := statusKey(groupID, part)
	if err := m.statusErr[key]; err != nil {
		return nil, err
	}
	s, ok := m.status[key]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func transportErr() error {
	return &meetupapi.TransportError{Op: "test", Err: errors.New("connection refused")}
}

func idPtr(id int64) *int64 { return &id }
