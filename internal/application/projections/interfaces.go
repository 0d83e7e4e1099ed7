package projections

import (
	"context"

	"meetup/internal/domain/group"
	"meetup/internal/domain/member"
	"meetup/internal/domain/team"
)

// UserLister lists users with attendance details.
type UserLister interface {
	ListUsers(ctx context.Context) ([]member.User, error)
}

// GroupLister lists groups with per-part counts.
type GroupLister interface {
	ListGroups(ctx context.Context) ([]group.Group, error)
}

// TeamLister lists the teams of a group.
type TeamLister interface {
	ListTeams(ctx context.Context, groupID int64) ([]team.Team, error)
}

// MyTeamFinder resolves the viewer's team within a group.
type MyTeamFinder interface {
	MyTeam(ctx context.Context, groupID, userID int64) (*int64, error)
}

// AttendanceGetter reads one attendance status.
type AttendanceGetter interface {
	GetAttendance(ctx context.Context, groupID, userID int64, part string) (*string, error)
}
