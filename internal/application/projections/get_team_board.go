package projections

import (
	"context"
	"fmt"
	"log/slog"

	"meetup/internal/domain/team"
)

// GetTeamBoardQuery names the group and the viewer.
type GetTeamBoardQuery struct {
	GroupID int64
	Date    string
	UserID  int64
}

// GetTeamBoardDeps holds dependencies for GetTeamBoard.
type GetTeamBoardDeps struct {
	Teams  TeamLister
	MyTeam MyTeamFinder
}

// QueryGetTeamBoard fetches the teams of a group and lays them out.
// PRE: query.GroupID > 0
// POST: Returns the board; a failed my-team lookup only drops the highlight
func QueryGetTeamBoard(ctx context.Context, query GetTeamBoardQuery, deps GetTeamBoardDeps) (team.Board, error) {
	teams, err := deps.Teams.ListTeams(ctx, query.GroupID)
	if err != nil {
		return team.Board{}, fmt.Errorf("list teams of group %d: %w", query.GroupID, err)
	}
	if len(teams) == 0 {
		return team.BuildBoard(query.Date, nil, nil, query.UserID), nil
	}

	var mine *int64
	if deps.MyTeam != nil && query.UserID != 0 {
		mine, err = deps.MyTeam.MyTeam(ctx, query.GroupID, query.UserID)
		if err != nil {
			slog.Warn("my_team_failed", "group_id", query.GroupID, "user_id", query.UserID, "error", err.Error())
			mine = nil
		}
	}
	return team.BuildBoard(query.Date, teams, mine, query.UserID), nil
}
