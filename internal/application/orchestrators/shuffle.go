package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"meetup/internal/adapters/meetupapi"
	"meetup/internal/domain/group"
	"meetup/internal/domain/session"
	"meetup/internal/domain/team"
)

// TeamLister lists the teams of a group.
type TeamLister interface {
	ListTeams(ctx context.Context, groupID int64) ([]team.Team, error)
}

// Shuffler triggers a server-side shuffle.
type Shuffler interface {
	Shuffle(ctx context.Context, groupID int64, part string, teamSize int) (meetupapi.ShuffleResult, error)
}

var (
	ErrNoGroupSelected = errors.New("no group selected")
	ErrInvalidTeamSize = errors.New("team size must be a positive integer")
	ErrTargetChanged   = errors.New("selected group changed since confirmation")
)

// ShuffleInput carries the shuffle form and the session's selected group.
type ShuffleInput struct {
	Target   *session.ShuffleTarget
	Part     string
	TeamSize string
}

// ShufflePlan is a validated shuffle request plus the wording of its
// confirmation step.
type ShufflePlan struct {
	GroupID  int64
	Date     string
	Part     string // wire value
	TeamSize int

	// Existing is true when the part already has teams.
	Existing bool
	// SkipConfirm is set when the existing-teams check failed; the shuffle
	// then proceeds without asking.
	SkipConfirm bool
}

// PartLabel returns the display label of the plan's part.
func (p ShufflePlan) PartLabel() string {
	return group.Parts.LabelOr(p.Part)
}

// Prompt returns the confirmation question.
func (p ShufflePlan) Prompt() string {
	if p.Existing {
		return fmt.Sprintf("%s의 기존 조편성이 있습니다. 다시 셔플하시겠습니까?", p.PartLabel())
	}
	return fmt.Sprintf("%s을 %d명씩 셔플하시겠습니까?", p.PartLabel(), p.TeamSize)
}

// ValidateShuffle checks the form without touching the network.
// PRE: none
// POST: Returns a plan with Existing unset, or ErrNoGroupSelected,
// ErrInvalidTeamSize or group.ErrUnknownPart
func ValidateShuffle(input ShuffleInput) (ShufflePlan, error) {
	if input.Target == nil || input.Target.GroupID <= 0 {
		return ShufflePlan{}, ErrNoGroupSelected
	}
	part, err := group.ParsePart(input.Part)
	if err != nil {
		return ShufflePlan{}, err
	}
	size, err := strconv.Atoi(strings.TrimSpace(input.TeamSize))
	if err != nil || size <= 0 {
		return ShufflePlan{}, ErrInvalidTeamSize
	}
	return ShufflePlan{
		GroupID:  input.Target.GroupID,
		Date:     input.Target.Date,
		Part:     part,
		TeamSize: size,
	}, nil
}

// ConfirmShuffle validates a confirmed shuffle form. groupID is the group the
// confirmation page was shown for.
// PRE: none
// POST: Returns the plan of ValidateShuffle, or ErrTargetChanged when the
// session now selects a different group
func ConfirmShuffle(input ShuffleInput, groupID int64) (ShufflePlan, error) {
	plan, err := ValidateShuffle(input)
	if err != nil {
		return ShufflePlan{}, err
	}
	if plan.GroupID != groupID {
		return ShufflePlan{}, ErrTargetChanged
	}
	return plan, nil
}

// PrepareShuffleDeps holds dependencies for PrepareShuffle.
type PrepareShuffleDeps struct {
	Teams TeamLister
}

// PrepareShuffle validates the form and checks for existing teams of the part.
// PRE: deps.Teams is non-nil
// POST: Returns a plan whose Prompt reflects existing teams; when the check
// fails the plan has SkipConfirm set and no error is returned
// INVARIANT: No shuffle is triggered
func PrepareShuffle(ctx context.Context, input ShuffleInput, deps PrepareShuffleDeps) (ShufflePlan, error) {
	plan, err := ValidateShuffle(input)
	if err != nil {
		return ShufflePlan{}, err
	}
	teams, err := deps.Teams.ListTeams(ctx, plan.GroupID)
	if err != nil {
		slog.Warn("shuffle_precheck_failed", "group_id", plan.GroupID, "part", plan.Part, "error", err.Error())
		plan.SkipConfirm = true
		return plan, nil
	}
	plan.Existing = team.HasPart(teams, plan.Part)
	return plan, nil
}

// ExecuteShuffleDeps holds dependencies for ExecuteShuffle.
type ExecuteShuffleDeps struct {
	API Shuffler
}

// ExecuteShuffle triggers the shuffle described by plan.
// PRE: plan came from ValidateShuffle or PrepareShuffle
// POST: Returns the server result on success
func ExecuteShuffle(ctx context.Context, plan ShufflePlan, deps ExecuteShuffleDeps) (meetupapi.ShuffleResult, error) {
	res, err := deps.API.Shuffle(ctx, plan.GroupID, plan.Part, plan.TeamSize)
	if err != nil {
		return meetupapi.ShuffleResult{}, fmt.Errorf("shuffle group %d: %w", plan.GroupID, err)
	}
	slog.Info("shuffle_done", "group_id", plan.GroupID, "part", plan.Part, "team_size", plan.TeamSize, "teams", res.TeamCount, "total", res.Total)
	return res, nil
}
