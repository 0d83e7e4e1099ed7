package projections

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"meetup/internal/domain/attendance"
	"meetup/internal/domain/group"
)

// DefaultFetchLimit bounds concurrent attendance fetches per page render.
const DefaultFetchLimit = 8

// ClockLayout is the format of the home page clock.
const ClockLayout = "2006-01-02 15:04:05"

// ClockText renders the home page clock line.
func ClockText(now time.Time) string {
	return "🕒 현재: " + now.Format(ClockLayout)
}

// AttendanceOverride carries the outcome of a set-attendance click so the
// re-rendered page shows it regardless of what the refetch returns.
type AttendanceOverride struct {
	GroupID   int64
	Part      string
	Indicator attendance.Indicator
}

// GetHomeQuery carries query parameters.
type GetHomeQuery struct {
	UserID   int64
	Now      time.Time
	Location *time.Location
	Override *AttendanceOverride
}

// HomePart is one part row of a group card.
type HomePart struct {
	Part      string // wire value
	Label     string
	Headline  string
	Indicator attendance.Indicator
}

// HomeGroup is one group card on the home page.
type HomeGroup struct {
	ID    int64
	Date  string
	Title string
	// IsToday disables the attendance buttons.
	IsToday bool
	Parts   []HomePart
}

// GetHomeResult carries the query result.
type GetHomeResult struct {
	Clock  string
	Groups []HomeGroup
}

// GetHomeDeps holds dependencies for GetHome.
type GetHomeDeps struct {
	Groups     GroupLister
	Attendance AttendanceGetter
	// Limit caps concurrent attendance fetches; zero uses DefaultFetchLimit.
	Limit int
}

type statusSlot struct {
	status *string
	err    error
}

// QueryGetHome loads every group and the viewer's status for each part.
// PRE: query.UserID is the session user
// POST: Groups keep server order; a group whose status fetch failed for any
// part shows the load error on every part
// INVARIANT: One group's failure never affects another group's indicators
func QueryGetHome(ctx context.Context, query GetHomeQuery, deps GetHomeDeps) (GetHomeResult, error) {
	now := query.Now
	if query.Location != nil {
		now = now.In(query.Location)
	}
	result := GetHomeResult{Clock: ClockText(now)}

	groups, err := deps.Groups.ListGroups(ctx)
	if err != nil {
		return result, fmt.Errorf("list groups: %w", err)
	}
	parts := group.OrderedParts()

	limit := deps.Limit
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	slots := make([][]statusSlot, len(groups))
	var eg errgroup.Group
	eg.SetLimit(limit)
	for i, g := range groups {
		slots[i] = make([]statusSlot, len(parts))
		for j, part := range parts {
			eg.Go(func() error {
				status, err := deps.Attendance.GetAttendance(ctx, g.ID, query.UserID, part)
				slots[i][j] = statusSlot{status: status, err: err}
				return nil
			})
		}
	}
	_ = eg.Wait()

	result.Groups = make([]HomeGroup, 0, len(groups))
	for i, g := range groups {
		failed := false
		for _, s := range slots[i] {
			if s.err != nil {
				failed = true
				slog.Warn("attendance_load_failed", "group_id", g.ID, "user_id", query.UserID, "error", s.err.Error())
				break
			}
		}

		card := HomeGroup{
			ID:      g.ID,
			Date:    g.Date,
			Title:   "📅 " + g.Date,
			IsToday: g.IsOn(now),
			Parts:   make([]HomePart, 0, len(parts)),
		}
		for j, part := range parts {
			ind := attendance.NewIndicator()
			if failed {
				ind = ind.Fail(attendance.FailLoad)
			} else {
				ind = ind.Resolve(slots[i][j].status)
			}
			if o := query.Override; o != nil && o.GroupID == g.ID && o.Part == part {
				ind = o.Indicator
			}
			card.Parts = append(card.Parts, HomePart{
				Part:      part,
				Label:     group.Parts.LabelOr(part),
				Headline:  g.PartHeadline(part),
				Indicator: ind,
			})
		}
		result.Groups = append(result.Groups, card)
	}
	return result, nil
}
