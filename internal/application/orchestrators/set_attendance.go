package orchestrators

import (
	"context"
	"errors"
	"fmt"

	"meetup/internal/adapters/meetupapi"
	"meetup/internal/domain/attendance"
	"meetup/internal/domain/group"
)

// AttendanceSetter records attendance through the meetup API.
type AttendanceSetter interface {
	SetAttendance(ctx context.Context, groupID, userID int64, part, status string) error
}

// SetAttendanceInput carries one 참석/불참 click.
type SetAttendanceInput struct {
	GroupID int64
	UserID  int64
	Part    string
	Status  string
}

// SetAttendanceDeps holds dependencies for SetAttendance.
type SetAttendanceDeps struct {
	API AttendanceSetter
}

// ErrInvalidGroupID is returned for a non-positive group id.
var ErrInvalidGroupID = errors.New("group id must be positive")

// ExecuteSetAttendance records the status and returns the indicator to show.
// PRE: input.UserID is the session user
// POST: On success the indicator shows the requested status regardless of
// prior state; on an upstream failure it shows the request or network error
func ExecuteSetAttendance(ctx context.Context, input SetAttendanceInput, deps SetAttendanceDeps) (attendance.Indicator, error) {
	if input.GroupID <= 0 {
		return attendance.Indicator{}, ErrInvalidGroupID
	}
	part, err := group.ParsePart(input.Part)
	if err != nil {
		return attendance.Indicator{}, err
	}
	status, err := attendance.ParseStatus(input.Status)
	if err != nil {
		return attendance.Indicator{}, err
	}

	ind := attendance.NewIndicator()
	if err := deps.API.SetAttendance(ctx, input.GroupID, input.UserID, part, status); err != nil {
		kind := attendance.FailRequest
		if meetupapi.IsTransport(err) {
			kind = attendance.FailTransport
		}
		return ind.Fail(kind), fmt.Errorf("set attendance: %w", err)
	}
	return ind.Applied(status), nil
}
