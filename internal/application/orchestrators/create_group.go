package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"meetup/internal/adapters/meetupapi"
	"meetup/internal/domain/group"
)

// GroupCreator creates groups through the meetup API.
type GroupCreator interface {
	CreateGroup(ctx context.Context, date string) (meetupapi.Message, error)
}

// CreateGroupInput carries the group creation form.
type CreateGroupInput struct {
	Date string
}

// CreateGroupDeps holds dependencies for CreateGroup.
type CreateGroupDeps struct {
	API GroupCreator
}

// ExecuteCreateGroup validates the date and creates the group.
// PRE: deps.API is non-nil
// POST: Returns the server message on success
func ExecuteCreateGroup(ctx context.Context, input CreateGroupInput, deps CreateGroupDeps) (string, error) {
	date := strings.TrimSpace(input.Date)
	if err := group.ValidateDate(date); err != nil {
		return "", err
	}
	msg, err := deps.API.CreateGroup(ctx, date)
	if err != nil {
		return "", fmt.Errorf("create group %s: %w", date, err)
	}
	slog.Info("group_created", "date", date)
	return msg.Message, nil
}
