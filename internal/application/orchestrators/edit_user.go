package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"meetup/internal/adapters/meetupapi"
	"meetup/internal/domain/member"
)

// UserUpdater edits users through the meetup API.
type UserUpdater interface {
	UpdateUser(ctx context.Context, in member.UpdateInput) (meetupapi.Message, error)
}

// EditUserDeps holds dependencies for EditUser.
type EditUserDeps struct {
	API UserUpdater
}

// ExecuteEditUser validates and submits the edit modal.
// PRE: deps.API is non-nil
// POST: Returns the server message on success
// INVARIANT: An empty role is sent as absent so the server keeps the current role
func ExecuteEditUser(ctx context.Context, input member.UpdateInput, deps EditUserDeps) (string, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.Interests = strings.TrimSpace(input.Interests)
	if err := input.Validate(); err != nil {
		return "", err
	}
	msg, err := deps.API.UpdateUser(ctx, input)
	if err != nil {
		return "", fmt.Errorf("update user %d: %w", input.UserID, err)
	}
	slog.Info("user_updated", "user_id", input.UserID)
	return msg.Message, nil
}
