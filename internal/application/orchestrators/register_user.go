package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"meetup/internal/adapters/email"
	"meetup/internal/adapters/meetupapi"
	"meetup/internal/domain/member"
)

// UserRegistrar creates users through the meetup API.
type UserRegistrar interface {
	RegisterUser(ctx context.Context, in member.RegisterInput) (meetupapi.Message, error)
}

// InvitationConfig enables the welcome mail after a registration.
type InvitationConfig struct {
	Sender   email.Sender
	From     string
	ReplyTo  string
	LoginURL string
}

// RegisterUserDeps holds dependencies for RegisterUser. Invite may be nil.
type RegisterUserDeps struct {
	API    UserRegistrar
	Invite *InvitationConfig
}

// RegisterUserResult reports the server message and whether a mail went out.
type RegisterUserResult struct {
	Message string
	Invited bool
}

// ExecuteRegisterUser validates and submits the admin registration form, then
// sends the invitation mail.
// PRE: deps.API is non-nil
// POST: The user exists server-side on success; a mail failure never fails the call
func ExecuteRegisterUser(ctx context.Context, input member.RegisterInput, deps RegisterUserDeps) (RegisterUserResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.Interests = strings.TrimSpace(input.Interests)
	if err := input.Validate(); err != nil {
		return RegisterUserResult{}, err
	}

	msg, err := deps.API.RegisterUser(ctx, input)
	if err != nil {
		return RegisterUserResult{}, fmt.Errorf("register user: %w", err)
	}
	slog.Info("user_registered", "username", input.Username, "role", input.Role)

	result := RegisterUserResult{Message: msg.Message}
	if deps.Invite == nil || deps.Invite.Sender == nil {
		return result, nil
	}

	inv := email.Invitation{
		To:       input.Email,
		Username: input.Username,
		Role:     input.Role,
		LoginURL: deps.Invite.LoginURL,
	}
	req, err := inv.Compose(deps.Invite.From, deps.Invite.ReplyTo)
	if err != nil {
		slog.Error("invitation_failed", "email", input.Email, "error", err.Error())
		return result, nil
	}
	if _, err := deps.Invite.Sender.Send(ctx, req); err != nil {
		slog.Error("invitation_failed", "email", input.Email, "error", err.Error())
		return result, nil
	}
	result.Invited = true
	return result, nil
}
