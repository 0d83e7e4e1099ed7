package meetupapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"meetup/internal/domain/group"
	"meetup/internal/domain/member"
	"meetup/internal/domain/team"
)

// Message is the {"message": ...} body returned by mutating endpoints.
type Message struct {
	Message string `json:"message"`
}

// ShuffleResult is the body returned by a successful shuffle.
type ShuffleResult struct {
	Message   string `json:"message"`
	TeamCount int    `json:"조 수"`
	Total     int    `json:"총원"`
}

// Login posts form-encoded credentials.
// PRE: email and password are non-empty
// POST: Returns the user record on 2xx; *HTTPError or *TransportError otherwise
func (c *Client) Login(ctx context.Context, email, password string) (member.Identity, error) {
	form := url.Values{"email": {email}, "password": {password}}
	var id member.Identity
	err := c.do(ctx, call{
		op:          "Login",
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, &id)
	return id, err
}

// ListUsers returns every user with attendance details. The API does not paginate.
func (c *Client) ListUsers(ctx context.Context) ([]member.User, error) {
	var users []member.User
	if err := c.do(ctx, call{op: "ListUsers", method: http.MethodGet, path: "/users/get_users_detail"}, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []member.User{}
	}
	return users, nil
}

// RegisterUser posts the registration form.
func (c *Client) RegisterUser(ctx context.Context, in member.RegisterInput) (Message, error) {
	var msg Message
	err := c.postMultipart(ctx, "RegisterUser", "/users/register_user", &msg,
		field{"username", in.Username},
		field{"password", in.Password},
		field{"email", in.Email},
		field{"role", in.Role},
		field{"gender", in.Gender},
		field{"interests", in.Interests},
	)
	return msg, err
}

// UpdateUser posts the edit form. An empty role leaves the role unchanged server-side.
func (c *Client) UpdateUser(ctx context.Context, in member.UpdateInput) (Message, error) {
	fields := []field{
		{"user_id", strconv.FormatInt(in.UserID, 10)},
		{"email", in.Email},
		{"interests", in.Interests},
		{"gender", in.Gender},
	}
	if in.Role != "" {
		fields = append(fields, field{"role", in.Role})
	}
	var msg Message
	err := c.postMultipart(ctx, "UpdateUser", "/users/update_user", &msg, fields...)
	return msg, err
}

// CreateGroup posts the group creation form.
func (c *Client) CreateGroup(ctx context.Context, date string) (Message, error) {
	var msg Message
	err := c.postMultipart(ctx, "CreateGroup", "/groups/create", &msg, field{"date", date})
	return msg, err
}

// ListGroups returns every group with per-part counts.
func (c *Client) ListGroups(ctx context.Context) ([]group.Group, error) {
	var groups []group.Group
	if err := c.do(ctx, call{op: "ListGroups", method: http.MethodGet, path: "/groups/list"}, &groups); err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []group.Group{}
	}
	return groups, nil
}

// ListTeams returns the teams of a group in server order.
func (c *Client) ListTeams(ctx context.Context, groupID int64) ([]team.Team, error) {
	var teams []team.Team
	path := fmt.Sprintf("/groups/%d/teams", groupID)
	if err := c.do(ctx, call{op: "ListTeams", method: http.MethodGet, path: path}, &teams); err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []team.Team{}
	}
	return teams, nil
}

// MyTeam returns the id of the user's team in the group, nil when unassigned.
func (c *Client) MyTeam(ctx context.Context, groupID, userID int64) (*int64, error) {
	var body struct {
		TeamID *int64 `json:"team_id"`
	}
	err := c.do(ctx, call{
		op:     "MyTeam",
		method: http.MethodGet,
		path:   fmt.Sprintf("/groups/%d/my_team", groupID),
		query:  url.Values{"user_id": {strconv.FormatInt(userID, 10)}},
	}, &body)
	if err != nil {
		return nil, err
	}
	return body.TeamID, nil
}

// GetAttendance returns the user's status for one part, nil when unset.
func (c *Client) GetAttendance(ctx context.Context, groupID, userID int64, part string) (*string, error) {
	var body struct {
		Status *string `json:"status"`
	}
	err := c.do(ctx, call{
		op:     "GetAttendance",
		method: http.MethodGet,
		path:   "/attendance/get",
		query: url.Values{
			"group_id": {strconv.FormatInt(groupID, 10)},
			"user_id":  {strconv.FormatInt(userID, 10)},
			"part":     {part},
		},
	}, &body)
	if err != nil {
		return nil, err
	}
	return body.Status, nil
}

// SetAttendance records the user's status for one part.
func (c *Client) SetAttendance(ctx context.Context, groupID, userID int64, part, status string) error {
	return c.postMultipart(ctx, "SetAttendance", "/attendance/set", nil,
		field{"group_id", strconv.FormatInt(groupID, 10)},
		field{"user_id", strconv.FormatInt(userID, 10)},
		field{"part", part},
		field{"status", status},
	)
}

// Shuffle asks the server to partition the part's attendees into teams of teamSize.
func (c *Client) Shuffle(ctx context.Context, groupID int64, part string, teamSize int) (ShuffleResult, error) {
	var res ShuffleResult
	err := c.postMultipart(ctx, "Shuffle", fmt.Sprintf("/groups/%d/shuffle", groupID), &res,
		field{"part", part},
		field{"team_size", strconv.Itoa(teamSize)},
	)
	return res, err
}
