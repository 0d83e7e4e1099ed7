package projections

import (
	"context"
	"errors"
	"fmt"

	"meetup/internal/application/listutil"
	"meetup/internal/domain/member"
)

// ErrUserNotFound is returned when the edited user is not in the user list.
var ErrUserNotFound = errors.New("user not found")

// GetUserPageQuery carries query parameters.
type GetUserPageQuery struct {
	Page int
}

// GetUserPageResult is one page of the admin user table.
type GetUserPageResult struct {
	Users    []member.User
	Page     listutil.PageInfo
	Controls []listutil.PageControl
}

// GetUserPageDeps holds dependencies for GetUserPage.
type GetUserPageDeps struct {
	API UserLister
}

// QueryGetUserPage fetches every user and slices out the requested page.
// PRE: none
// POST: Users has at most listutil.UsersPerPage rows; an out-of-range page
// is clamped to the last page
// INVARIANT: Server order is preserved
func QueryGetUserPage(ctx context.Context, query GetUserPageQuery, deps GetUserPageDeps) (GetUserPageResult, error) {
	users, err := deps.API.ListUsers(ctx)
	if err != nil {
		return GetUserPageResult{}, fmt.Errorf("list users: %w", err)
	}
	rows, info := listutil.Paginate(users, query.Page, listutil.UsersPerPage)
	result := GetUserPageResult{Users: rows, Page: info}
	if info.ShowPagination() {
		result.Controls = info.Controls()
	}
	return result, nil
}

// GetUserQuery names the user opened in the edit modal.
type GetUserQuery struct {
	UserID int64
}

// QueryGetUser finds one user for the edit modal.
// POST: Returns the user or ErrUserNotFound
func QueryGetUser(ctx context.Context, query GetUserQuery, deps GetUserPageDeps) (member.User, error) {
	users, err := deps.API.ListUsers(ctx)
	if err != nil {
		return member.User{}, fmt.Errorf("list users: %w", err)
	}
	u, ok := member.FindByID(users, query.UserID)
	if !ok {
		return member.User{}, ErrUserNotFound
	}
	return u, nil
}
