package orchestrators

import (
	"context"
	"errors"
	"fmt"

	"meetup/internal/domain/group"
	"meetup/internal/domain/session"
)

// GroupLister lists groups through the meetup API.
type GroupLister interface {
	ListGroups(ctx context.Context) ([]group.Group, error)
}

// SessionUpdater replaces a stored session.
type SessionUpdater interface {
	Update(ctx context.Context, token string, s session.Session) error
}

// SelectGroupInput names the session and the group to select.
type SelectGroupInput struct {
	Token   string
	Session session.Session
	GroupID int64
}

// SelectGroupDeps holds dependencies for SelectGroup.
type SelectGroupDeps struct {
	API      GroupLister
	Sessions SessionUpdater
}

// ErrGroupNotFound is returned when the selected id is not in the group list.
var ErrGroupNotFound = errors.New("group not found")

// ExecuteSelectGroup records a group as the session's shuffle target.
// PRE: input.Token names a stored session
// POST: The stored session's shuffle target is the group; nothing else changes
func ExecuteSelectGroup(ctx context.Context, input SelectGroupInput, deps SelectGroupDeps) (session.Session, error) {
	groups, err := deps.API.ListGroups(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("list groups: %w", err)
	}
	var found *group.Group
	for i := range groups {
		if groups[i].ID == input.GroupID {
			found = &groups[i]
			break
		}
	}
	if found == nil {
		return session.Session{}, ErrGroupNotFound
	}

	sess := input.Session
	sess.Shuffle = &session.ShuffleTarget{GroupID: found.ID, Date: found.Date}
	if err := deps.Sessions.Update(ctx, input.Token, sess); err != nil {
		return session.Session{}, fmt.Errorf("save shuffle target: %w", err)
	}
	return sess, nil
}

// RememberUserPageDeps holds dependencies for RememberUserPage.
type RememberUserPageDeps struct {
	Sessions SessionUpdater
}

// ExecuteRememberUserPage stores the admin list page in the session.
// POST: The stored session's UserPage is page when page >= 1
func ExecuteRememberUserPage(ctx context.Context, token string, sess session.Session, page int, deps RememberUserPageDeps) (session.Session, error) {
	if page < 1 || sess.UserPage == page {
		return sess, nil
	}
	sess.UserPage = page
	if err := deps.Sessions.Update(ctx, token, sess); err != nil {
		return session.Session{}, fmt.Errorf("save user page: %w", err)
	}
	return sess, nil
}
