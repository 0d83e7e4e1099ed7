package projections

import (
	"context"
	"fmt"

	"meetup/internal/domain/session"
)

// AdminGroupItem is one row of the admin group list.
type AdminGroupItem struct {
	ID       int64
	Date     string
	Summary  string
	Selected bool
}

// GetAdminGroupsQuery carries the session's shuffle target, nil when none.
type GetAdminGroupsQuery struct {
	Selected *session.ShuffleTarget
}

// GetAdminGroupsResult carries the query result.
type GetAdminGroupsResult struct {
	Groups        []AdminGroupItem
	SelectedLabel string
}

// GetAdminGroupsDeps holds dependencies for GetAdminGroups.
type GetAdminGroupsDeps struct {
	API GroupLister
}

// QueryGetAdminGroups renders the group list with per-part headcounts.
// PRE: none
// POST: At most one item is Selected, the one matching the shuffle target
func QueryGetAdminGroups(ctx context.Context, query GetAdminGroupsQuery, deps GetAdminGroupsDeps) (GetAdminGroupsResult, error) {
	var result GetAdminGroupsResult
	if query.Selected != nil {
		result.SelectedLabel = fmt.Sprintf("선택된 모임: %s", query.Selected.Date)
	}

	groups, err := deps.API.ListGroups(ctx)
	if err != nil {
		return result, fmt.Errorf("list groups: %w", err)
	}
	result.Groups = make([]AdminGroupItem, 0, len(groups))
	for _, g := range groups {
		result.Groups = append(result.Groups, AdminGroupItem{
			ID:       g.ID,
			Date:     g.Date,
			Summary:  g.Summary(),
			Selected: query.Selected != nil && query.Selected.GroupID == g.ID,
		})
	}
	return result, nil
}
