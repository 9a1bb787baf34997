package directory

import (
	"context"
	"fmt"
	"strings"

	"splitbot/internal/core"
	"splitbot/internal/rowstore"
)

// userGroups table layout: A userId | B groupId. One row per user; switching
// groups rewrites the row in place.

type UserGroupRepo struct {
	store rowstore.Store
}

func NewUserGroupRepo(store rowstore.Store) *UserGroupRepo {
	return &UserGroupRepo{store: store}
}

// GetByUserID returns the user's current group link, or nil when the user is
// not bound to any group yet.
func (r *UserGroupRepo) GetByUserID(ctx context.Context, userID string) (*core.UserGroupLink, error) {
	rows, err := r.store.ReadAllRows(ctx, rowstore.TableUserGroups)
	if err != nil {
		return nil, fmt.Errorf("read user groups: %w", err)
	}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		if strings.TrimSpace(row[0]) == strings.TrimSpace(userID) {
			return &core.UserGroupLink{
				UserID:  strings.TrimSpace(row[0]),
				GroupID: normalizeGroupID(row[1]),
			}, nil
		}
	}
	return nil, nil
}

// Upsert rebinds the user to a group, updating the existing link row when
// there is one.
func (r *UserGroupRepo) Upsert(ctx context.Context, userID, groupID string) (core.UserGroupLink, error) {
	link := core.UserGroupLink{UserID: userID, GroupID: normalizeGroupID(groupID)}

	rows, err := r.store.ReadAllRows(ctx, rowstore.TableUserGroups)
	if err != nil {
		return core.UserGroupLink{}, fmt.Errorf("read user groups: %w", err)
	}
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) != strings.TrimSpace(userID) {
			continue
		}
		if err := r.store.UpdateRow(ctx, rowstore.TableUserGroups, i, []string{link.UserID, link.GroupID}); err != nil {
			return core.UserGroupLink{}, fmt.Errorf("update user group link: %w", err)
		}
		return link, nil
	}

	if err := r.store.AppendRows(ctx, rowstore.TableUserGroups, [][]string{{link.UserID, link.GroupID}}); err != nil {
		return core.UserGroupLink{}, fmt.Errorf("append user group link: %w", err)
	}
	return link, nil
}

// MembersOf returns the user ids currently linked to the group, preserving
// stored row order. Group ids are compared case-insensitively.
func (r *UserGroupRepo) MembersOf(ctx context.Context, groupID string) ([]string, error) {
	rows, err := r.store.ReadAllRows(ctx, rowstore.TableUserGroups)
	if err != nil {
		return nil, fmt.Errorf("read user groups: %w", err)
	}
	want := normalizeGroupID(groupID)
	var members []string
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		if normalizeGroupID(row[1]) == want {
			members = append(members, strings.TrimSpace(row[0]))
		}
	}
	return members, nil
}
