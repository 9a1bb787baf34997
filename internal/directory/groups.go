// Package directory holds the identity repositories: groups, users and the
// user→group membership links. All of them are thin consumers of the row
// store and own no business rules.
package directory

import (
	"context"
	"fmt"
	"strings"

	"splitbot/internal/core"
	"splitbot/internal/rowstore"
)

// Groups table layout: A id | B name (optional display name).

type GroupRepo struct {
	store rowstore.Store
}

func NewGroupRepo(store rowstore.Store) *GroupRepo {
	return &GroupRepo{store: store}
}

// Exists reports whether a group with this id is registered. Group ids are
// matched case-insensitively; callers may pass codes as the user typed them.
func (r *GroupRepo) Exists(ctx context.Context, groupID string) (bool, error) {
	rows, err := r.store.ReadAllRows(ctx, rowstore.TableGroups)
	if err != nil {
		return false, fmt.Errorf("read groups: %w", err)
	}
	want := normalizeGroupID(groupID)
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if normalizeGroupID(row[0]) == want {
			return true, nil
		}
	}
	return false, nil
}

func (r *GroupRepo) Create(ctx context.Context, groupID string) (core.Group, error) {
	id := normalizeGroupID(groupID)
	if err := r.store.AppendRows(ctx, rowstore.TableGroups, [][]string{{id}}); err != nil {
		return core.Group{}, fmt.Errorf("create group %s: %w", id, err)
	}
	return core.Group{ID: id}, nil
}

// DisplayName returns the group's name column when one is set, otherwise the
// raw group id.
func (r *GroupRepo) DisplayName(ctx context.Context, groupID string) (string, error) {
	rows, err := r.store.ReadAllRows(ctx, rowstore.TableGroups)
	if err != nil {
		return "", fmt.Errorf("read groups: %w", err)
	}
	want := normalizeGroupID(groupID)
	for _, row := range rows {
		if len(row) == 0 || normalizeGroupID(row[0]) != want {
			continue
		}
		if len(row) > 1 && strings.TrimSpace(row[1]) != "" {
			return strings.TrimSpace(row[1]), nil
		}
		break
	}
	return groupID, nil
}

func normalizeGroupID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
