// Package groups implements the registration use cases: create a group with
// a generated share code, join an existing group, look up the current one.
package groups

import (
	"context"
	"fmt"
	"math/rand/v2"

	"splitbot/internal/core"
	"splitbot/internal/directory"
)

// GroupCodeLength is the length of generated group share codes.
const GroupCodeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Service struct {
	groups *directory.GroupRepo
	links  *directory.UserGroupRepo
}

func NewService(groups *directory.GroupRepo, links *directory.UserGroupRepo) *Service {
	return &Service{groups: groups, links: links}
}

// CurrentGroup returns the user's current group, or nil when the user is not
// bound to a group (or the link points at a group that no longer exists).
func (s *Service) CurrentGroup(ctx context.Context, userID string) (*core.Group, error) {
	link, err := s.links.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, nil
	}
	exists, err := s.groups.Exists(ctx, link.GroupID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	return &core.Group{ID: link.GroupID}, nil
}

// CreateGroupAndAssign registers a new group under a freshly generated code
// and binds the user to it. Generation retries until an unused code is found.
func (s *Service) CreateGroupAndAssign(ctx context.Context, userID string) (core.Group, error) {
	var code string
	for {
		code = newGroupCode(GroupCodeLength)
		exists, err := s.groups.Exists(ctx, code)
		if err != nil {
			return core.Group{}, err
		}
		if !exists {
			break
		}
	}

	group, err := s.groups.Create(ctx, code)
	if err != nil {
		return core.Group{}, err
	}
	if _, err := s.links.Upsert(ctx, userID, group.ID); err != nil {
		return core.Group{}, fmt.Errorf("assign user to group: %w", err)
	}
	return group, nil
}

// JoinGroup binds the user to an existing group. Returns false when no group
// with that code is registered.
func (s *Service) JoinGroup(ctx context.Context, userID, groupID string) (bool, error) {
	exists, err := s.groups.Exists(ctx, groupID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if _, err := s.links.Upsert(ctx, userID, groupID); err != nil {
		return false, err
	}
	return true, nil
}

// newGroupCode returns a random code of uppercase letters and digits, short
// enough to read out loud to another group member.
func newGroupCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}
