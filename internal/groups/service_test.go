package groups

import (
	"context"
	"strings"
	"testing"

	"splitbot/internal/directory"
	"splitbot/internal/rowstore/memory"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store := memory.New()
	return NewService(directory.NewGroupRepo(store), directory.NewUserGroupRepo(store))
}

func TestCreateGroupAndAssign(t *testing.T) {
	svc := newTestService(t)

	group, err := svc.CreateGroupAndAssign(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CreateGroupAndAssign: %v", err)
	}
	if len(group.ID) != GroupCodeLength {
		t.Errorf("code %q has length %d, want %d", group.ID, len(group.ID), GroupCodeLength)
	}
	if strings.IndexFunc(group.ID, func(c rune) bool {
		return !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9')
	}) >= 0 {
		t.Errorf("code %q contains characters outside A-Z0-9", group.ID)
	}

	current, err := svc.CurrentGroup(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CurrentGroup: %v", err)
	}
	if current == nil || current.ID != group.ID {
		t.Errorf("current group = %+v, want %s", current, group.ID)
	}
}

func TestCurrentGroupUnlinkedUser(t *testing.T) {
	svc := newTestService(t)

	current, err := svc.CurrentGroup(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("CurrentGroup: %v", err)
	}
	if current != nil {
		t.Errorf("current = %+v, want nil for an unlinked user", current)
	}
}

func TestJoinGroup(t *testing.T) {
	svc := newTestService(t)
	group, err := svc.CreateGroupAndAssign(context.Background(), "owner")
	if err != nil {
		t.Fatalf("CreateGroupAndAssign: %v", err)
	}

	joined, err := svc.JoinGroup(context.Background(), "u2", strings.ToLower(group.ID))
	if err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}
	if !joined {
		t.Fatal("JoinGroup = false for an existing group")
	}

	current, err := svc.CurrentGroup(context.Background(), "u2")
	if err != nil {
		t.Fatalf("CurrentGroup: %v", err)
	}
	if current == nil || current.ID != group.ID {
		t.Errorf("current = %+v, want %s", current, group.ID)
	}
}

func TestJoinGroupUnknownCode(t *testing.T) {
	svc := newTestService(t)

	joined, err := svc.JoinGroup(context.Background(), "u2", "NOSUCH")
	if err != nil {
		t.Fatalf("JoinGroup: %v", err)
	}
	if joined {
		t.Error("JoinGroup = true for an unregistered code")
	}
}

func TestNewGroupCodesDiffer(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		seen[newGroupCode(GroupCodeLength)] = true
	}
	if len(seen) < 2 {
		t.Error("code generation produced the same code 50 times")
	}
}
