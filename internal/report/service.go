// Package report rebuilds balances and categorized expense summaries from
// the posting ledger. Aggregators are pure functions of stored state: they
// only read the row store and the directories, never the ledger writer.
package report

import (
	"context"
	"log/slog"
	"time"

	"splitbot/internal/core"
	"splitbot/internal/rowstore"
)

type MembershipLookup interface {
	MembersOf(ctx context.Context, groupID string) ([]string, error)
}

type GroupDirectory interface {
	DisplayName(ctx context.Context, groupID string) (string, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, userID string) (*core.UserInfo, error)
}

type Service struct {
	store   rowstore.Store
	members MembershipLookup
	groups  GroupDirectory
	users   UserDirectory
	strict  bool // reject unknown period selectors instead of defaulting
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(store rowstore.Store, members MembershipLookup, groups GroupDirectory, users UserDirectory, strict bool, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		members: members,
		groups:  groups,
		users:   users,
		strict:  strict,
		logger:  logger,
		now:     time.Now,
	}
}
