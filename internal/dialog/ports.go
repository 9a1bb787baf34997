package dialog

import (
	"context"

	"splitbot/internal/core"
	"splitbot/internal/report"
)

// GroupService is the registration use-case surface the dialog needs.
type GroupService interface {
	CurrentGroup(ctx context.Context, userID string) (*core.Group, error)
	CreateGroupAndAssign(ctx context.Context, userID string) (core.Group, error)
	JoinGroup(ctx context.Context, userID, groupID string) (bool, error)
}

// LedgerWriter records operations once the dialog has collected all inputs.
type LedgerWriter interface {
	RecordSharedExpense(ctx context.Context, spenderID, groupID, category, comment string, amount float64) (string, error)
	RecordTransfer(ctx context.Context, groupID, fromUserID, toUserID, comment string, amount float64) (string, error)
}

// Reporter renders the report texts offered in the report menu.
type Reporter interface {
	FormatBalanceReport(ctx context.Context, groupID string) (string, error)
	FormatCategoryReport(ctx context.Context, groupID string, selector report.Period) (string, error)
}

type MembershipLookup interface {
	MembersOf(ctx context.Context, groupID string) ([]string, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, userID string) (*core.UserInfo, error)
	CreateIfNotExists(ctx context.Context, userID, name string) (core.UserInfo, error)
}
