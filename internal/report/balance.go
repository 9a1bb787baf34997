package report

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"splitbot/internal/core"
	"splitbot/internal/rowstore"
)

// MemberBalance is one member's signed balance. Positive means the member
// put in more than their share and is owed money; negative means they owe.
type MemberBalance struct {
	UserID  string
	Balance float64
}

// GroupBalance replays every posting row of the group and returns the group
// display name plus one balance per current member, in membership order.
// Debit rows add to a member's balance, credit rows subtract. Rows for other
// groups, for people no longer in the group, or with unparseable amounts are
// skipped.
func (s *Service) GroupBalance(ctx context.Context, groupID string) (string, []MemberBalance, error) {
	members, err := s.members.MembersOf(ctx, groupID)
	if err != nil {
		return "", nil, fmt.Errorf("resolve members of %s: %w", groupID, err)
	}
	if len(members) == 0 {
		// Empty group: no ledger scan, no name lookup.
		return groupID, nil, nil
	}

	rows, err := s.store.ReadAllRows(ctx, rowstore.TableOperationRows)
	if err != nil {
		return "", nil, fmt.Errorf("read posting rows: %w", err)
	}

	balances := make(map[string]float64, len(members))
	for _, id := range members {
		balances[id] = 0
	}

	for _, row := range rows {
		if len(row) < 7 {
			continue
		}
		if !strings.EqualFold(strings.TrimSpace(row[0]), strings.TrimSpace(groupID)) {
			continue
		}
		personID := strings.TrimSpace(row[3])
		if _, ok := balances[personID]; !ok {
			continue
		}
		amount, ok := core.ParseAmount(row[6])
		if !ok {
			continue
		}
		switch core.RowType(strings.ToLower(strings.TrimSpace(row[5]))) {
		case core.RowDebit:
			balances[personID] += amount
		case core.RowCredit:
			balances[personID] -= amount
		}
	}

	name, err := s.groups.DisplayName(ctx, groupID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to resolve group name", "group_id", groupID, "error", err)
		name = groupID
	}

	out := make([]MemberBalance, 0, len(members))
	for _, id := range members {
		out = append(out, MemberBalance{UserID: id, Balance: balances[id]})
	}
	return name, out, nil
}

// FormatBalanceReport renders the group balance as one line per member.
func (s *Service) FormatBalanceReport(ctx context.Context, groupID string) (string, error) {
	name, balances, err := s.GroupBalance(ctx, groupID)
	if err != nil {
		return "", err
	}

	// Display names are independent lookups; fetch them concurrently.
	names := make([]string, len(balances))
	g, gctx := errgroup.WithContext(ctx)
	for i, mb := range balances {
		g.Go(func() error {
			names[i] = s.displayName(gctx, mb.UserID)
			return nil
		})
	}
	g.Wait()

	lines := []string{fmt.Sprintf("Group: %s", name)}
	for i, mb := range balances {
		lines = append(lines, fmt.Sprintf("%s: %.2f", names[i], mb.Balance))
	}
	if len(lines) == 1 {
		lines = append(lines, "No operation data in this group yet.")
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Service) displayName(ctx context.Context, userID string) string {
	info, err := s.users.GetByID(ctx, userID)
	if err == nil && info != nil && strings.TrimSpace(info.Name) != "" {
		return info.Name
	}
	return fmt.Sprintf("User %s", userID)
}
