package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"splitbot/internal/core"
	"splitbot/internal/rowstore"
)

// UncategorizedLabel stands in for an empty or missing expense category.
const UncategorizedLabel = "Uncategorized"

const noExpensesMessage = "No expenses found for this period."

type expenseRecord struct {
	date     time.Time
	category string
	amount   decimal.Decimal
}

type categoryTotal struct {
	name string
	sum  decimal.Decimal
}

// FormatCategoryReport renders the group's expenses for the selected period
// grouped by category. Month-level selectors produce a single flat block;
// quarter and year selectors produce one block per calendar month plus a
// grand-total block. Sums and percentages use exact decimal arithmetic.
func (s *Service) FormatCategoryReport(ctx context.Context, groupID string, selector Period) (string, error) {
	ref := s.now()
	start, end, err := ResolvePeriod(selector, ref)
	if err != nil {
		if s.strict {
			return "", err
		}
		s.logger.WarnContext(ctx, "Unknown period selector, defaulting to current month",
			"selector", string(selector))
		selector = PeriodCurrentMonth
		start, end, _ = ResolvePeriod(selector, ref)
	}

	expenses, err := s.expensesForPeriod(ctx, groupID, start, end)
	if err != nil {
		return "", err
	}
	if len(expenses) == 0 {
		return noExpensesMessage, nil
	}

	if selector == PeriodCurrentMonth || selector == PeriodPrevMonth {
		return renderFlat(expenses), nil
	}
	return renderByMonth(expenses), nil
}

// expensesForPeriod reads the operations table and keeps expense operations
// of the group whose date falls inside the inclusive day-level range.
// Malformed rows are skipped, not surfaced.
func (s *Service) expensesForPeriod(ctx context.Context, groupID string, start, end time.Time) ([]expenseRecord, error) {
	rows, err := s.store.ReadAllRows(ctx, rowstore.TableOperations)
	if err != nil {
		return nil, fmt.Errorf("read operations: %w", err)
	}

	var out []expenseRecord
	for _, row := range rows {
		op, err := core.ParseOperation(row)
		if err != nil {
			continue
		}
		if !strings.EqualFold(op.GroupID, strings.TrimSpace(groupID)) {
			continue
		}
		if !op.IsExpense {
			continue
		}
		if dayKey(op.Date) < dayKey(start) || dayKey(op.Date) > dayKey(end) {
			continue
		}
		// Re-parse the amount as a decimal so many small additions cannot
		// drift at cent level the way float64 sums can.
		amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(row[8]), ",", "."))
		if err != nil {
			continue
		}
		out = append(out, expenseRecord{date: op.Date, category: op.Category, amount: amount})
	}
	return out, nil
}

// aggregate sums expenses per category, sorted by descending amount with
// first-seen order breaking ties.
func aggregate(expenses []expenseRecord) ([]categoryTotal, decimal.Decimal) {
	index := make(map[string]int)
	var totals []categoryTotal
	total := decimal.Zero

	for _, e := range expenses {
		name := strings.TrimSpace(e.category)
		if name == "" {
			name = UncategorizedLabel
		}
		i, ok := index[name]
		if !ok {
			i = len(totals)
			index[name] = i
			totals = append(totals, categoryTotal{name: name})
		}
		totals[i].sum = totals[i].sum.Add(e.amount)
		total = total.Add(e.amount)
	}

	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].sum.GreaterThan(totals[j].sum)
	})
	return totals, total
}

func writeCategoryLines(b *strings.Builder, totals []categoryTotal, total decimal.Decimal) {
	hundred := decimal.NewFromInt(100)
	for _, ct := range totals {
		pct := decimal.Zero
		if !total.IsZero() {
			pct = ct.sum.Div(total).Mul(hundred).Round(2)
		}
		fmt.Fprintf(b, "%s: %s (%s%%)\n", ct.name, ct.sum.StringFixed(2), pct.StringFixed(2))
	}
}

func renderFlat(expenses []expenseRecord) string {
	var b strings.Builder
	totals, total := aggregate(expenses)
	writeCategoryLines(&b, totals, total)
	return strings.TrimRight(b.String(), "\n")
}

func renderByMonth(expenses []expenseRecord) string {
	type monthKey struct {
		year  int
		month time.Month
	}

	byMonth := make(map[monthKey][]expenseRecord)
	var order []monthKey
	for _, e := range expenses {
		k := monthKey{year: e.date.Year(), month: e.date.Month()}
		if _, ok := byMonth[k]; !ok {
			order = append(order, k)
		}
		byMonth[k] = append(byMonth[k], e)
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].year != order[j].year {
			return order[i].year < order[j].year
		}
		return order[i].month < order[j].month
	})

	var b strings.Builder
	for _, k := range order {
		fmt.Fprintf(&b, "%s %d:\n", k.month, k.year)
		totals, total := aggregate(byMonth[k])
		writeCategoryLines(&b, totals, total)
		fmt.Fprintf(&b, "Total: %s\n\n", total.StringFixed(2))
	}

	b.WriteString("ИТОГО/TOTAL:\n")
	totals, total := aggregate(expenses)
	writeCategoryLines(&b, totals, total)
	fmt.Fprintf(&b, "Total: %s", total.StringFixed(2))
	return b.String()
}
