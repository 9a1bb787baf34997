package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// Positional column layouts for the tabular store. Consumers must preserve
// column order exactly; booleans are serialized as the literal strings
// "TRUE"/"FALSE" and anything else reads back as false.
//
// operations:     A Group | B Date | C Id | D OperationType | E Person |
//                 F IsExpense | G Category | H Comment | I Amount | J Active
// operationsRows: A Group | B Date | C Operation | D Person | E Category |
//                 F Type | G Amount | H Active

var ErrMalformedRow = errors.New("malformed row")

// Row serializes the operation into its 10-column tuple.
func (o Operation) Row() []string {
	return []string{
		o.GroupID,
		o.Date.Format(time.RFC3339),
		o.ID,
		string(o.OperationType),
		o.PersonID,
		formatBool(o.IsExpense),
		o.Category,
		o.Comment,
		FormatAmount(o.Amount),
		formatBool(o.Active),
	}
}

// Row serializes the posting into its 8-column tuple.
func (r OperationRow) Row() []string {
	return []string{
		r.GroupID,
		r.Date.Format(time.RFC3339),
		r.OperationID,
		r.PersonID,
		r.Category,
		string(r.RowType),
		FormatAmount(r.Amount),
		formatBool(r.Active),
	}
}

// ParseOperation reconstructs an Operation from a stored tuple. A short row,
// unparseable date or unparseable amount yields ErrMalformedRow; aggregators
// skip such rows instead of failing the whole report.
func ParseOperation(row []string) (Operation, error) {
	if len(row) < 10 {
		return Operation{}, ErrMalformedRow
	}
	date, err := ParseDate(row[1])
	if err != nil {
		return Operation{}, ErrMalformedRow
	}
	amount, ok := ParseAmount(row[8])
	if !ok {
		return Operation{}, ErrMalformedRow
	}
	return Operation{
		GroupID:       strings.TrimSpace(row[0]),
		Date:          date,
		ID:            strings.TrimSpace(row[2]),
		OperationType: OperationType(strings.TrimSpace(row[3])),
		PersonID:      strings.TrimSpace(row[4]),
		IsExpense:     parseBool(row[5]),
		Category:      strings.TrimSpace(row[6]),
		Comment:       row[7],
		Amount:        amount,
		Active:        parseBool(row[9]),
	}, nil
}

// ParseOperationRow reconstructs a posting from a stored tuple.
func ParseOperationRow(row []string) (OperationRow, error) {
	if len(row) < 8 {
		return OperationRow{}, ErrMalformedRow
	}
	date, err := ParseDate(row[1])
	if err != nil {
		return OperationRow{}, ErrMalformedRow
	}
	amount, ok := ParseAmount(row[6])
	if !ok {
		return OperationRow{}, ErrMalformedRow
	}
	return OperationRow{
		GroupID:     strings.TrimSpace(row[0]),
		Date:        date,
		OperationID: strings.TrimSpace(row[2]),
		PersonID:    strings.TrimSpace(row[3]),
		Category:    strings.TrimSpace(row[4]),
		RowType:     RowType(strings.ToLower(strings.TrimSpace(row[5]))),
		Amount:      amount,
		Active:      parseBool(row[7]),
	}, nil
}

// ParseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// ParseAmount parses a stored amount, tolerating a decimal comma.
func ParseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatAmount renders an amount the way it is written to the store.
func FormatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "TRUE")
}
