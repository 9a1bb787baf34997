// Package rowstore defines the narrow tabular-store contract the rest of the
// application depends on. Rows are positional string tuples; row indexes are
// zero-based within a table's data rows.
package rowstore

import "context"

// Logical table names. The Google Sheets backend maps them to sheet tabs of
// the same name, the SQLite backend to partitions of one generic table.
const (
	TableGroups        = "Groups"
	TableUsers         = "users"
	TableUserGroups    = "userGroups"
	TableOperations    = "operations"
	TableOperationRows = "operationsRows"
)

type Store interface {
	// AppendRows appends rows to the end of a table in one batched write.
	AppendRows(ctx context.Context, table string, rows [][]string) error

	// ReadAllRows returns every data row of a table in stored order.
	ReadAllRows(ctx context.Context, table string) ([][]string, error)

	// UpdateRow replaces the row at index with new fields.
	UpdateRow(ctx context.Context, table string, index int, row []string) error

	// DeleteRow removes the row at index, shifting later rows up.
	DeleteRow(ctx context.Context, table string, index int) error
}
