package core

import (
	"errors"
	"strings"
	"time"
)

const (
	OperationExpense  OperationType = "expense"
	OperationTransfer OperationType = "transfer"

	RowDebit  RowType = "debit"
	RowCredit RowType = "credit"

	// TransferCategory is the fixed category label stamped on transfer
	// operations and their postings.
	TransferCategory = "transfer"
)

type (
	OperationType string
	RowType       string

	// Operation is one user-initiated financial event: a shared expense or a
	// point-to-point transfer. Its postings live in OperationRow.
	Operation struct {
		GroupID       string
		Date          time.Time
		ID            string // UUID, generated once at creation
		OperationType OperationType
		PersonID      string // who registered the event
		IsExpense     bool
		Category      string
		Comment       string
		Amount        float64
		Active        bool
	}

	// OperationRow is a single ledger posting attached to an Operation.
	// Debit rows raise the person's balance, credit rows lower it.
	OperationRow struct {
		GroupID     string
		Date        time.Time
		OperationID string
		PersonID    string
		Category    string
		RowType     RowType
		Amount      float64
		Active      bool
	}

	Group struct {
		ID string
	}

	// UserGroupLink binds a user to their current group.
	UserGroupLink struct {
		UserID  string
		GroupID string
	}

	UserInfo struct {
		UserID string
		Name   string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrEmptyGroupID  = errors.New("empty group id")
	ErrEmptyPersonID = errors.New("empty person id")
)

func (o Operation) Validate() error {
	if strings.TrimSpace(o.GroupID) == "" {
		return ErrEmptyGroupID
	}
	if strings.TrimSpace(o.PersonID) == "" {
		return ErrEmptyPersonID
	}
	if o.Amount <= 0 {
		return ErrInvalidAmount
	}
	if o.IsExpense && strings.TrimSpace(o.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

func (r OperationRow) Validate() error {
	if strings.TrimSpace(r.GroupID) == "" {
		return ErrEmptyGroupID
	}
	if strings.TrimSpace(r.PersonID) == "" {
		return ErrEmptyPersonID
	}
	if r.Amount <= 0 {
		return ErrInvalidAmount
	}
	switch r.RowType {
	case RowDebit, RowCredit:
	default:
		return errors.New("invalid row type")
	}
	return nil
}
