// Package ledger turns user actions into double-entry posting rows.
//
// A shared expense of X across k members writes one debit row of X for the
// spender and k credit rows of X/k, one per member (spender included). A
// transfer of X writes one debit row for the sender and one credit row for
// the receiver. Rows of one operation share its id and timestamp.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"splitbot/internal/core"
	"splitbot/internal/events"
	"splitbot/internal/rowstore"
)

// MembershipLookup resolves the current member list of a group.
type MembershipLookup interface {
	MembersOf(ctx context.Context, groupID string) ([]string, error)
}

// EventPublisher receives a best-effort notification after a successful
// write. Publish failures are logged, never surfaced to the caller.
type EventPublisher interface {
	PublishOperationRecorded(ctx context.Context, msg *events.OperationRecorded) error
}

type Writer struct {
	store   rowstore.Store
	members MembershipLookup
	events  EventPublisher // optional
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

func NewWriter(store rowstore.Store, members MembershipLookup, publisher EventPublisher, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		store:   store,
		members: members,
		events:  publisher,
		logger:  logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// RecordSharedExpense writes an expense operation split across every current
// member of the group and returns the new operation id.
//
// A group that resolves to zero members still gets the operation and the
// spender's debit row; no credit rows are emitted. The write does not fail.
func (w *Writer) RecordSharedExpense(ctx context.Context, spenderID, groupID, category, comment string, amount float64) (string, error) {
	if amount <= 0 {
		return "", core.ErrInvalidAmount
	}

	now := w.now()
	op := core.Operation{
		GroupID:       groupID,
		Date:          now,
		ID:            w.newID(),
		OperationType: core.OperationExpense,
		PersonID:      spenderID,
		IsExpense:     true,
		Category:      category,
		Comment:       comment,
		Amount:        amount,
		Active:        true,
	}
	if err := op.Validate(); err != nil {
		return "", err
	}

	if err := w.store.AppendRows(ctx, rowstore.TableOperations, [][]string{op.Row()}); err != nil {
		return "", fmt.Errorf("append operation: %w", err)
	}

	members, err := w.members.MembersOf(ctx, groupID)
	if err != nil {
		return "", fmt.Errorf("resolve members of %s: %w", groupID, err)
	}

	rows := [][]string{
		core.OperationRow{
			GroupID:     groupID,
			Date:        now,
			OperationID: op.ID,
			PersonID:    spenderID,
			Category:    category,
			RowType:     core.RowDebit,
			Amount:      amount,
			Active:      true,
		}.Row(),
	}

	if len(members) == 0 {
		w.logger.WarnContext(ctx, "Shared expense for group with no members",
			"group_id", groupID, "operation_id", op.ID)
	} else {
		share := amount / float64(len(members))
		for _, memberID := range members {
			rows = append(rows, core.OperationRow{
				GroupID:     groupID,
				Date:        now,
				OperationID: op.ID,
				PersonID:    memberID,
				Category:    category,
				RowType:     core.RowCredit,
				Amount:      share,
				Active:      true,
			}.Row())
		}
	}

	if err := w.store.AppendRows(ctx, rowstore.TableOperationRows, rows); err != nil {
		return "", fmt.Errorf("append posting rows: %w", err)
	}

	w.publish(ctx, op)
	return op.ID, nil
}

// RecordTransfer writes a point-to-point transfer: debit for the sender,
// credit for the receiver, no split. Sender and receiver being the same user
// is not rejected here; the dialog layer keeps self-transfers out of the UI.
func (w *Writer) RecordTransfer(ctx context.Context, groupID, fromUserID, toUserID, comment string, amount float64) (string, error) {
	if amount <= 0 {
		return "", core.ErrInvalidAmount
	}

	now := w.now()
	op := core.Operation{
		GroupID:       groupID,
		Date:          now,
		ID:            w.newID(),
		OperationType: core.OperationTransfer,
		PersonID:      fromUserID,
		IsExpense:     false,
		Category:      core.TransferCategory,
		Comment:       comment,
		Amount:        amount,
		Active:        true,
	}
	if err := op.Validate(); err != nil {
		return "", err
	}

	if err := w.store.AppendRows(ctx, rowstore.TableOperations, [][]string{op.Row()}); err != nil {
		return "", fmt.Errorf("append operation: %w", err)
	}

	rows := [][]string{
		core.OperationRow{
			GroupID:     groupID,
			Date:        now,
			OperationID: op.ID,
			PersonID:    fromUserID,
			Category:    core.TransferCategory,
			RowType:     core.RowDebit,
			Amount:      amount,
			Active:      true,
		}.Row(),
		core.OperationRow{
			GroupID:     groupID,
			Date:        now,
			OperationID: op.ID,
			PersonID:    toUserID,
			Category:    core.TransferCategory,
			RowType:     core.RowCredit,
			Amount:      amount,
			Active:      true,
		}.Row(),
	}
	if err := w.store.AppendRows(ctx, rowstore.TableOperationRows, rows); err != nil {
		return "", fmt.Errorf("append posting rows: %w", err)
	}

	w.publish(ctx, op)
	return op.ID, nil
}

func (w *Writer) publish(ctx context.Context, op core.Operation) {
	if w.events == nil {
		return
	}
	msg := &events.OperationRecorded{
		OperationID: op.ID,
		GroupID:     op.GroupID,
		Type:        string(op.OperationType),
		PersonID:    op.PersonID,
		Category:    op.Category,
		Amount:      op.Amount,
		Timestamp:   op.Date,
	}
	if err := w.events.PublishOperationRecorded(ctx, msg); err != nil {
		w.logger.ErrorContext(ctx, "Failed to publish operation event",
			"operation_id", op.ID, "error", err)
	}
}
