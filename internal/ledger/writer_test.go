package ledger

import (
	"context"
	"math"
	"testing"
	"time"

	"splitbot/internal/core"
	"splitbot/internal/directory"
	"splitbot/internal/rowstore"
	"splitbot/internal/rowstore/memory"
)

func newTestWriter(t *testing.T, members ...string) (*Writer, *memory.Store) {
	t.Helper()
	store := memory.New()
	links := directory.NewUserGroupRepo(store)
	for _, m := range members {
		if _, err := links.Upsert(context.Background(), m, "GRP001"); err != nil {
			t.Fatalf("seed membership: %v", err)
		}
	}
	return NewWriter(store, links, nil, nil), store
}

func readPostings(t *testing.T, store *memory.Store) []core.OperationRow {
	t.Helper()
	raw, err := store.ReadAllRows(context.Background(), rowstore.TableOperationRows)
	if err != nil {
		t.Fatalf("read postings: %v", err)
	}
	out := make([]core.OperationRow, 0, len(raw))
	for _, row := range raw {
		posting, err := core.ParseOperationRow(row)
		if err != nil {
			t.Fatalf("parse posting %v: %v", row, err)
		}
		out = append(out, posting)
	}
	return out
}

func TestRecordSharedExpense(t *testing.T) {
	w, store := newTestWriter(t, "alice", "bob", "carol")

	opID, err := w.RecordSharedExpense(context.Background(), "alice", "GRP001", "Food", "groceries", 100)
	if err != nil {
		t.Fatalf("RecordSharedExpense: %v", err)
	}
	if opID == "" {
		t.Fatal("empty operation id")
	}

	postings := readPostings(t, store)
	if len(postings) != 4 {
		t.Fatalf("got %d postings, want 1 debit + 3 credits", len(postings))
	}

	var debits, credits int
	var creditSum float64
	for _, p := range postings {
		if p.OperationID != opID {
			t.Errorf("posting operation id = %q, want %q", p.OperationID, opID)
		}
		switch p.RowType {
		case core.RowDebit:
			debits++
			if p.PersonID != "alice" || p.Amount != 100 {
				t.Errorf("debit = (%s, %v), want (alice, 100)", p.PersonID, p.Amount)
			}
		case core.RowCredit:
			credits++
			creditSum += p.Amount
		}
	}
	if debits != 1 || credits != 3 {
		t.Errorf("got %d debits and %d credits, want 1 and 3", debits, credits)
	}
	if math.Abs(creditSum-100) > 1e-9 {
		t.Errorf("credit sum = %v, want 100 within epsilon", creditSum)
	}

	ops, err := store.ReadAllRows(context.Background(), rowstore.TableOperations)
	if err != nil {
		t.Fatalf("read operations: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("got %d operations, want 1", len(ops))
	}
	op, err := core.ParseOperation(ops[0])
	if err != nil {
		t.Fatalf("parse operation: %v", err)
	}
	if op.ID != opID || !op.IsExpense || op.OperationType != core.OperationExpense {
		t.Errorf("operation = %+v, want expense with id %s", op, opID)
	}
}

func TestRecordSharedExpenseSingleMember(t *testing.T) {
	w, store := newTestWriter(t, "alice")

	if _, err := w.RecordSharedExpense(context.Background(), "alice", "GRP001", "Food", "", 30); err != nil {
		t.Fatalf("RecordSharedExpense: %v", err)
	}
	postings := readPostings(t, store)
	if len(postings) != 2 {
		t.Fatalf("got %d postings, want debit + one credit", len(postings))
	}
	if postings[1].Amount != 30 {
		t.Errorf("single-member credit = %v, want full amount 30", postings[1].Amount)
	}
}

func TestRecordSharedExpenseEmptyGroup(t *testing.T) {
	w, store := newTestWriter(t) // no members at all

	opID, err := w.RecordSharedExpense(context.Background(), "alice", "GRP001", "Food", "", 50)
	if err != nil {
		t.Fatalf("empty group must not fail the write: %v", err)
	}
	if opID == "" {
		t.Fatal("empty operation id")
	}

	postings := readPostings(t, store)
	if len(postings) != 1 {
		t.Fatalf("got %d postings, want debit only", len(postings))
	}
	if postings[0].RowType != core.RowDebit || postings[0].Amount != 50 {
		t.Errorf("posting = %+v, want debit of 50", postings[0])
	}
}

func TestRecordSharedExpenseInvalidAmount(t *testing.T) {
	w, store := newTestWriter(t, "alice")

	for _, amount := range []float64{0, -10} {
		if _, err := w.RecordSharedExpense(context.Background(), "alice", "GRP001", "Food", "", amount); err == nil {
			t.Errorf("amount %v: expected error", amount)
		}
	}
	if rows := readPostings(t, store); len(rows) != 0 {
		t.Errorf("invalid amounts wrote %d postings", len(rows))
	}
}

func TestRecordTransfer(t *testing.T) {
	w, store := newTestWriter(t, "alice", "bob")

	opID, err := w.RecordTransfer(context.Background(), "GRP001", "alice", "bob", "settling up", 40)
	if err != nil {
		t.Fatalf("RecordTransfer: %v", err)
	}

	postings := readPostings(t, store)
	if len(postings) != 2 {
		t.Fatalf("got %d postings, want exactly 2", len(postings))
	}
	debit, credit := postings[0], postings[1]
	if debit.RowType != core.RowDebit || debit.PersonID != "alice" || debit.Amount != 40 {
		t.Errorf("debit = %+v, want alice/40", debit)
	}
	if credit.RowType != core.RowCredit || credit.PersonID != "bob" || credit.Amount != 40 {
		t.Errorf("credit = %+v, want bob/40", credit)
	}
	for _, p := range postings {
		if p.Category != core.TransferCategory {
			t.Errorf("category = %q, want %q", p.Category, core.TransferCategory)
		}
		if p.OperationID != opID {
			t.Errorf("operation id = %q, want %q", p.OperationID, opID)
		}
	}

	ops, _ := store.ReadAllRows(context.Background(), rowstore.TableOperations)
	op, err := core.ParseOperation(ops[0])
	if err != nil {
		t.Fatalf("parse operation: %v", err)
	}
	if op.IsExpense {
		t.Error("transfer must not be marked as an expense")
	}
	if op.Category != core.TransferCategory {
		t.Errorf("operation category = %q, want %q", op.Category, core.TransferCategory)
	}
}

func TestRecordTransferToSelf(t *testing.T) {
	// Self-transfer is not rejected by the writer; the dialog layer keeps it
	// out of the UI. It still produces two rows.
	w, store := newTestWriter(t, "alice")

	if _, err := w.RecordTransfer(context.Background(), "GRP001", "alice", "alice", "", 10); err != nil {
		t.Fatalf("RecordTransfer: %v", err)
	}
	postings := readPostings(t, store)
	if len(postings) != 2 {
		t.Fatalf("got %d postings, want 2", len(postings))
	}
}

func TestOperationIDAndDateSharedAcrossRows(t *testing.T) {
	w, store := newTestWriter(t, "alice", "bob")
	fixed := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }
	w.newID = func() string { return "op-fixed" }

	if _, err := w.RecordSharedExpense(context.Background(), "alice", "GRP001", "Food", "", 10); err != nil {
		t.Fatalf("RecordSharedExpense: %v", err)
	}
	for _, p := range readPostings(t, store) {
		if p.OperationID != "op-fixed" {
			t.Errorf("operation id = %q, want op-fixed", p.OperationID)
		}
		if !p.Date.Equal(fixed) {
			t.Errorf("posting date = %v, want %v", p.Date, fixed)
		}
	}
}
