package dialog

import (
	"context"
	"strings"
	"testing"

	"splitbot/internal/directory"
	"splitbot/internal/groups"
	"splitbot/internal/ledger"
	"splitbot/internal/report"
	"splitbot/internal/rowstore"
	"splitbot/internal/rowstore/memory"
)

var testCategories = []string{"Food", "Transport", "Other"}

// newTestMachine wires a machine over the real services and an in-memory
// store, so dialog tests exercise the same paths the bot does.
func newTestMachine(t *testing.T) (*Machine, *memory.Store) {
	t.Helper()
	store := memory.New()
	groupRepo := directory.NewGroupRepo(store)
	userRepo := directory.NewUserRepo(store)
	linkRepo := directory.NewUserGroupRepo(store)

	groupSvc := groups.NewService(groupRepo, linkRepo)
	writer := ledger.NewWriter(store, linkRepo, nil, nil)
	reports := report.NewService(store, linkRepo, groupRepo, userRepo, false, nil)

	return NewMachine(groupSvc, writer, reports, linkRepo, userRepo, testCategories), store
}

func command(t *testing.T, m *Machine, userID, cmd string) Reply {
	t.Helper()
	r, err := m.HandleCommand(context.Background(), userID, "Test User", cmd)
	if err != nil {
		t.Fatalf("HandleCommand(%s): %v", cmd, err)
	}
	return r
}

func callback(t *testing.T, m *Machine, userID, data string) Reply {
	t.Helper()
	r, err := m.HandleCallback(context.Background(), userID, data)
	if err != nil {
		t.Fatalf("HandleCallback(%s): %v", data, err)
	}
	return r
}

func text(t *testing.T, m *Machine, userID, msg string) Reply {
	t.Helper()
	r, err := m.HandleText(context.Background(), userID, msg)
	if err != nil {
		t.Fatalf("HandleText(%q): %v", msg, err)
	}
	return r
}

// createGroupFor walks the registration flow and returns the generated code.
func createGroupFor(t *testing.T, m *Machine, userID string) string {
	t.Helper()
	command(t, m, userID, "/start")
	r := callback(t, m, userID, CallbackCreateGroup)
	if !strings.Contains(r.Text, "Your group id: ") {
		t.Fatalf("unexpected create-group reply: %q", r.Text)
	}
	line := r.Text[strings.Index(r.Text, "Your group id: ")+len("Your group id: "):]
	return strings.Fields(line)[0]
}

func TestStartWithoutGroupShowsRegisterMenu(t *testing.T) {
	m, _ := newTestMachine(t)

	r := command(t, m, "u1", "/start")
	if len(r.Keyboard) != 2 {
		t.Fatalf("got %d keyboard rows, want create + join", len(r.Keyboard))
	}
	if m.StateOf("u1") != StateRegisterChoice {
		t.Errorf("state = %v, want StateRegisterChoice", m.StateOf("u1"))
	}
}

func TestStartWithGroupShowsCurrentGroup(t *testing.T) {
	m, _ := newTestMachine(t)
	code := createGroupFor(t, m, "u1")

	r := command(t, m, "u1", "/start")
	if !strings.Contains(r.Text, "Current group: "+code) {
		t.Errorf("reply = %q, want current group %s", r.Text, code)
	}
	if len(r.Keyboard) != 0 {
		t.Errorf("unexpected keyboard on /start with a group")
	}
}

func TestCreateGroupCodeShape(t *testing.T) {
	m, _ := newTestMachine(t)
	code := createGroupFor(t, m, "u1")

	if len(code) != groups.GroupCodeLength {
		t.Errorf("code %q has length %d, want %d", code, len(code), groups.GroupCodeLength)
	}
	for _, c := range code {
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			t.Errorf("code %q contains %q outside A-Z0-9", code, c)
		}
	}
}

func TestJoinGroupFlow(t *testing.T) {
	m, _ := newTestMachine(t)
	code := createGroupFor(t, m, "owner")

	command(t, m, "u2", "/start")
	callback(t, m, "u2", CallbackJoinGroup)
	if m.StateOf("u2") != StateJoinGroupID {
		t.Fatalf("state = %v, want StateJoinGroupID", m.StateOf("u2"))
	}

	r := text(t, m, "u2", "NOSUCH")
	if !strings.Contains(r.Text, "No group with that id") {
		t.Errorf("unknown code reply = %q", r.Text)
	}
	if m.StateOf("u2") != StateJoinGroupID {
		t.Error("failed join must keep the user in the join state")
	}

	r = text(t, m, "u2", strings.ToLower(code))
	if !strings.Contains(r.Text, "You joined group "+code) {
		t.Errorf("join reply = %q, want joined %s", r.Text, code)
	}
	if m.StateOf("u2") != StateIdle {
		t.Errorf("state = %v, want StateIdle after joining", m.StateOf("u2"))
	}
}

func TestOperationWithoutGroup(t *testing.T) {
	m, _ := newTestMachine(t)

	r := command(t, m, "u1", "/operation")
	if r.Text != msgNoGroup {
		t.Errorf("reply = %q, want the no-group message", r.Text)
	}
}

func TestExpenseFlow(t *testing.T) {
	m, store := newTestMachine(t)
	createGroupFor(t, m, "u1")

	r := command(t, m, "u1", "/operation")
	if len(r.Keyboard) != 2 {
		t.Fatalf("main menu has %d rows, want 2", len(r.Keyboard))
	}

	callback(t, m, "u1", CallbackExpense)
	callback(t, m, "u1", CallbackModeAll)
	if m.StateOf("u1") != StateExpenseCategory {
		t.Fatalf("state = %v, want StateExpenseCategory", m.StateOf("u1"))
	}

	r = callback(t, m, "u1", "cat:Food")
	if !strings.Contains(r.Text, "Category: Food") {
		t.Errorf("category reply = %q", r.Text)
	}

	text(t, m, "u1", "pizza night")
	r = text(t, m, "u1", "120,50")
	if !strings.Contains(r.Text, "Expense recorded.") {
		t.Fatalf("final reply = %q, want confirmation", r.Text)
	}
	if m.StateOf("u1") != StateIdle {
		t.Errorf("state = %v, want StateIdle after recording", m.StateOf("u1"))
	}

	ops, err := store.ReadAllRows(context.Background(), rowstore.TableOperations)
	if err != nil {
		t.Fatalf("read operations: %v", err)
	}
	if len(ops) != 1 {
		t.Fatalf("got %d operations, want 1", len(ops))
	}
	postings, err := store.ReadAllRows(context.Background(), rowstore.TableOperationRows)
	if err != nil {
		t.Fatalf("read postings: %v", err)
	}
	if len(postings) != 2 {
		t.Errorf("got %d postings, want debit + one credit for a single member", len(postings))
	}
}

func TestExpenseAmountRetries(t *testing.T) {
	m, _ := newTestMachine(t)
	createGroupFor(t, m, "u1")

	command(t, m, "u1", "/operation")
	callback(t, m, "u1", CallbackExpense)
	callback(t, m, "u1", CallbackModeAll)
	callback(t, m, "u1", "cat:Food")
	text(t, m, "u1", "lunch")

	if r := text(t, m, "u1", "abc"); r.Text != msgAmountInvalid {
		t.Errorf("garbage amount reply = %q", r.Text)
	}
	if r := text(t, m, "u1", "-5"); r.Text != msgAmountNegative {
		t.Errorf("negative amount reply = %q", r.Text)
	}
	if m.StateOf("u1") != StateExpenseAmount {
		t.Fatal("rejected amounts must keep the user in the amount state")
	}
	if r := text(t, m, "u1", "25"); !strings.Contains(r.Text, "Expense recorded.") {
		t.Errorf("valid amount reply = %q", r.Text)
	}
}

func TestTransferKeyboardExcludesSelf(t *testing.T) {
	m, _ := newTestMachine(t)
	code := createGroupFor(t, m, "u1")

	command(t, m, "u2", "/start")
	callback(t, m, "u2", CallbackJoinGroup)
	text(t, m, "u2", code)

	command(t, m, "u1", "/operation")
	r := callback(t, m, "u1", CallbackTransfer)
	if len(r.Keyboard) != 1 {
		t.Fatalf("got %d target rows, want 1 (the other member)", len(r.Keyboard))
	}
	if r.Keyboard[0][0].Data != "trg:u2" {
		t.Errorf("target data = %q, want trg:u2", r.Keyboard[0][0].Data)
	}
}

func TestTransferAloneInGroup(t *testing.T) {
	m, _ := newTestMachine(t)
	createGroupFor(t, m, "u1")

	command(t, m, "u1", "/operation")
	r := callback(t, m, "u1", CallbackTransfer)
	if !strings.Contains(r.Text, "no other members") {
		t.Errorf("reply = %q, want the no-counterparty message", r.Text)
	}
	if m.StateOf("u1") != StateIdle {
		t.Error("session must reset when a transfer is impossible")
	}
}

func TestTransferFlow(t *testing.T) {
	m, store := newTestMachine(t)
	code := createGroupFor(t, m, "u1")
	command(t, m, "u2", "/start")
	callback(t, m, "u2", CallbackJoinGroup)
	text(t, m, "u2", code)

	command(t, m, "u1", "/operation")
	callback(t, m, "u1", CallbackTransfer)
	callback(t, m, "u1", "trg:u2")
	text(t, m, "u1", "rent share")
	r := text(t, m, "u1", "300")
	if !strings.Contains(r.Text, "Transfer recorded.") {
		t.Fatalf("final reply = %q", r.Text)
	}

	postings, err := store.ReadAllRows(context.Background(), rowstore.TableOperationRows)
	if err != nil {
		t.Fatalf("read postings: %v", err)
	}
	if len(postings) != 2 {
		t.Errorf("got %d postings, want a debit/credit pair", len(postings))
	}
}

func TestReportMenu(t *testing.T) {
	m, _ := newTestMachine(t)

	r := command(t, m, "u1", "/report")
	if len(r.Keyboard) != 7 {
		t.Fatalf("report menu has %d rows, want balance + six periods", len(r.Keyboard))
	}
	if r.Keyboard[0][0].Data != CallbackBalance {
		t.Errorf("first button = %q, want the balance report", r.Keyboard[0][0].Data)
	}
}

func TestReportWithoutGroup(t *testing.T) {
	m, _ := newTestMachine(t)

	command(t, m, "u1", "/report")
	r := callback(t, m, "u1", CallbackBalance)
	if r.Text != msgNoGroup {
		t.Errorf("reply = %q, want the no-group message", r.Text)
	}
}

func TestCategoryKeyboardMatchesConfiguredCategories(t *testing.T) {
	m, _ := newTestMachine(t)
	createGroupFor(t, m, "u1")

	command(t, m, "u1", "/operation")
	callback(t, m, "u1", CallbackExpense)
	r := callback(t, m, "u1", CallbackModeAll)
	if len(r.Keyboard) != len(testCategories) {
		t.Fatalf("got %d category rows, want %d", len(r.Keyboard), len(testCategories))
	}
	for i, cat := range testCategories {
		if r.Keyboard[i][0].Data != "cat:"+cat {
			t.Errorf("row %d data = %q, want cat:%s", i, r.Keyboard[i][0].Data, cat)
		}
	}
}

func TestStrayTextInIdle(t *testing.T) {
	m, _ := newTestMachine(t)

	r := text(t, m, "u1", "hello there")
	if r.Text != msgIdle {
		t.Errorf("reply = %q, want the idle hint", r.Text)
	}
}

func TestStrayTextDuringButtonStates(t *testing.T) {
	m, _ := newTestMachine(t)
	createGroupFor(t, m, "u1")
	command(t, m, "u1", "/operation")

	r := text(t, m, "u1", "expense please")
	if r.Text != msgUseButtons {
		t.Errorf("reply = %q, want the use-buttons hint", r.Text)
	}
	if len(r.Keyboard) == 0 {
		t.Error("the hint must repeat the keyboard")
	}
}
