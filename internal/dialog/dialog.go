// Package dialog is the chat-facing state machine: it collects the inputs of
// one operation step by step (type, category, comment, amount, counterparty)
// and hands validated primitives to the ledger and group services. It knows
// nothing about any chat transport; adapters feed it commands, button
// presses and free text, and render the replies it returns.
package dialog

import (
	"sync"
)

// State tags where a user currently is in the dialog.
type State int

const (
	StateIdle State = iota
	StateRegisterChoice  // choose: create group / join group
	StateJoinGroupID     // typing a group code to join
	StateMainMenu        // choose: expense / transfer
	StateExpenseMode     // choose: split across all / selective
	StateExpenseCategory // choose a category
	StateExpenseComment  // typing the comment
	StateExpenseAmount   // typing the amount
	StateTransferTarget  // choose the transfer recipient
)

// Callback data identifiers understood by HandleCallback.
const (
	CallbackExpense       = "op:expense"
	CallbackTransfer      = "op:transfer"
	CallbackModeAll       = "mode:all"
	CallbackModeSelective = "mode:selective"
	CallbackCreateGroup   = "reg:create"
	CallbackJoinGroup     = "reg:join"
	CallbackBalance       = "report:balance"

	categoryPrefix = "cat:"
	targetPrefix   = "trg:"
	periodPrefix   = "period:"
)

const (
	modeExpense  = "expense"
	modeTransfer = "transfer"
)

// Button is one inline keyboard button.
type Button struct {
	Label string
	Data  string
}

// Reply is what the transport should show the user next.
type Reply struct {
	Text     string
	Keyboard [][]Button
}

type session struct {
	state          State
	groupID        string
	mode           string
	category       string
	comment        string
	transferTarget string
}

// Machine drives every user's dialog session.
type Machine struct {
	groups     GroupService
	ledger     LedgerWriter
	reports    Reporter
	members    MembershipLookup
	users      UserDirectory
	categories []string

	mu       sync.Mutex
	sessions map[string]*session
}

func NewMachine(groups GroupService, ledger LedgerWriter, reports Reporter, members MembershipLookup, users UserDirectory, categories []string) *Machine {
	return &Machine{
		groups:     groups,
		ledger:     ledger,
		reports:    reports,
		members:    members,
		users:      users,
		categories: categories,
		sessions:   make(map[string]*session),
	}
}

func (m *Machine) session(userID string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		s = &session{}
		m.sessions[userID] = s
	}
	return s
}

func (m *Machine) clear(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// StateOf exposes the user's current state; used by tests and the transport
// to decide whether free text is expected.
func (m *Machine) StateOf(userID string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s.state
	}
	return StateIdle
}

func prompt(text string, rows ...[]Button) Reply {
	return Reply{Text: text, Keyboard: rows}
}

func row(buttons ...Button) []Button { return buttons }
