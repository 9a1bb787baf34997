package dialog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"splitbot/internal/report"
)

const (
	msgNoGroup        = "You have not picked a group yet.\nUse /start to create or join a group first."
	msgUseButtons     = "Please use the buttons under the message."
	msgIdle           = "Use /operation to record an operation or /report to get a report."
	msgAmountInvalid  = "Could not read that amount. Enter a number like 123.45:"
	msgAmountNegative = "The amount must be greater than zero. Enter it again:"
)

// HandleCommand processes a slash command. displayName is the chat profile
// name, recorded in the user directory on first contact.
func (m *Machine) HandleCommand(ctx context.Context, userID, displayName, command string) (Reply, error) {
	switch command {
	case "/start":
		if _, err := m.users.CreateIfNotExists(ctx, userID, displayName); err != nil {
			return Reply{}, err
		}
		group, err := m.groups.CurrentGroup(ctx, userID)
		if err != nil {
			return Reply{}, err
		}
		if group != nil {
			m.clear(userID)
			return Reply{Text: fmt.Sprintf("Current group: %s\nUse /change_group to switch groups.", group.ID)}, nil
		}
		return m.showRegisterMenu(userID, "You are not in any group yet.\nChoose an action:"), nil

	case "/change_group":
		return m.showRegisterMenu(userID, "Choose an action:"), nil

	case "/operation":
		group, err := m.groups.CurrentGroup(ctx, userID)
		if err != nil {
			return Reply{}, err
		}
		if group == nil {
			m.clear(userID)
			return Reply{Text: msgNoGroup}, nil
		}
		s := m.session(userID)
		*s = session{state: StateMainMenu, groupID: group.ID}
		return prompt("Choose the operation type:", mainMenuKeyboard()...), nil

	case "/report":
		m.clear(userID)
		return prompt("Choose a report:", reportKeyboard()...), nil
	}
	return Reply{Text: msgIdle}, nil
}

// HandleCallback processes an inline-button press.
func (m *Machine) HandleCallback(ctx context.Context, userID, data string) (Reply, error) {
	s := m.session(userID)

	switch {
	case data == CallbackExpense && s.state == StateMainMenu:
		s.state = StateExpenseMode
		return prompt("How should the expense be split?", expenseModeKeyboard()...), nil

	case data == CallbackTransfer && s.state == StateMainMenu:
		s.mode = modeTransfer
		keyboard, err := m.transferTargetKeyboard(ctx, s.groupID, userID)
		if err != nil {
			return Reply{}, err
		}
		if len(keyboard) == 0 {
			m.clear(userID)
			return Reply{Text: "There are no other members in this group, a transfer is not possible."}, nil
		}
		s.state = StateTransferTarget
		return prompt("Who receives the money?", keyboard...), nil

	case data == CallbackModeAll && s.state == StateExpenseMode:
		s.mode = modeExpense
		s.state = StateExpenseCategory
		return prompt("Choose an expense category:", m.categoryKeyboard()...), nil

	case data == CallbackModeSelective && s.state == StateExpenseMode:
		m.clear(userID)
		return Reply{Text: "Selective splitting is not implemented yet."}, nil

	case strings.HasPrefix(data, categoryPrefix) && s.state == StateExpenseCategory:
		s.category = strings.TrimPrefix(data, categoryPrefix)
		s.state = StateExpenseComment
		return Reply{Text: fmt.Sprintf("Category: %s\n\nEnter a comment for the expense:", s.category)}, nil

	case strings.HasPrefix(data, targetPrefix) && s.state == StateTransferTarget:
		s.transferTarget = strings.TrimPrefix(data, targetPrefix)
		s.state = StateExpenseComment
		return Reply{Text: "Enter a comment for the transfer:"}, nil

	case data == CallbackCreateGroup && s.state == StateRegisterChoice:
		group, err := m.groups.CreateGroupAndAssign(ctx, userID)
		if err != nil {
			return Reply{}, err
		}
		m.clear(userID)
		return Reply{Text: fmt.Sprintf("Group created.\nYour group id: %s\nShare this id so others can join.", group.ID)}, nil

	case data == CallbackJoinGroup && s.state == StateRegisterChoice:
		s.state = StateJoinGroupID
		return Reply{Text: "Enter the id of the group you want to join:"}, nil

	case data == CallbackBalance:
		return m.runReport(ctx, userID, func(groupID string) (string, error) {
			return m.reports.FormatBalanceReport(ctx, groupID)
		})

	case strings.HasPrefix(data, periodPrefix):
		selector := report.Period(strings.TrimPrefix(data, periodPrefix))
		return m.runReport(ctx, userID, func(groupID string) (string, error) {
			return m.reports.FormatCategoryReport(ctx, groupID, selector)
		})
	}

	return Reply{Text: msgIdle}, nil
}

// HandleText processes free text typed by the user.
func (m *Machine) HandleText(ctx context.Context, userID, text string) (Reply, error) {
	s := m.session(userID)
	text = strings.TrimSpace(text)

	switch s.state {
	case StateJoinGroupID:
		if text == "" {
			return Reply{Text: "The group id cannot be empty. Enter it again:"}, nil
		}
		joined, err := m.groups.JoinGroup(ctx, userID, text)
		if err != nil {
			return Reply{}, err
		}
		if !joined {
			return Reply{Text: "No group with that id was found. Check the id and try again:"}, nil
		}
		m.clear(userID)
		return Reply{Text: fmt.Sprintf("You joined group %s.", strings.ToUpper(text))}, nil

	case StateExpenseComment:
		s.comment = text
		s.state = StateExpenseAmount
		return Reply{Text: "Enter the amount (a number, e.g. 123.45):"}, nil

	case StateExpenseAmount:
		amount, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
		if err != nil {
			return Reply{Text: msgAmountInvalid}, nil
		}
		if amount <= 0 {
			return Reply{Text: msgAmountNegative}, nil
		}
		return m.finishOperation(ctx, userID, s, amount)

	case StateRegisterChoice:
		return m.showRegisterMenu(userID, msgUseButtons), nil
	case StateMainMenu:
		return prompt(msgUseButtons, mainMenuKeyboard()...), nil
	case StateExpenseMode:
		return prompt(msgUseButtons, expenseModeKeyboard()...), nil
	case StateExpenseCategory:
		return prompt(msgUseButtons, m.categoryKeyboard()...), nil
	case StateTransferTarget:
		return Reply{Text: msgUseButtons}, nil
	}
	return Reply{Text: msgIdle}, nil
}

// finishOperation has every input collected; it writes the operation and
// resets the session.
func (m *Machine) finishOperation(ctx context.Context, userID string, s *session, amount float64) (Reply, error) {
	if s.mode == modeTransfer {
		if s.groupID == "" || s.transferTarget == "" {
			m.clear(userID)
			return Reply{Text: "The transfer data is incomplete. Start again with /operation."}, nil
		}
		opID, err := m.ledger.RecordTransfer(ctx, s.groupID, userID, s.transferTarget, s.comment, amount)
		if err != nil {
			m.clear(userID)
			return Reply{}, err
		}
		m.clear(userID)
		return Reply{Text: fmt.Sprintf("Transfer recorded.\nOperation id: %s", opID)}, nil
	}

	if s.groupID == "" || s.category == "" {
		m.clear(userID)
		return Reply{Text: "The operation data is incomplete. Start again with /operation."}, nil
	}
	opID, err := m.ledger.RecordSharedExpense(ctx, userID, s.groupID, s.category, s.comment, amount)
	if err != nil {
		m.clear(userID)
		return Reply{}, err
	}
	m.clear(userID)
	return Reply{Text: fmt.Sprintf("Expense recorded.\nOperation id: %s", opID)}, nil
}

func (m *Machine) runReport(ctx context.Context, userID string, render func(groupID string) (string, error)) (Reply, error) {
	group, err := m.groups.CurrentGroup(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	if group == nil {
		m.clear(userID)
		return Reply{Text: msgNoGroup}, nil
	}
	text, err := render(group.ID)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: text}, nil
}

func (m *Machine) showRegisterMenu(userID, text string) Reply {
	s := m.session(userID)
	*s = session{state: StateRegisterChoice}
	return prompt(text,
		row(Button{Label: "Create a group", Data: CallbackCreateGroup}),
		row(Button{Label: "Join a group", Data: CallbackJoinGroup}),
	)
}

func mainMenuKeyboard() [][]Button {
	return [][]Button{
		row(Button{Label: "Expense", Data: CallbackExpense}),
		row(Button{Label: "Transfer", Data: CallbackTransfer}),
	}
}

func expenseModeKeyboard() [][]Button {
	return [][]Button{
		row(Button{Label: "Split across the group", Data: CallbackModeAll}),
		row(Button{Label: "Selective", Data: CallbackModeSelective}),
	}
}

func (m *Machine) categoryKeyboard() [][]Button {
	rows := make([][]Button, 0, len(m.categories))
	for _, cat := range m.categories {
		rows = append(rows, row(Button{Label: cat, Data: categoryPrefix + cat}))
	}
	return rows
}

func reportKeyboard() [][]Button {
	return [][]Button{
		row(Button{Label: "Balance", Data: CallbackBalance}),
		row(Button{Label: "Expenses: this month", Data: periodPrefix + string(report.PeriodCurrentMonth)}),
		row(Button{Label: "Expenses: previous month", Data: periodPrefix + string(report.PeriodPrevMonth)}),
		row(Button{Label: "Expenses: this quarter", Data: periodPrefix + string(report.PeriodCurrentQuarter)}),
		row(Button{Label: "Expenses: previous quarter", Data: periodPrefix + string(report.PeriodPrevQuarter)}),
		row(Button{Label: "Expenses: this year", Data: periodPrefix + string(report.PeriodCurrentYear)}),
		row(Button{Label: "Expenses: previous year", Data: periodPrefix + string(report.PeriodPrevYear)}),
	}
}

// transferTargetKeyboard lists every group member except the current user,
// labeled with their directory name when one is stored.
func (m *Machine) transferTargetKeyboard(ctx context.Context, groupID, currentUserID string) ([][]Button, error) {
	members, err := m.members.MembersOf(ctx, groupID)
	if err != nil {
		return nil, err
	}
	var rows [][]Button
	for _, memberID := range members {
		if memberID == currentUserID {
			continue
		}
		label := fmt.Sprintf("User %s", memberID)
		if info, err := m.users.GetByID(ctx, memberID); err == nil && info != nil && strings.TrimSpace(info.Name) != "" {
			label = info.Name
		}
		rows = append(rows, row(Button{Label: label, Data: targetPrefix + memberID}))
	}
	return rows, nil
}
