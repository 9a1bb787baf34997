// Package telegram adapts the dialog machine to the Telegram Bot API. All
// conversation logic lives in internal/dialog; this layer only converts
// updates into machine inputs and machine replies into messages.
package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"splitbot/internal/dialog"
)

const failureText = "Something went wrong, please try again."

type Bot struct {
	bot     *tele.Bot
	machine *dialog.Machine
	logger  *slog.Logger
}

func New(token string, machine *dialog.Machine, logger *slog.Logger) (*Bot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	t := &Bot{bot: b, machine: machine, logger: logger}

	for _, cmd := range []string{"/start", "/change_group", "/operation", "/report"} {
		b.Handle(cmd, t.commandHandler(cmd))
	}
	b.Handle(tele.OnText, t.onText)
	b.Handle(tele.OnCallback, t.onCallback)

	if err := b.SetCommands([]tele.Command{
		{Text: "start", Description: "Register and pick a group"},
		{Text: "change_group", Description: "Create or join another group"},
		{Text: "operation", Description: "Record an expense or a transfer"},
		{Text: "report", Description: "Balance and expense reports"},
	}); err != nil {
		logger.Warn("Failed to register command menu", "error", err)
	}

	return t, nil
}

// Run starts long polling and blocks until ctx is canceled.
func (t *Bot) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		t.bot.Stop()
	}()
	t.logger.Info("Telegram bot started")
	t.bot.Start()
	return ctx.Err()
}

func (t *Bot) commandHandler(cmd string) tele.HandlerFunc {
	return func(c tele.Context) error {
		reply, err := t.machine.HandleCommand(context.Background(), senderID(c), senderName(c), cmd)
		return t.deliver(c, reply, err)
	}
}

func (t *Bot) onText(c tele.Context) error {
	reply, err := t.machine.HandleText(context.Background(), senderID(c), c.Text())
	return t.deliver(c, reply, err)
}

func (t *Bot) onCallback(c tele.Context) error {
	data := strings.TrimPrefix(c.Callback().Data, "\f")
	reply, err := t.machine.HandleCallback(context.Background(), senderID(c), data)
	if respondErr := c.Respond(&tele.CallbackResponse{}); respondErr != nil {
		t.logger.Debug("Callback ack failed", "error", respondErr)
	}
	return t.deliver(c, reply, err)
}

func (t *Bot) deliver(c tele.Context, reply dialog.Reply, err error) error {
	if err != nil {
		t.logger.Error("Dialog handler failed", "user_id", senderID(c), "error", err)
		return c.Send(failureText)
	}
	if reply.Text == "" {
		return nil
	}
	if len(reply.Keyboard) == 0 {
		return c.Send(reply.Text)
	}
	return c.Send(reply.Text, markupFor(reply))
}

func markupFor(reply dialog.Reply) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	for _, r := range reply.Keyboard {
		var btns []tele.InlineButton
		for _, b := range r {
			btns = append(btns, tele.InlineButton{Text: b.Label, Data: b.Data})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, btns)
	}
	return markup
}

func senderID(c tele.Context) string {
	return strconv.FormatInt(c.Sender().ID, 10)
}

func senderName(c tele.Context) string {
	name := strings.TrimSpace(c.Sender().FirstName + " " + c.Sender().LastName)
	if name == "" {
		name = c.Sender().Username
	}
	return name
}
