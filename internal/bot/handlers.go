package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"olympbot/core/logger"
	"olympbot/core/telegram/format"
	tghelpers "olympbot/core/telegram/helpers"
	"olympbot/core/telegram/keyboard"
	"olympbot/internal/bot/flows"
	"olympbot/internal/storage"

	"log/slog"

	tele "gopkg.in/telebot.v4"
)

const (
	textGreeting = "Здравствуйте! Это бот результатов олимпиад.\n" +
		"Команда /mydata привяжет ваш СНИЛС, /myresults покажет ваши результаты.\n" +
		"Полный список команд: /help"
	textGreetingAdmin = "Вам доступны команды администратора, подробнее: /help"
	textAdminSection  = "Команды администратора:"

	textNoSNILS      = "Сначала привяжите СНИЛС командой /mydata."
	textNoResults    = "Результатов по вашему СНИЛС пока нет."
	textNoOlympiads  = "Пока нет ни одной олимпиады."
	textNothingToDo  = "Нет активной операции."
	textEditStub     = "Редактирование результатов пока недоступно."
	textUnknownInput = "Не понимаю. Список команд: /help"
)

// Store is the persistence surface used by command handlers.
type Store interface {
	flows.Store
	EnsureUser(ctx context.Context, telegramID int64) error
	GetUser(ctx context.Context, telegramID int64) (*storage.User, error)
	IsAdmin(ctx context.Context, telegramID int64) (bool, error)
	ResultsBySNILS(ctx context.Context, snils string) ([]storage.ResultView, error)
}

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	text := textGreeting
	if sender := c.Sender(); sender != nil {
		if err := a.store.EnsureUser(ctx, sender.ID); err != nil {
			logger.Error(ctx, "tg", "user.ensure",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
		if isAdmin, err := a.store.IsAdmin(ctx, sender.ID); err == nil && isAdmin {
			text += "\n\n" + textGreetingAdmin
		}
	}
	return tghelpers.SendText(c, text, &tele.SendOptions{ReplyMarkup: keyboard.RemoveKeyboard()})
}

func (a *App) handleHelp(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	var b strings.Builder
	b.WriteString("Доступные команды:\n")
	for _, cmd := range a.registry.ListCommands(true) {
		fmt.Fprintf(&b, "%s — %s\n", cmd.Text, cmd.Description)
	}
	if isAdmin, err := a.store.IsAdmin(ctx, c.Sender().ID); err == nil && isAdmin {
		b.WriteString("\n" + textAdminSection + "\n")
		for _, cmd := range a.registry.AdminCommands() {
			fmt.Fprintf(&b, "%s — %s\n", cmd.Text, cmd.Description)
		}
	}
	return tghelpers.SendText(c, strings.TrimRight(b.String(), "\n"))
}

func (a *App) handleMyData(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	replies, err := a.engine.StartBindSNILS(ctx, c.Sender().ID)
	if sendErr := sendReplies(c, replies); sendErr != nil {
		return sendErr
	}
	return err
}

func (a *App) handleMyResults(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	user, err := a.store.GetUser(ctx, c.Sender().ID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && user.SNILS == nil) {
		return tghelpers.SendText(c, textNoSNILS)
	}
	if err != nil {
		return err
	}

	results, err := a.store.ResultsBySNILS(ctx, *user.SNILS)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return tghelpers.SendText(c, textNoResults)
	}

	var b strings.Builder
	b.WriteString("Ваши результаты:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "\n«%s» (%s)\n", r.OlympiadName, r.OlympiadDate)
		fmt.Fprintf(&b, "Предмет: %s\n", format.DerefString(r.Subject, "—"))
		fmt.Fprintf(&b, "Участник: %s\n", r.FullName)
		fmt.Fprintf(&b, "Балл: %s, место: %s\n",
			format.IntOrDefault(r.Score, "—"),
			format.IntOrDefault(r.Place, "—"),
		)
		fmt.Fprintf(&b, "Диплом: %s\n", format.DerefString(r.DiplomaLink, "—"))
	}
	return tghelpers.SendText(c, strings.TrimRight(b.String(), "\n"))
}

func (a *App) handleListOlympiads(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)

	list, err := a.store.ListOlympiads(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return tghelpers.SendText(c, textNoOlympiads)
	}

	var b strings.Builder
	b.WriteString("Олимпиады:\n")
	for _, o := range list {
		fmt.Fprintf(&b, "\n%s (%s)\n", o.Name, o.Date)
		if o.Subject != nil {
			fmt.Fprintf(&b, "Предмет: %s\n", *o.Subject)
		}
		if o.Description != nil {
			fmt.Fprintf(&b, "%s\n", *o.Description)
		}
	}
	return tghelpers.SendText(c, strings.TrimRight(b.String(), "\n"))
}

func (a *App) handleAddOlympiad(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	replies, err := a.engine.StartAddOlympiad(ctx, c.Sender().ID)
	if sendErr := sendReplies(c, replies); sendErr != nil {
		return sendErr
	}
	return err
}

func (a *App) handleAddResults(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	replies, err := a.engine.StartAddResults(ctx, c.Sender().ID)
	if sendErr := sendReplies(c, replies); sendErr != nil {
		return sendErr
	}
	return err
}

func (a *App) handleEditResult(c tele.Context) error {
	return tghelpers.SendText(c, textEditStub)
}

// handleCancel aborts the active conversation, if any.
// Commands bypass the OnText route, so the cancel command forwards itself
// to the flow engine explicitly.
func (a *App) handleCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if a.engine.InProgress(c.Sender().ID) {
		replies, err := a.engine.HandleText(ctx, c.Sender().ID, c.Text())
		if sendErr := sendReplies(c, replies); sendErr != nil {
			return sendErr
		}
		return err
	}
	return tghelpers.SendText(c, textNothingToDo)
}

func (a *App) handleUnknownText(c tele.Context) error {
	return tghelpers.SendText(c, textUnknownInput)
}

func sendReplies(c tele.Context, replies []flows.Reply) error {
	for _, r := range replies {
		opts := &tele.SendOptions{}
		switch {
		case len(r.Keyboard) > 0:
			opts.ReplyMarkup = keyboard.ReplyButtons(r.Keyboard...)
		case r.RemoveKeyboard:
			opts.ReplyMarkup = keyboard.RemoveKeyboard()
		}
		if err := tghelpers.SendText(c, r.Text, opts); err != nil {
			return err
		}
	}
	return nil
}
